package ws

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub fans processing events out to every socket watching a recording.
type Hub struct {
	mu    sync.RWMutex
	rooms map[int]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[int]map[*websocket.Conn]bool),
	}
}

func (h *Hub) Register(recordingID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[recordingID]; !ok {
		h.rooms[recordingID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[recordingID][conn] = true
	log.Printf("[hub] register recording=%d conns=%d", recordingID, len(h.rooms[recordingID]))
}

func (h *Hub) Unregister(recordingID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.rooms[recordingID]
	if !ok {
		return
	}

	if _, ok := conns[conn]; ok {
		delete(conns, conn)
		conn.Close()
	}
	if len(conns) == 0 {
		delete(h.rooms, recordingID)
	}
	log.Printf("[hub] unregister recording=%d conns=%d", recordingID, len(conns))
}

func (h *Hub) Broadcast(recordingID int, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns := h.rooms[recordingID]
	if len(conns) == 0 {
		return
	}

	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("[hub][SEND-ERR] recording=%d err=%v", recordingID, err)
		}
	}
}

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}
