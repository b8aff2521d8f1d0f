package ws

import (
	"log"
	"net/http"
	"strconv"
)

// ProgressHandler upgrades the connection and parks it in the hub room for
// one recording. The socket is read-only for the client; it exists to receive
// status events pushed while the pipeline runs.
func ProgressHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.URL.Query().Get("recordingID"))
		if err != nil || id <= 0 {
			http.Error(w, "invalid recordingID", http.StatusBadRequest)
			return
		}

		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[ws] upgrade failed: %v", err)
			return
		}

		hub.Register(id, conn)
		defer hub.Unregister(id, conn)

		// Block until the client goes away; writes happen via the hub.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
