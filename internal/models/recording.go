package models

import "time"

// Recording processing lifecycle. "processing" is only ever valid while the
// owning process is alive; a restart sweep forces leftovers to "failed".
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type Recording struct {
	ID        int       `db:"id" json:"id"`
	ProfileID *int      `db:"profile_id" json:"profile_id,omitempty"`
	FilePath  string    `db:"file_path" json:"file_path"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Chunks []Chunk `json:"chunks,omitempty"`
}
