package models

import "time"

// Profile groups the recordings of one session or subject. Deleting a
// profile takes its recordings, and their chunks, with it.
type Profile struct {
	ID         int       `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
	Summary    *string   `db:"summary" json:"summary,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`

	Recordings []Recording `json:"recordings,omitempty"`
}
