package models

type Chunk struct {
	ID          int      `db:"id" json:"id"`
	RecordingID int      `db:"recording_id" json:"recording_id"`
	Title       string   `db:"title" json:"title"`
	Transcript  string   `db:"transcript" json:"transcript"`
	StartTime   float64  `db:"start_time" json:"start_time"`
	EndTime     float64  `db:"end_time" json:"end_time"`
	AudioPath   *string  `db:"audio_path" json:"audio_path,omitempty"`
	UserNote    *string  `db:"user_note" json:"user_note,omitempty"`
	Bookmark    bool     `db:"bookmark" json:"bookmark"`
	Tags        []string `json:"tags,omitempty"`
}
