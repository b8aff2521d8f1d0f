package models

// Segment is one transcribed span as returned by the speech provider,
// relative to the file that was submitted. Provider responses are normalized
// into this shape immediately on receipt.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// SilenceInterval is a detected sub-threshold-energy span, used as a
// preferred cut point by the split planner.
type SilenceInterval struct {
	Start    float64
	End      float64
	Duration float64
}

// ChunkDraft is a pipeline-produced chunk before it is persisted. Start and
// End are absolute recording time in seconds. AudioPath is empty when no
// audio snippet was materialized for the chunk.
type ChunkDraft struct {
	Title      string
	Transcript string
	Start      float64
	End        float64
	AudioPath  string
}
