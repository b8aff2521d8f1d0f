package ports

import "context"

// ProcessEvent is broadcast over the websocket hub as a recording moves
// through the state machine.
type ProcessEvent struct {
	RecordingID int
	Status      string
	Chunks      int
}

type RecordingProcessor interface {
	Process(ctx context.Context, recordingID int) error
	Retry(ctx context.Context, recordingID int) error
	CanRetry(ctx context.Context, recordingID int) error
	Events() <-chan ProcessEvent
}
