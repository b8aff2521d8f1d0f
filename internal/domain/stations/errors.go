package stations

import "errors"

// One sentinel per stage so the orchestrator and tests can match dispositions
// without string comparison.
var (
	ErrProbe         = errors.New("duration probe failed")
	ErrTranscription = errors.New("transcription failed")
	ErrStructuring   = errors.New("structuring failed")
	ErrSegmentExport = errors.New("segment export failed")
)
