package export

import (
	"time"

	"github.com/google/uuid"
)

// export job kind
type Kind int

const (
	// write the encoded subtitle document to disk
	KindSubtitleFile Kind = iota
	// burn styled subtitles into the video with ffmpeg
	KindBurnIn
)

func (k Kind) String() string {
	switch k {
	case KindSubtitleFile:
		return "subtitle-file"
	case KindBurnIn:
		return "burn-in"
	}
	return "unknown"
}

// State tracks an export job through its lifecycle. Terminal states are
// reported exactly once per job.
type State int

const (
	StateIdle State = iota
	StatePreparing
	StateRendering
	StateFinalizing
	StateSucceeded
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparing:
		return "preparing"
	case StateRendering:
		return "rendering"
	case StateFinalizing:
		return "finalizing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Terminal reports whether the state ends a job.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateCancelled:
		return true
	}
	return false
}

// Job identifies one export request.
type Job struct {
	ID         uuid.UUID
	Kind       Kind
	Source     string
	OutputPath string
	CreatedAt  time.Time
}

// Progress is delivered to the submitter's callback. Percent never
// decreases over the lifetime of a job.
type Progress struct {
	JobID   uuid.UUID
	State   State
	Percent float64
	Message string
	Err     error
}
