package timeline

import "errors"

// edit rejection sentinels; operations that return one of these leave the
// timeline untouched
var (
	ErrValidation      = errors.New("validation failed")
	ErrOverlapConflict = errors.New("overlap conflict")
	ErrOutOfRange      = errors.New("out of range")
	ErrNonAdjacent     = errors.New("segments not adjacent")
	ErrNotFound        = errors.New("segment not found")
)

// ingestion failure carrying the indices of the offending raw records
type ValidationError struct {
	Indices []int
	Reasons []string
}

func (e *ValidationError) Error() string {
	if len(e.Reasons) == 1 {
		return "ingest: " + e.Reasons[0]
	}
	return "ingest: " + e.Reasons[0] + " (and more)"
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
