package survey

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery rejects blank queries before the pipeline starts. No stats
// are recorded for rejected queries.
var ErrEmptyQuery = errors.New("query is required")

var errEmptyCompletion = errors.New("empty completion")

// GenerationError is a fatal upstream text-generation failure. It only
// surfaces from the interpret and enumerate stages; illustration failures
// are absorbed per item instead.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: generation failed: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
