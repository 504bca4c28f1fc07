package services

import (
	"errors"
	"fmt"

	"github.com/talentsift/resume-scorer/internal/logger"
)

var (
	// ErrUpstream marks failures coming back from the language model API.
	// Callers propagate it; nothing in the pipeline retries or masks it.
	ErrUpstream = errors.New("llm gateway failure")

	// ErrFileTooLarge is returned for uploads over the configured cap.
	ErrFileTooLarge = errors.New("file too large")

	// ErrDegenerateEmbedding is returned when a similarity cannot be
	// computed: empty vectors, mismatched dimensions, or a zero-norm vector
	// that would divide by zero.
	ErrDegenerateEmbedding = errors.New("degenerate embedding vector")
)

// ScoreParseError reports a model reply that could not be read as a number.
// Raw preserves the offending response for diagnostics.
type ScoreParseError struct {
	Raw string
}

func (e *ScoreParseError) Error() string {
	return fmt.Sprintf("could not parse a numerical score from the response: %s", logger.TruncateForLog(e.Raw, 200))
}
