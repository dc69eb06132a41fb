package tutor

import (
	"errors"
	"fmt"

	"github.com/chemthink/chemthink/internal/llm"
)

// ErrGenerationFailed is returned when the LLM answered but no usable
// problem could be built from the answer.
var ErrGenerationFailed = errors.New("failed to generate problem")

// ValidationError describes why a generated problem was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsUnavailable reports whether err means the LLM could not be reached,
// as opposed to answering badly.
func IsUnavailable(err error) bool {
	switch llm.Reason(err) {
	case llm.ReasonUnavailable, llm.ReasonRefused, llm.ReasonRateLimit, llm.ReasonTimeout:
		return true
	}
	return false
}
