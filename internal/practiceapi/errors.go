package practiceapi

import (
	"fmt"
	"net/http"
)

// TransportError reports any failure talking to the practice service:
// network errors, non-200 statuses and bodies that fail validation.
type TransportError struct {
	// Op is the endpoint path, e.g. "/grade".
	Op string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	Err error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("practice api %s: status %d %s: %v", e.Op, e.StatusCode, http.StatusText(e.StatusCode), e.Err)
	}
	return fmt.Sprintf("practice api %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
