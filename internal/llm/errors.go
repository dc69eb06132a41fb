package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrRateLimit is a 429 from the provider.
type ErrRateLimit struct {
	Provider   string
	RetryAfter time.Duration // zero when the provider sent no hint
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limited (retry after %s): %v", orLLM(e.Provider), e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("%s rate limited: %v", orLLM(e.Provider), e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse is a reply that is not JSON matching the schema.
// Content holds the raw reply so graders can still show it.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable means the provider could not serve the request.
// Status is the HTTP status when there was one; a 4xx status other than
// 429 means the request itself was refused (bad key, unknown model) and
// retrying will not help.
type ErrProviderUnavailable struct {
	Provider string
	Status   int
	Err      error
}

func (e *ErrProviderUnavailable) Error() string {
	switch {
	case e.Status >= 400 && e.Status < 500:
		return fmt.Sprintf("%s refused the request (%d): %v", orLLM(e.Provider), e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s unavailable: %v", orLLM(e.Provider), e.Err)
	default:
		return orLLM(e.Provider) + " unavailable"
	}
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// Temporary reports whether the failure may clear on its own.
func (e *ErrProviderUnavailable) Temporary() bool {
	return e.Status == 0 || e.Status >= 500
}

// ErrMaxTokensExceeded is a reply cut off at the token limit before it
// formed valid JSON.
type ErrMaxTokensExceeded struct {
	Limit   int
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return fmt.Sprintf("LLM response truncated at %d tokens", e.Limit)
}

func orLLM(provider string) string {
	if provider == "" {
		return "LLM provider"
	}
	return provider
}

// statusError maps an HTTP status from provider to the typed errors above.
func statusError(provider string, status int, retryAfter time.Duration, err error) error {
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{Provider: provider, RetryAfter: retryAfter, Err: err}
	}
	return &ErrProviderUnavailable{Provider: provider, Status: status, Err: err}
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After")))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// Failure reasons reported by Reason.
const (
	ReasonRateLimit   = "rate_limit"
	ReasonUnavailable = "unavailable"
	ReasonRefused     = "refused"
	ReasonInvalid     = "invalid_response"
	ReasonMaxTokens   = "max_tokens"
	ReasonTimeout     = "timeout"
	ReasonCanceled    = "canceled"
	ReasonOther       = "error"
)

// Reason classifies err for retry decisions, logs and metrics labels.
func Reason(err error) string {
	var (
		rl      *ErrRateLimit
		unavail *ErrProviderUnavailable
		inv     *ErrInvalidResponse
		maxTok  *ErrMaxTokensExceeded
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	case errors.As(err, &maxTok):
		return ReasonMaxTokens
	case errors.As(err, &inv):
		return ReasonInvalid
	case errors.As(err, &rl):
		return ReasonRateLimit
	case errors.As(err, &unavail):
		if unavail.Temporary() {
			return ReasonUnavailable
		}
		return ReasonRefused
	default:
		return ReasonOther
	}
}
