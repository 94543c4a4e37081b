package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strings"
)

var (
	// ErrNotFound is matched by a StatusError for a 404.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is matched by a StatusError for a 401. The stored
	// token has been cleared by the time the caller sees it.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTimeout marks requests that ran out of time.
	ErrTimeout = errors.New("request timed out")
)

const maxErrorBodyBytes = 4 << 10

// StatusError is a non-2xx response.
type StatusError struct {
	Op      string
	Code    int
	Message string // from the body's "error" or "detail" field, if any
	Body    []byte
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: HTTP %d %s", e.Op, e.Code, http.StatusText(e.Code))
}

// Is lets errors.Is match ErrNotFound and ErrUnauthorized.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized
	}
	return false
}

// Retryable reports whether the request may succeed if sent again.
func (e *StatusError) Retryable() bool {
	return isRetryableStatus(e.Code)
}

func isRetryableStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// newStatusError builds a StatusError, lifting a server message from the
// common DRF body shapes: {"error": "..."}, {"detail": "..."} and field
// error maps like {"answer": ["This field is required."]}.
func newStatusError(op string, code int, body []byte) *StatusError {
	if len(body) > maxErrorBodyBytes {
		body = body[:maxErrorBodyBytes]
	}
	return &StatusError{Op: op, Code: code, Message: serverMessage(body), Body: body}
}

func serverMessage(body []byte) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}
	for _, k := range []string{"error", "detail", "message"} {
		var s string
		if err := json.Unmarshal(obj[k], &s); err == nil && s != "" {
			return s
		}
	}

	var parts []string
	for field, raw := range obj {
		var msgs []string
		if err := json.Unmarshal(raw, &msgs); err == nil && len(msgs) > 0 {
			parts = append(parts, field+": "+strings.Join(msgs, " "))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	slices.Sort(parts)
	return strings.Join(parts, "; ")
}

// classifyTransportError tags timeouts so callers can tell them apart
// from refused connections.
func classifyTransportError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s: %w: %w", op, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsRetryable reports whether a failed call is worth retrying by the user.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return true
}
