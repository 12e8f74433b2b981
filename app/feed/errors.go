package feed

import (
	"fmt"
	"strings"
)

// TransportError is returned when the feed API could not be reached
// or responded with a non-success status.
type TransportError struct {
	Op         string
	ID         uint64 // zero for the top list
	StatusCode int    // zero when no response was received
	Err        error
}

// Error implements error.
func (e *TransportError) Error() string {
	sb := &strings.Builder{}
	_, _ = fmt.Fprintf(sb, "transport: %s", e.Op)
	if e.ID != 0 {
		_, _ = fmt.Fprintf(sb, " %d", e.ID)
	}
	if e.StatusCode != 0 {
		_, _ = fmt.Fprintf(sb, ": bad status code %d", e.StatusCode)
	}
	if e.Err != nil {
		_, _ = fmt.Fprintf(sb, ": %v", e.Err)
	}
	return sb.String()
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError is returned when the feed API responded with a malformed payload.
type DecodeError struct {
	Op  string
	ID  uint64
	Err error
}

// Error implements error.
func (e *DecodeError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("decode: %s %d: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("decode: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error { return e.Err }
