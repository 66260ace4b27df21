package stream

import (
	"fmt"
)

// StreamReadError reports that the byte source failed mid-read. Messages
// already assembled are kept.
type StreamReadError struct {
	Err error
}

func (e *StreamReadError) Error() string {
	return fmt.Sprintf("stream read failed: %v", e.Err)
}

func (e *StreamReadError) Unwrap() error {
	return e.Err
}

// StreamUnavailableError reports that the response stream could not be
// opened at all: connection failure, rejected request or missing body.
type StreamUnavailableError struct {
	StatusCode int    // zero when no response was received
	Reason     string // backend supplied explanation, if any
	Err        error
}

func (e *StreamUnavailableError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Reason != "":
		return fmt.Sprintf("stream unavailable: status %d: %s", e.StatusCode, e.Reason)
	case e.StatusCode != 0:
		return fmt.Sprintf("stream unavailable: status %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("stream unavailable: %v", e.Err)
	default:
		return "stream unavailable: " + e.Reason
	}
}

func (e *StreamUnavailableError) Unwrap() error {
	return e.Err
}
