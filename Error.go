package goghostex

import (
	"errors"
	"fmt"
)

var (
	ErrIntervalNotFound = errors.New("interval not found")
	ErrStreamClosed     = errors.New("websocket stream closed")
)

// RateLimitExceededError is returned when admitting a call would push a
// quota window over its ceiling. Nothing was charged to any window.
type RateLimitExceededError struct {
	Interval Interval
	Limit    uint64
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded per %s interval, limit: %d", e.Interval, e.Limit)
}

// TransportError wraps a socket or connect failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("websocket %s error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedFrameError marks an inbound frame that was dropped.
type MalformedFrameError struct {
	Reason string
	Frame  []byte
}

func (e *MalformedFrameError) Error() string {
	const max = 256
	var frame = e.Frame
	if len(frame) > max {
		frame = frame[:max]
	}
	return fmt.Sprintf("malformed frame, %s: %s", e.Reason, string(frame))
}
