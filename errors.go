package h2mux

import (
	"errors"
	"fmt"

	"golang.org/x/net/http2"
)

// Local policy violations (spec.md §7) — returned on the caller's
// completion, never fired into a child's inbound pipeline.
var (
	// ErrNoStreamIDAvailable is returned when reading the streamID
	// option on a locally-created child before its first flushed write
	// (spec.md §4.1, §6).
	ErrNoStreamIDAvailable = errors.New("h2mux: stream id not available before first flush")

	// ErrIOOnClosedChannel is returned for any operation attempted on a
	// child whose stream has already reached the closed phase, and for a
	// write on a stream that is already closing.
	ErrIOOnClosedChannel = errors.New("h2mux: operation on closed channel")
)

// ErrNoSuchStream reports an inbound frame addressed to an unknown or
// already-closed stream id (spec.md §4.2, §7). It is never used to open
// a stream implicitly.
type ErrNoSuchStream struct {
	ID uint32
}

func (e *ErrNoSuchStream) Error() string {
	return fmt.Sprintf("h2mux: no such stream: %d", e.ID)
}

// Is reports whether target is also an *ErrNoSuchStream for the same
// id, so callers can use errors.Is for equality checks in tests without
// reflect.DeepEqual.
func (e *ErrNoSuchStream) Is(target error) bool {
	other, ok := target.(*ErrNoSuchStream)
	if !ok {
		return false
	}
	return other.ID == e.ID
}

// ErrStreamClosed is a stream-scoped protocol error (spec.md §7): the
// failure of an outbound write still queued, or of a close-promise,
// when the stream's StreamClosed event carries a reset reason. A new
// write on a closing or closed stream fails with ErrIOOnClosedChannel
// instead. Code reuses golang.org/x/net/http2's ErrCode,
// grounded on Cloudflare's h2mux package doing the same for its own
// stream errors.
type ErrStreamClosed struct {
	ID   uint32
	Code http2.ErrCode
}

func (e *ErrStreamClosed) Error() string {
	return fmt.Sprintf("h2mux: stream %d closed: %s", e.ID, e.Code)
}

// Is reports whether target is also an *ErrStreamClosed for the same
// stream and code, so callers can use errors.Is for equality checks in
// tests without reflect.DeepEqual.
func (e *ErrStreamClosed) Is(target error) bool {
	other, ok := target.(*ErrStreamClosed)
	if !ok {
		return false
	}
	return other.ID == e.ID && other.Code == e.Code
}
