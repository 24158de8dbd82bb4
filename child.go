package h2mux

// Child is the user-visible, stream-scoped processing context (spec.md
// GLOSSARY: "child channel"). It is the generalization of the donor's
// per-request Ctx (ctx.go) into a full read/write/flush/close surface,
// since M multiplexes arbitrary duplex streams rather than one
// request/response pair.
//
// A Child must only be used from the goroutine driving its Mux's event
// loop (spec.md §5) — write/flush/read/close enqueue state transitions
// directly rather than trampolining through a channel themselves. A
// caller on another goroutine is responsible for its own trampoline,
// exactly as spec.md §5 requires of "external callers."
type Child struct {
	mux     *Mux
	state   *streamState
	handler StreamHandler
}

// closed reports whether this child's stream has already reached the
// closed phase. state is never nilled out on teardown (spec.md §9's
// cyclic reference is broken by removing the stream from Mux's map in
// finishClose instead, see lifecycle.go), so every method below can
// check this instead of guarding against a nil c.state.
func (c *Child) closed() bool {
	return c.state.phase == phaseClosed
}

// SetHandler installs the pipeline that receives this stream's inbound
// events (spec.md §4.3). Initializers are expected to call this before
// returning (spec.md §4.5).
func (c *Child) SetHandler(h StreamHandler) {
	c.handler = h
}

// Write enqueues body to be sent on this stream. If the stream's id is
// still unassigned (a locally-created stream awaiting its first flush),
// the write is held in outbound_pending until assignment (spec.md §4.1,
// §4.3). The returned Future completes when the frame is either
// released to the connection or the stream is closed/fails first. A
// write on an already-closed child fails immediately with
// ErrIOOnClosedChannel (spec.md §6).
func (c *Child) Write(body FrameBody) *Future {
	promise := NewPromise()
	if c.closed() {
		promise.Fail(ErrIOOnClosedChannel)
		return promise.Future()
	}
	c.mux.enqueueWrite(c.state, body, promise)
	return promise.Future()
}

// Flush releases as many queued writes as the flow-control policy
// allows, assigning the stream id on first release if one is not yet
// assigned (spec.md §4.1, §4.3). A no-op on an already-closed child.
func (c *Child) Flush() {
	if c.closed() {
		return
	}
	c.mux.flushStream(c.state, false)
}

// Read delivers one pending inbound frame if any is queued; otherwise it
// marks the child as wanting a read and requests one from the parent
// connection (spec.md §4.3). With autoread enabled this is rarely
// called directly by user code — the mux delivers frames as they
// arrive — but it is always available for autoread=false consumers. A
// no-op on an already-closed child.
func (c *Child) Read() {
	if c.closed() {
		return
	}
	c.mux.readFromChild(c.state)
}

// Close initiates stream shutdown (spec.md §4.6, §6). It is idempotent
// and is the only cancellation primitive M offers (spec.md §3
// "Cancellation"). The returned Future is satisfied only once the
// stream reaches closed — it fails with a *ErrStreamClosed if the
// subsequent StreamClosed event carries a non-nil reason, and otherwise
// succeeds. Repeated calls to Close are safe: only the first emits
// RST_STREAM, but every caller's Future is recorded and satisfied
// together on that same subsequent StreamClosed event (spec.md §8
// invariant 4). Calling Close after the stream has already reached
// closed immediately succeeds, matching that same idempotence.
func (c *Child) Close() *Future {
	promise := NewPromise()
	if c.closed() {
		promise.Succeed()
		return promise.Future()
	}
	c.mux.closeStream(c.state, promise)
	return promise.Future()
}

// CloseFuture returns a Future that never fails and completes exactly
// when the stream reaches the closed phase (spec.md §4.6).
func (c *Child) CloseFuture() *Future {
	return c.state.closeFuture.Future()
}

// IsWritable reports the stream's current derived writability: the
// stream's own buffered-bytes watermark state, AND-gated with parent
// writability for activated streams. A pre-activation stream (no id
// yet) skips the parent term but still respects its own watermark
// (spec.md §4.7, §8 S4). An already-closed child is never writable.
func (c *Child) IsWritable() bool {
	if c.closed() {
		return false
	}
	return c.mux.isWritable(c.state)
}

// IsActive reports whether the stream has left setup-pending and has
// not yet begun closing.
func (c *Child) IsActive() bool {
	return c.state.phase == phaseActive ||
		c.state.phase == phaseHalfClosedLocal ||
		c.state.phase == phaseHalfClosedRemote
}

// StreamID returns the assigned stream id, or ErrNoStreamIDAvailable if
// this is a locally-created stream that has not yet had its first write
// flushed (spec.md §4.1, §6). The id of a closed stream, once assigned,
// remains readable for diagnostics.
func (c *Child) StreamID() (uint32, error) {
	if !c.state.idAssigned {
		return 0, ErrNoStreamIDAvailable
	}
	return c.state.id, nil
}

// Autoread reports whether inbound frames are delivered as soon as they
// arrive (the default) rather than only on an explicit Read call.
func (c *Child) Autoread() bool {
	return c.state.autoread
}

// SetAutoread toggles the autoread policy (spec.md §4.3). A no-op on an
// already-closed child.
func (c *Child) SetAutoread(v bool) {
	if c.closed() {
		return
	}
	c.state.autoread = v
}
