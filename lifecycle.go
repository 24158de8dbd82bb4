package h2mux

import (
	"io"

	"golang.org/x/net/http2"
)

// Lifecycle events are typed inbound signals from the connection layer
// to M, distinct from frames (spec.md §6). They are delivered through
// Mux.NotifyStreamCreated / Mux.NotifyStreamClosed /
// Mux.NotifyWindowUpdated / Mux.SetParentWritable rather than as a
// single sum type, since Go favors dedicated methods over a tagged
// union for a small, closed set of event kinds — the donor makes the
// analogous choice for its own `handleSettings`/`handlePing` cases in
// serverConn.go's switch over `fr.Type()`.

// StreamCreatedEvent announces that a stream's window accounting should
// be initialized (spec.md §4.6).
type StreamCreatedEvent struct {
	ID                 uint32
	LocalInitialWindow  int32
	RemoteInitialWindow int32
}

// StreamClosedEvent is the terminal event for a stream (spec.md §4.6).
// Reason is nil when the stream closed with no associated error (graceful
// close, or local RST completing); otherwise it carries the HTTP/2 error
// code to report to waiting close-promises and the child's inbound
// pipeline.
type StreamClosedEvent struct {
	ID     uint32
	Reason *http2.ErrCode
}

// WindowUpdatedEvent reports fresh window observations for a stream
// (spec.md §4.6). Per spec.md §9's open question, a call with both
// fields nil is preserved as a no-op — it is not known whether the
// donor's source treats this as intentional signaling or a dead edge,
// and the spec directs implementers not to guess.
type WindowUpdatedEvent struct {
	ID                  uint32
	InboundWindowSize  *int32
	OutboundWindowSize *int32
}

// NotifyStreamCreated initializes a stream's window accounting (spec.md
// §4.6). A stream whose initializer has already succeeded is normally
// active by now, since that success activates it; the activation
// branch here only acts on a stream still in setup-pending with its
// initializer done.
func (m *Mux) NotifyStreamCreated(ev StreamCreatedEvent) {
	s, ok := m.streams[ev.ID]
	if !ok {
		return
	}
	s.inboundWindow = ev.LocalInitialWindow
	s.outboundWindow = ev.RemoteInitialWindow
	s.streamCreatedSeen = true
	if s.initDone && s.phase == phaseSetupPending {
		m.activateStream(s)
	}
	m.runPostTasks()
}

// NotifyWindowUpdated records fresh window observations and, for an
// inbound window that has dropped to half or less of the configured
// target, emits a WINDOW_UPDATE back to the peer to replenish it
// (spec.md §4.6, §4.7). Per spec.md §9's open question, a call with
// both fields nil is preserved as a no-op.
func (m *Mux) NotifyWindowUpdated(ev WindowUpdatedEvent) {
	if ev.InboundWindowSize == nil && ev.OutboundWindowSize == nil {
		return
	}
	s, ok := m.streams[ev.ID]
	if !ok || s.phase == phaseClosed {
		return
	}
	if ev.OutboundWindowSize != nil {
		s.outboundWindow = *ev.OutboundWindowSize
	}
	if ev.InboundWindowSize != nil {
		s.inboundWindow = *ev.InboundWindowSize
		if s.inboundWindow <= m.opts.TargetWindowSize/2 {
			increment := m.opts.TargetWindowSize - s.inboundWindow
			s.inboundWindow = m.opts.TargetWindowSize
			m.conn.SubmitFrame(Frame{StreamID: s.id, Body: &WindowUpdate{Increment: uint32(increment)}})
		}
	}
	m.runPostTasks()
}

// NotifyStreamClosed is the terminal lifecycle event (spec.md §4.6):
// it satisfies every close-promise recorded on the stream and the
// stream's closeFuture, fails any outbound writes still unreleased,
// and schedules handler teardown. It is idempotent — an unknown or
// already-closed id is ignored.
func (m *Mux) NotifyStreamClosed(ev StreamClosedEvent) {
	s, ok := m.streams[ev.ID]
	if !ok || s.phase == phaseClosed {
		return
	}
	var reportErr error
	if ev.Reason != nil {
		reportErr = &ErrStreamClosed{ID: ev.ID, Code: *ev.Reason}
	}
	m.finishClose(s, reportErr)
	m.runPostTasks()
}

// closeStream implements Child.Close (spec.md §4.6): it is idempotent,
// is the only cancellation primitive M offers, and only ever emits one
// RST_STREAM per stream no matter how many callers invoke it. A stream
// that never acquired an id has nothing for the connection layer to
// confirm closed — there will be no subsequent StreamClosed event for
// it — so it is finished immediately instead of waiting on one.
func (m *Mux) closeStream(s *streamState, promise *Promise) {
	if s.phase == phaseClosed {
		promise.Succeed()
		return
	}
	s.closePromises = append(s.closePromises, promise)
	if !s.idAssigned {
		m.finishClose(s, nil)
		m.runPostTasks()
		return
	}
	m.sendRST(s, http2.ErrCodeCancel)
	if s.phase != phaseClosing {
		s.phase = phaseClosing
	}
	m.runPostTasks()
}

// finishClose moves a stream to closed, settles every completion it
// owes, and defers handler teardown to a post-task so it never runs
// while stream bookkeeping is still being mutated (spec.md §9).
func (m *Mux) finishClose(s *streamState, reportErr error) {
	s.phase = phaseClosed
	m.logger.Printf("h2mux: stream %d destroyed reason=%v", s.id, reportErr)

	failErr := reportErr
	if failErr == nil {
		failErr = io.EOF
	}
	pending := s.outboundPending
	s.outboundPending = nil
	for _, pw := range pending {
		pw.completion.Fail(failErr)
	}
	if s.flowTokens != 0 {
		m.addBuffered(-s.flowTokens)
		s.flowTokens = 0
	}

	promises := s.closePromises
	s.closePromises = nil
	for _, p := range promises {
		if reportErr != nil {
			p.Fail(reportErr)
		} else {
			p.Succeed()
		}
	}
	s.closeFuture.Succeed()

	child := s.child
	if reportErr != nil && child != nil && child.handler != nil {
		child.handler.HandleError(child, reportErr)
	}

	if s.idAssigned {
		delete(m.streams, s.id)
	}
	m.decStreams()

	m.postTasks = append(m.postTasks, func() {
		if child != nil && child.handler != nil {
			child.handler.HandleInactive(child)
		}
	})
}
