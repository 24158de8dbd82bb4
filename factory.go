package h2mux

import "golang.org/x/net/http2"

// CreateStream implements the outbound factory path (spec.md §4.1,
// §4.5): the Child exists and the initializer runs before any id is
// assigned or any frame is sent. The returned Future is the
// initializer's own completion, so callers can tell setup failure
// apart from a later close.
//
// If the initializer fails, the stream is closed immediately without
// ever touching the wire — unlike an inbound setup failure, there is
// no peer-visible stream to reset, since no HEADERS was ever flushed.
func (m *Mux) CreateStream(init Initializer) (*Child, *Future) {
	s := newStreamState(roleOutbound)
	child := &Child{mux: m, state: s}
	s.child = child
	m.incStreams()

	var initFuture *Future
	if init != nil {
		initFuture = init(child)
	} else {
		p := NewPromise()
		p.Succeed()
		initFuture = p.Future()
	}

	initFuture.OnComplete(func(err error) {
		if err != nil {
			m.failOutboundSetup(s, err)
		} else {
			s.initDone = true
			if s.phase == phaseIdle {
				m.drainDeferred(s)
				s.phase = phaseActive
			}
		}
		m.runPostTasks()
	})

	return child, initFuture
}

func (m *Mux) failOutboundSetup(s *streamState, err error) {
	if s.phase == phaseClosed {
		return
	}
	pending := s.outboundPending
	s.outboundPending = nil
	for _, pw := range pending {
		pw.completion.Fail(err)
	}
	if s.flowTokens != 0 {
		m.addBuffered(-s.flowTokens)
		s.flowTokens = 0
	}
	m.finishClose(s, nil)
}

// openInboundStream implements the inbound factory path (spec.md §4.2,
// §4.5): a HEADERS frame for an unknown, peer-initiated id creates the
// stream in setup-pending and defers the frame itself until the
// initializer decides the stream's fate.
func (m *Mux) openInboundStream(fr Frame) {
	s := newStreamState(roleInbound)
	s.id = fr.StreamID
	s.idAssigned = true
	m.streams[s.id] = s
	m.incStreams()
	m.logger.Printf("h2mux: stream %d created (inbound)", s.id)

	child := &Child{mux: m, state: s}
	s.child = child

	s.phase = phaseSetupPending
	s.inboundDeferred = append(s.inboundDeferred, fr)
	m.markTouched(s)

	var initFuture *Future
	if m.inboundInit != nil {
		initFuture = m.inboundInit(child)
	} else {
		p := NewPromise()
		p.Succeed()
		initFuture = p.Future()
	}

	initFuture.OnComplete(func(err error) {
		m.onInboundSetupComplete(s, err)
		m.runPostTasks()
	})
}

// onInboundSetupComplete resolves the race between an initializer that
// finishes asynchronously and the stream being reset or closed in the
// meantime: a stream already past setup-pending simply ignores the
// outcome (spec.md §4.5, §8 invariant 3 — close-before-activation is a
// no-op in the other direction).
func (m *Mux) onInboundSetupComplete(s *streamState, err error) {
	if s.phase != phaseSetupPending {
		return
	}
	if err != nil {
		m.failInboundSetup(s, err)
		return
	}
	s.initDone = true
	m.drainDeferred(s)
	if s.phase == phaseSetupPending {
		s.phase = phaseActive
	}
}

// failInboundSetup tears an inbound stream down when its initializer
// fails (spec.md §4.5): the deferred inbound queue is dropped, queued
// outbound writes fail with the initializer's error, and exactly one
// RST_STREAM(CANCEL) is sent. The stream does not reach closed until
// the connection layer's subsequent StreamClosed event confirms it —
// the peer may still be sending frames for an id it hasn't yet learned
// is reset.
func (m *Mux) failInboundSetup(s *streamState, err error) {
	s.inboundDeferred = nil
	pending := s.outboundPending
	s.outboundPending = nil
	for _, pw := range pending {
		pw.completion.Fail(err)
	}
	if s.flowTokens != 0 {
		m.addBuffered(-s.flowTokens)
		s.flowTokens = 0
	}
	m.sendRST(s, http2.ErrCodeCancel)
	s.phase = phaseClosing
}

// activateStream implements the StreamCreated-triggers-activation edge
// case (spec.md §4.6). The initializer's own success already activates
// an inbound stream (onInboundSetupComplete, spec.md §4.5), so a
// StreamCreated event arriving after it finds the stream active; this
// is only reached for a stream still in setup-pending whose initializer
// has already reported success.
func (m *Mux) activateStream(s *streamState) {
	m.drainDeferred(s)
	s.phase = phaseActive
}
