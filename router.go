package h2mux

// Ingest processes one read burst — everything C decoded from a single
// underlying transport read — atomically: every frame is routed before
// any channelReadComplete fires, and the outbound collector coalesces
// whatever flushes those deliveries trigger into one release per stream
// at the end (spec.md §4.2, §4.3, §4.4). Passing a single frame is the
// degenerate one-frame burst.
func (m *Mux) Ingest(frames ...Frame) {
	m.duringBurst = true
	for _, fr := range frames {
		m.ingestOne(fr)
	}
	touched := m.burstTouched
	m.burstTouched = nil
	for _, s := range touched {
		s.seenInBurst = false
		if s.child != nil && s.child.handler != nil {
			s.child.handler.HandleReadComplete(s.child)
		}
	}

	m.duringBurst = false
	order := m.pendingFlushOrder
	m.pendingFlushOrder = nil
	m.pendingFlushSet = nil
	for _, s := range order {
		m.releaseQueued(s)
	}

	m.runPostTasks()
}

func (m *Mux) markTouched(s *streamState) {
	if s.seenInBurst {
		return
	}
	s.seenInBurst = true
	m.burstTouched = append(m.burstTouched, s)
}

// ingestOne routes a single inbound frame (spec.md §4.2).
func (m *Mux) ingestOne(fr Frame) {
	if fr.StreamID == 0 || fr.Body.Type() == FramePriority {
		if ga, ok := fr.Body.(*GoAway); ok {
			m.logger.Printf("h2mux: GOAWAY received lastStreamID=%d code=%s", ga.LastStreamID, ga.Code)
		}
		if m.connFrameHandler != nil {
			m.connFrameHandler(fr)
		}
		return
	}

	s, ok := m.streams[fr.StreamID]
	if !ok {
		if fr.Body.Type() == FrameHeaders && m.isPeerInitiated(fr.StreamID) {
			m.openInboundStream(fr)
			return
		}
		m.conn.ReportError(&ErrNoSuchStream{ID: fr.StreamID})
		return
	}

	if s.phase == phaseClosed {
		m.conn.ReportError(&ErrNoSuchStream{ID: fr.StreamID})
		return
	}

	s.inboundDeferred = append(s.inboundDeferred, fr)
	m.markTouched(s)
	if s.phase == phaseActive && s.autoread {
		m.drainDeferred(s)
	}
}

// isPeerInitiated reports whether id's parity matches the side the peer
// opens streams on (RFC 7540 §5.1.1): odd ids are client-initiated, even
// ids server-initiated, so a HEADERS for an unknown id opens a new
// stream only when it was not this side that would have allocated it.
func (m *Mux) isPeerInitiated(id uint32) bool {
	clientInitiated := id%2 == 1
	if m.mode == ModeClient {
		return !clientInitiated
	}
	return clientInitiated
}

// drainDeferred hands every queued inbound frame to the stream's
// handler in arrival order, emptying inbound_deferred (spec.md §4.3,
// §4.5).
func (m *Mux) drainDeferred(s *streamState) {
	for len(s.inboundDeferred) > 0 {
		fr := s.inboundDeferred[0]
		s.inboundDeferred = s.inboundDeferred[1:]
		m.deliverFrame(s, fr)
	}
	s.readPending = false
}

func (m *Mux) deliverFrame(s *streamState, fr Frame) {
	if s.child == nil || s.child.handler == nil {
		return
	}
	s.child.handler.HandleFrame(s.child, fr.Body)
}

// readFromChild implements Child.Read for an autoread=false stream
// (spec.md §4.3): deliver the next queued frame if one is pending,
// otherwise mark the child as wanting one and ask C for another read.
func (m *Mux) readFromChild(s *streamState) {
	if len(s.inboundDeferred) == 0 {
		s.readPending = true
		m.conn.RequestRead()
		return
	}
	fr := s.inboundDeferred[0]
	s.inboundDeferred = s.inboundDeferred[1:]
	m.deliverFrame(s, fr)
	if len(s.inboundDeferred) == 0 {
		s.readPending = false
		if s.child != nil && s.child.handler != nil {
			s.child.handler.HandleReadComplete(s.child)
		}
	}
}
