package h2mux

// enqueueWrite implements Child.Write (spec.md §4.1, §4.3, §4.4). DATA
// payload bytes are charged to flow_tokens immediately, before the
// frame ever reaches outbound_pending's released state, so a burst of
// writes without an intervening flush still drives writability down.
func (m *Mux) enqueueWrite(s *streamState, body FrameBody, promise *Promise) {
	if s.phase == phaseClosed || s.phase == phaseClosing {
		promise.Fail(ErrIOOnClosedChannel)
		return
	}
	if d, ok := body.(*Data); ok {
		s.flowTokens += d.Len()
		m.addBuffered(d.Len())
	}
	s.outboundPending = append(s.outboundPending, pendingWrite{frame: Frame{Body: body}, completion: promise})
	m.updateWritability(s)
}

// flushStream implements Child.Flush (spec.md §4.1, §4.3). During a
// read burst, flushes are coalesced: the stream is marked dirty and
// actually released once, at the end of the burst, in first-flush
// order (spec.md §4.4). Outside a burst a flush releases immediately.
func (m *Mux) flushStream(s *streamState, fromBurstEnd bool) {
	if m.duringBurst && !fromBurstEnd {
		if m.pendingFlushSet == nil {
			m.pendingFlushSet = make(map[*streamState]bool)
		}
		if !m.pendingFlushSet[s] {
			m.pendingFlushSet[s] = true
			m.pendingFlushOrder = append(m.pendingFlushOrder, s)
		}
		return
	}
	m.releaseQueued(s)
}

// releaseQueued assigns an id on first release if the stream doesn't
// have one yet (spec.md §4.1), hands every queued frame to C in FIFO
// order, discharges flow_tokens as each one leaves M's buffer, and then
// re-evaluates writability (spec.md §4.4, §4.7).
func (m *Mux) releaseQueued(s *streamState) {
	if s.phase == phaseClosed || len(s.outboundPending) == 0 {
		return
	}
	if !s.idAssigned {
		s.id = m.ids.assign()
		s.idAssigned = true
		m.streams[s.id] = s
	}

	pending := s.outboundPending
	s.outboundPending = nil
	for _, pw := range pending {
		if d, ok := pw.frame.Body.(*Data); ok {
			s.flowTokens -= d.Len()
			m.addBuffered(-d.Len())
		}
		pw.frame.StreamID = s.id
		m.conn.SubmitFrame(pw.frame)
		pw.completion.Succeed()
	}
	m.updateWritability(s)
}

// updateWritability re-derives the stream's own edge-triggered
// writability from flow_tokens against the configured watermarks
// (spec.md §4.7): crossing above the high watermark flips it false;
// dropping to or below the low watermark flips it true. Inside the
// hysteresis band between the two, the previous edge value is kept.
func (m *Mux) updateWritability(s *streamState) {
	if s.flowTokens > m.opts.HighWatermark {
		s.writableEdge = false
	} else if s.flowTokens <= m.opts.LowWatermark {
		s.writableEdge = true
	}
}

// isWritable implements Child.IsWritable (spec.md §4.7). The buffered-
// bytes watermark term always applies, assigned or not; only the
// parent-writable AND-gate is skipped for a not-yet-activated stream
// (no id assigned), which is otherwise writable regardless of parent
// state.
func (m *Mux) isWritable(s *streamState) bool {
	if !s.idAssigned {
		return s.writableEdge
	}
	return s.writableEdge && m.parentWritable
}

// SetParentWritable propagates a parent-channel writability change to
// every activated stream whose own edge currently reads writable
// (spec.md §4.7) — pre-activation streams are unaffected since they
// report writable regardless of parent state, so there is nothing for
// them to be notified of.
func (m *Mux) SetParentWritable(writable bool) {
	if m.parentWritable == writable {
		return
	}
	m.parentWritable = writable
	for _, s := range m.streams {
		if !s.idAssigned || !s.writableEdge {
			continue
		}
		if s.child != nil && s.child.handler != nil {
			s.child.handler.HandleWritabilityChanged(s.child, writable)
		}
	}
	m.runPostTasks()
}
