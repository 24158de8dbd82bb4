package h2mux

// streamPhase is the per-stream state machine (spec.md §3). It
// generalizes the donor's 5-state StreamState enum (stream.go: Idle,
// Reserved, Open, HalfClosed, Closed) into the 7 phases spec.md names,
// with naming borrowed from the half-closed-local/half-closed-remote
// split used in other_examples' perbu-GTest2 pkg/http2/stream.go.
type streamPhase uint8

const (
	phaseIdle streamPhase = iota
	phaseSetupPending
	phaseActive
	phaseHalfClosedLocal
	phaseHalfClosedRemote
	phaseClosing
	phaseClosed
)

func (p streamPhase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseSetupPending:
		return "setup-pending"
	case phaseActive:
		return "active"
	case phaseHalfClosedLocal:
		return "half-closed-local"
	case phaseHalfClosedRemote:
		return "half-closed-remote"
	case phaseClosing:
		return "closing"
	case phaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// role distinguishes who initiated the stream (spec.md §3).
type role uint8

const (
	roleInbound role = iota
	roleOutbound
)

// pendingWrite is one queued outbound frame awaiting either flush or id
// assignment (spec.md §3 outbound_pending).
type pendingWrite struct {
	frame      Frame
	completion *Promise
}

// streamState is the per-stream record M owns exclusively (spec.md §3
// ownership rule). The child channel holds a back-reference to this
// struct (not to the owning map) so it can be released independently on
// teardown (spec.md §9 cyclic-reference note).
type streamState struct {
	id         uint32
	idAssigned bool
	role       role
	phase      streamPhase

	inboundDeferred []Frame
	outboundPending []pendingWrite

	// flowTokens is the sum of outbound DATA payload bytes currently
	// buffered in M but not yet released to the connection (spec.md
	// §4.7). HEADERS/RST_STREAM/WINDOW_UPDATE/PRIORITY contribute 0.
	flowTokens int
	// writableEdge is the stream's own edge-triggered writability,
	// before AND-ing with parent writability (spec.md §4.7).
	writableEdge bool

	autoread    bool
	readPending bool

	inboundWindow  int32
	outboundWindow int32

	// initDone records that the initializer succeeded; streamCreatedSeen
	// records that the StreamCreated event arrived (spec.md §4.5, §4.6).
	// A setup-pending inbound stream is activated by its initializer's
	// success and does not wait for StreamCreated.
	initDone          bool
	streamCreatedSeen bool

	closePromises []*Promise
	closeFuture   *Promise // always Succeed()'d, never Fail()'d

	rstSent bool

	// seenInBurst marks that this stream received at least one inbound
	// frame during the read burst currently being processed, so
	// channelReadComplete fans out only to it (spec.md §4.3, §8
	// invariant 7).
	seenInBurst bool

	child *Child
}

func newStreamState(role role) *streamState {
	return &streamState{
		role:         role,
		phase:        phaseIdle,
		autoread:     true,
		writableEdge: true,
		closeFuture:  NewPromise(),
	}
}

// bufferedOutboundBytes returns flowTokens. updateWritability reads
// flowTokens directly; nothing in the package calls this accessor.
func (s *streamState) bufferedOutboundBytes() int {
	return s.flowTokens
}
