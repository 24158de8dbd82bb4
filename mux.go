package h2mux

import "golang.org/x/net/http2"

// Connection is M's single collaborator: the connection layer that owns
// the actual socket, HPACK, and wire framing (spec.md's "external
// collaborator C"). It is the generalization of the donor's conn.go
// write path (c.out channel feeding writeLoop) into an explicit
// interface, since M here never touches a net.Conn directly.
type Connection interface {
	// SubmitFrame hands an outbound frame to C to be written to the
	// wire. Always called from the goroutine driving Mux (spec.md §5).
	SubmitFrame(fr Frame)
	// ReportError surfaces a connection-inbound-path error not scoped
	// to any one stream, e.g. ErrNoSuchStream for a frame addressed to
	// an unknown id (spec.md §4.2, §7).
	ReportError(err error)
	// RequestRead asks C to perform another read of the underlying
	// transport, for an autoread=false child whose queue is empty
	// (spec.md §4.3).
	RequestRead()
}

// Initializer runs once per stream, before any inbound frame is
// delivered, to let caller code install a StreamHandler and perform
// any setup that may itself be asynchronous (spec.md §4.5). The
// returned Future's success or failure decides whether the stream
// activates or is torn down.
type Initializer func(c *Child) *Future

// Mux is the per-connection multiplexer: single-goroutine, no internal
// locking on its own state (spec.md §5) — every exported method here
// must only ever be called from the one goroutine driving the owning
// connection's event loop, mirroring the donor's serverConn.go
// handleStreams / conn.go writeLoop single-goroutine-owns-state design.
// The only state in this package that crosses goroutines is Promise /
// Future (promise.go), which is why it alone carries a mutex.
type Mux struct {
	mode Mode
	opts Options

	conn        Connection
	inboundInit Initializer

	ids     *idAllocator
	streams map[uint32]*streamState

	parentWritable bool

	logger  Logger
	metrics *Metrics

	connFrameHandler func(Frame)

	// Read-burst bookkeeping (spec.md §4.3's channelReadComplete /
	// flush-coalescing rules).
	duringBurst       bool
	burstTouched      []*streamState
	pendingFlushOrder []*streamState
	pendingFlushSet   map[*streamState]bool

	// postTasks run after the current Ingest/Notify* call finishes
	// mutating stream state, so handler teardown never runs while the
	// stream map or its own fields are mid-update (spec.md §9).
	postTasks []func()
}

// New constructs a Mux. conn is the connection layer M submits outbound
// frames to and asks for reads; inboundInit runs for every
// peer-initiated stream (spec.md §4.5) and may be nil if this side
// never accepts inbound streams.
func New(mode Mode, conn Connection, inboundInit Initializer, opts Options) *Mux {
	return &Mux{
		mode:           mode,
		opts:           opts.withDefaults(),
		conn:           conn,
		inboundInit:    inboundInit,
		ids:            newIDAllocator(mode),
		streams:        make(map[uint32]*streamState),
		parentWritable: true,
		logger:         nopLogger{},
	}
}

// SetLogger installs a logger for diagnostic output. Any type
// satisfying fasthttp.Logger (Printf(format string, args ...interface{}))
// works, matching the donor's own Logger field on Server/Client.
func (m *Mux) SetLogger(l Logger) {
	if l == nil {
		l = nopLogger{}
	}
	m.logger = l
}

// SetMetrics installs a Metrics recorder. Passing nil restores the
// no-op default.
func (m *Mux) SetMetrics(me *Metrics) {
	m.metrics = me
}

// SetConnectionFrameHandler installs the callback M forwards id=0
// frames and PRIORITY frames to, unmodified (spec.md §4.2). Settings,
// Ping and GoAway bodies flow through this same callback.
func (m *Mux) SetConnectionFrameHandler(h func(Frame)) {
	m.connFrameHandler = h
}

// These forward to Metrics' own nil-safe methods, so a Mux with no
// metrics installed (the zero value of m.metrics) still works.
func (m *Mux) incStreams()       { m.metrics.incStreams() }
func (m *Mux) decStreams()       { m.metrics.decStreams() }
func (m *Mux) addBuffered(d int) { m.metrics.addBuffered(d) }
func (m *Mux) incRST()           { m.metrics.incRST() }

// runPostTasks drains and executes queued teardown callbacks. Safe to
// call re-entrantly: tasks appended while draining are picked up by the
// outer loop since it re-reads m.postTasks on each pass.
func (m *Mux) runPostTasks() {
	for len(m.postTasks) > 0 {
		tasks := m.postTasks
		m.postTasks = nil
		for _, t := range tasks {
			t()
		}
	}
}

func (m *Mux) sendRST(s *streamState, code http2.ErrCode) {
	if s.rstSent {
		return
	}
	s.rstSent = true
	m.logger.Printf("h2mux: stream %d sending RST_STREAM code=%s", s.id, code)
	m.conn.SubmitFrame(Frame{StreamID: s.id, Body: &RSTStream{Code: code}})
	m.incRST()
}
