package h2mux

// StreamHandler is the user-installed pipeline a Child dispatches
// inbound events to (spec.md §4.3, §6). It generalizes the donor's
// narrow per-connection callbacks (conn.go's onError/onGoaway) into a
// per-stream event surface, since M multiplexes many independent
// duplex streams rather than driving a single connection.
type StreamHandler interface {
	// HandleFrame delivers one inbound frame body in arrival order.
	HandleFrame(c *Child, body FrameBody)
	// HandleReadComplete fires once per read burst, after every frame
	// the burst delivered to this stream has been handed to
	// HandleFrame (spec.md §4.3, §8 invariant 7).
	HandleReadComplete(c *Child)
	// HandleWritabilityChanged fires when the stream's derived
	// writability (spec.md §4.7) flips due to a parent writability
	// change. Watermark-crossing edges on the stream's own buffered
	// bytes are only observable through IsWritable; M does not push
	// those as events.
	HandleWritabilityChanged(c *Child, writable bool)
	// HandleError reports the *ErrStreamClosed built from the reason of
	// the StreamClosed event that closed the stream — after a remote
	// RST_STREAM, or after the RST_STREAM sent for a failed inbound
	// initializer (spec.md §4.5). A failed outbound initializer closes
	// the stream without calling it.
	HandleError(c *Child, err error)
	// HandleInactive fires once, after the stream has fully closed and
	// been removed from its Mux's stream map (spec.md §9). No further
	// calls to Child methods are meaningful after this.
	HandleInactive(c *Child)
}

// BaseHandler implements StreamHandler with no-op methods so callers
// can embed it and override only the events they need, the same
// pattern the donor leans on for its optional Server/Client hooks.
type BaseHandler struct{}

func (BaseHandler) HandleFrame(*Child, FrameBody)         {}
func (BaseHandler) HandleReadComplete(*Child)             {}
func (BaseHandler) HandleWritabilityChanged(*Child, bool) {}
func (BaseHandler) HandleError(*Child, error)             {}
func (BaseHandler) HandleInactive(*Child)                 {}
