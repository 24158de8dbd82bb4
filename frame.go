package h2mux

import "golang.org/x/net/http2"

// FrameType enumerates the HTTP/2 frame types the multiplexer reasons
// about. Values match RFC 7540 §11.2, and the constant block mirrors
// the donor's frame.go (FrameData, FrameHeader, FramePriority, ...),
// renamed FrameHeaders/FrameRSTStream for Go convention.
type FrameType uint8

const (
	FrameData FrameType = iota
	FrameHeaders
	FramePriority
	FrameRSTStream
	FrameSettings
	FramePushPromise
	FramePing
	FrameGoAway
	FrameWindowUpdate
	FrameContinuation
)

func (t FrameType) String() string {
	switch t {
	case FrameData:
		return "DATA"
	case FrameHeaders:
		return "HEADERS"
	case FramePriority:
		return "PRIORITY"
	case FrameRSTStream:
		return "RST_STREAM"
	case FrameSettings:
		return "SETTINGS"
	case FramePushPromise:
		return "PUSH_PROMISE"
	case FramePing:
		return "PING"
	case FrameGoAway:
		return "GOAWAY"
	case FrameWindowUpdate:
		return "WINDOW_UPDATE"
	case FrameContinuation:
		return "CONTINUATION"
	default:
		return "UNKNOWN"
	}
}

// FrameBody is implemented by every typed frame payload the mux
// exchanges with the connection layer. Unlike the donor's Frame
// implementations (headers.go, data.go, ...), these never implement
// Serialize/Deserialize: wire encoding is out of scope (spec.md
// Non-goals) and the connection layer hands M already-decoded values.
type FrameBody interface {
	Type() FrameType
}

// Frame pairs a stream id with its body, the unit M's inbound router and
// outbound collector operate on (spec.md §6).
type Frame struct {
	StreamID uint32
	Body     FrameBody
}

// Headers is the HEADERS frame body (RFC 7540 §6.2). HeaderBlock is
// opaque to M — HPACK is out of scope — and is only ever forwarded.
type Headers struct {
	EndStream  bool
	EndHeaders bool
	Priority   bool
	Weight     uint8
	HeaderBlock []byte
}

func (h *Headers) Type() FrameType { return FrameHeaders }

// Reset clears h for reuse, matching the donor's Reset/CopyTo pairing
// style (headers.go).
func (h *Headers) Reset() {
	h.EndStream = false
	h.EndHeaders = false
	h.Priority = false
	h.Weight = 0
	h.HeaderBlock = h.HeaderBlock[:0]
}

func (h *Headers) CopyTo(dst *Headers) {
	dst.EndStream = h.EndStream
	dst.EndHeaders = h.EndHeaders
	dst.Priority = h.Priority
	dst.Weight = h.Weight
	dst.HeaderBlock = append(dst.HeaderBlock[:0], h.HeaderBlock...)
}

// Data is the DATA frame body (RFC 7540 §6.1). Its payload length is
// the only thing the outbound collector charges against flow_tokens
// (spec.md §4.4, §4.7).
type Data struct {
	EndStream bool
	Payload   []byte
}

func (d *Data) Type() FrameType { return FrameData }

func (d *Data) Len() int { return len(d.Payload) }

func (d *Data) Reset() {
	d.EndStream = false
	d.Payload = d.Payload[:0]
}

func (d *Data) CopyTo(dst *Data) {
	dst.EndStream = d.EndStream
	dst.Payload = append(dst.Payload[:0], d.Payload...)
}

// RSTStream is the RST_STREAM frame body (RFC 7540 §6.4). Code reuses
// golang.org/x/net/http2's ErrCode type, the same ecosystem type
// Cloudflare's h2mux package uses for its own stream error codes.
type RSTStream struct {
	Code http2.ErrCode
}

func (r *RSTStream) Type() FrameType { return FrameRSTStream }

// Priority is the PRIORITY frame body (RFC 7540 §6.3). M never acts on
// it beyond pass-through (spec.md §4.2).
type Priority struct {
	DependsOn uint32
	Exclusive bool
	Weight    uint8
}

func (p *Priority) Type() FrameType { return FramePriority }

// Ping is the PING frame body (RFC 7540 §6.7), always id=0.
type Ping struct {
	Ack  bool
	Data [8]byte
}

func (p *Ping) Type() FrameType { return FramePing }

// GoAway is the GOAWAY frame body (RFC 7540 §6.8), always id=0. M never
// synthesizes per-stream closure from it; it forwards unchanged and
// relies on the connection layer to emit StreamClosed events
// (spec.md §4.6).
type GoAway struct {
	LastStreamID uint32
	Code         http2.ErrCode
	Debug        []byte
}

func (g *GoAway) Type() FrameType { return FrameGoAway }

// WindowUpdate is the WINDOW_UPDATE frame body (RFC 7540 §6.9). A
// connection-level one (StreamID 0) is passed through untouched; a
// stream-level one is synthesized by the lifecycle coordinator
// (spec.md §4.6) and never arrives inbound addressed to a stream in
// this design (window accounting arrives as a WindowUpdated lifecycle
// event instead — see lifecycle.go).
type WindowUpdate struct {
	Increment uint32
}

func (w *WindowUpdate) Type() FrameType { return FrameWindowUpdate }

// Settings is the SETTINGS frame body (RFC 7540 §6.5), always id=0 and
// forwarded unchanged; M does not negotiate settings (spec.md
// Non-goals).
type Settings struct {
	Ack    bool
	Params map[SettingID]uint32
}

func (s *Settings) Type() FrameType { return FrameSettings }

// SettingID names a SETTINGS parameter (RFC 7540 §6.5.2).
type SettingID uint16

const (
	SettingHeaderTableSize      SettingID = 0x1
	SettingEnablePush           SettingID = 0x2
	SettingMaxConcurrentStreams SettingID = 0x3
	SettingInitialWindowSize    SettingID = 0x4
	SettingMaxFrameSize         SettingID = 0x5
	SettingMaxHeaderListSize    SettingID = 0x6
)
