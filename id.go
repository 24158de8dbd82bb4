package h2mux

// idAllocator hands out locally-initiated stream identifiers per
// RFC 7540 §5.1.1: odd for client-initiated streams, even for
// server-initiated ones, strictly increasing.
//
// Grounded on activeStreamMap.AcquireLocalID (Cloudflare's h2mux) and
// the donor's sc.lastID/c.nextID fields (serverConn.go, conn.go),
// generalized so assignment happens lazily at first flush rather than
// at stream creation (see releaseQueued in collector.go).
type idAllocator struct {
	next uint32
}

func newIDAllocator(mode Mode) *idAllocator {
	a := &idAllocator{next: 1}
	if mode == ModeServer {
		a.next = 2
	}
	return a
}

// assign returns the next local stream id and advances the counter.
func (a *idAllocator) assign() uint32 {
	id := a.next
	a.next += 2
	return id
}

// peek reports the id that the next assign() call would return, without
// consuming it. Nothing in the package calls it; it exists for
// diagnostics.
func (a *idAllocator) peek() uint32 {
	return a.next
}
