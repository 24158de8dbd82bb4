package h2mux

import (
	"context"
	"sync"
)

// Promise/Future is the single-result completion primitive used for
// write/close/create-stream completions (spec.md §6). It is grounded on
// the donor's `chan error` idiom (client.go's `strm.err`, conn.go's
// `r.Err <- err; close(r.Err)`), generalized into a broadcast primitive
// so that several independent close() callers can each hold their own
// Future over one underlying event (spec.md §4.6, §8 invariant 4).
//
// Completion never blocks: Succeed/Fail run every registered callback
// inline. Since the multiplexer's event loop is the only goroutine that
// ever completes a Promise tied to stream state, this keeps "no
// operation blocks the loop" (spec.md §5) true without needing the loop
// to block on a channel receive.
type Promise struct {
	mu        sync.Mutex
	done      bool
	err       error
	callbacks []func(error)
}

// NewPromise returns an incomplete promise.
func NewPromise() *Promise {
	return &Promise{}
}

// Succeed completes the promise with no error. A second call is a no-op,
// matching spec.md's "idempotent" RST_STREAM/close semantics.
func (p *Promise) Succeed() {
	p.complete(nil)
}

// Fail completes the promise with err.
func (p *Promise) Fail(err error) {
	p.complete(err)
}

func (p *Promise) complete(err error) {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return
	}
	p.done = true
	p.err = err
	cbs := p.callbacks
	p.callbacks = nil
	p.mu.Unlock()

	for _, cb := range cbs {
		cb(err)
	}
}

// Future returns a read-only handle to this promise's eventual result.
// Future may be shared across goroutines; the promise itself is only
// ever completed from the mux's single event-loop goroutine, but
// OnComplete/Wait may be called concurrently from any goroutine.
func (p *Promise) Future() *Future {
	return &Future{p: p}
}

// Future observes the eventual result of a Promise.
type Future struct {
	p *Promise
}

// OnComplete registers cb to run once the promise completes. If it has
// already completed, cb runs synchronously, inline, before OnComplete
// returns.
func (f *Future) OnComplete(cb func(error)) {
	p := f.p

	p.mu.Lock()
	if p.done {
		err := p.err
		p.mu.Unlock()
		cb(err)
		return
	}
	p.callbacks = append(p.callbacks, cb)
	p.mu.Unlock()
}

// Wait blocks the calling goroutine until the future completes or ctx is
// done. It must not be called from the mux's event-loop goroutine.
func (f *Future) Wait(ctx context.Context) error {
	resultCh := make(chan error, 1)
	f.OnComplete(func(err error) { resultCh <- err })

	select {
	case err := <-resultCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
