package state

import (
	"context"
	"sync"
)

// Promise is the completion signal returned by Dispatch. It resolves exactly once
// with true if the dispatched action succeeded and false otherwise.
type Promise struct {
	done chan struct{}
	once sync.Once
	ok   bool
}

func newPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

// resolvedPromise returns a promise which has already resolved with ok
func resolvedPromise(ok bool) *Promise {
	p := newPromise()
	p.resolve(ok)
	return p
}

func (p *Promise) resolve(ok bool) {
	p.once.Do(func() {
		p.ok = ok
		close(p.done)
	})
}

// Done returns a channel which is closed once the promise resolves
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Result returns the resolved value and whether the promise has resolved yet
func (p *Promise) Result() (ok bool, resolved bool) {
	select {
	case <-p.done:
		return p.ok, true
	default:
		return false, false
	}
}

// Wait blocks until the promise resolves or the context is done
func (p *Promise) Wait(ctx context.Context) (bool, error) {
	select {
	case <-p.done:
		return p.ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
