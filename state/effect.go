package state

import (
	"context"
	"sync"

	e "github.com/pkg/errors"
)

// Dispatcher is the entry point effects use to dispatch follow-up actions. A
// Store is a Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, a Action) (*Promise, error)
}

// Effect is an asynchronous handler for one action kind. The snapshot must not
// be modified. Effect returns true on success and false on an expected failure,
// which it is responsible for reporting out of band.
type Effect[S any] interface {
	Effect(ctx context.Context, snapshot S, a Action) bool
	Destroy()
}

// StateReader is implemented by a Store. An effect which must act on the latest
// committed state instead of its dispatch snapshot can read it through the
// Dispatcher it was constructed with.
type StateReader[S any] interface {
	GetState() S
}

// EffectConstructor builds an effect bound to the dispatcher of its owning Store.
// It is called once per Store.
type EffectConstructor[S any] func(d Dispatcher) Effect[S]

// BaseEffect carries the dispatcher and cancellation signal shared by all effects.
// It is meant to be embedded.
type BaseEffect struct {
	dispatcher Dispatcher
	quit       chan struct{}
	quitOnce   sync.Once

	mu           sync.Mutex
	cancelLatest context.CancelCauseFunc
}

// NewBaseEffect creates a BaseEffect dispatching to d
func NewBaseEffect(d Dispatcher) *BaseEffect {
	return &BaseEffect{
		dispatcher: d,
		quit:       make(chan struct{}),
	}
}

// Destroy fires the cancellation signal. Safe to call more than once
func (b *BaseEffect) Destroy() {
	b.quitOnce.Do(func() {
		close(b.quit)
	})
}

// Done returns a channel which is closed when the effect is destroyed
func (b *BaseEffect) Done() <-chan struct{} {
	return b.quit
}

// Destroyed reports whether the cancellation signal has fired
func (b *BaseEffect) Destroyed() bool {
	select {
	case <-b.quit:
		return true
	default:
		return false
	}
}

// Context returns a child of parent which is also cancelled when the effect is
// destroyed. The returned cancel function must be called to release resources.
func (b *BaseEffect) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-b.quit:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Switch behaves like Context but first cancels the context handed out by the
// previous call to Switch, so only the latest request of this effect stays in
// flight. A context cancelled this way reports ErrSuperseded as its cause.
func (b *BaseEffect) Switch(parent context.Context) (context.Context, context.CancelFunc) {
	switched, cancelSwitched := context.WithCancelCause(parent)
	ctx, cancel := b.Context(switched)
	b.mu.Lock()
	if b.cancelLatest != nil {
		b.cancelLatest(ErrSuperseded)
	}
	b.cancelLatest = cancelSwitched
	b.mu.Unlock()
	return ctx, func() {
		cancel()
		cancelSwitched(context.Canceled)
	}
}

// Superseded reports whether ctx was cancelled by a later call to Switch
func Superseded(ctx context.Context) bool {
	return ctx.Err() != nil && e.Is(context.Cause(ctx), ErrSuperseded)
}

// Dispatch dispatches the given actions in order through the owning store. No
// action is dispatched once the effect has been destroyed. Follow-up effects keep
// the values of ctx but not its cancellation, so they outlive the dispatching
// effect and end with the store.
func (b *BaseEffect) Dispatch(ctx context.Context, actions ...Action) error {
	ctx = context.WithoutCancel(ctx)
	for _, a := range actions {
		if b.Destroyed() {
			return ErrEffectDestroyed
		}
		if _, err := b.dispatcher.Dispatch(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// funcEffect is an Effect backed by a function
type funcEffect[S any] struct {
	*BaseEffect
	fn func(ctx context.Context, b *BaseEffect, snapshot S, a Action) bool
}

func (f *funcEffect[S]) Effect(ctx context.Context, snapshot S, a Action) bool {
	return f.fn(ctx, f.BaseEffect, snapshot, a)
}

// EffectFunc returns a constructor for an effect backed by fn. fn receives the
// effect's BaseEffect for follow-up dispatches and cancellation.
func EffectFunc[S any](fn func(ctx context.Context, b *BaseEffect, snapshot S, a Action) bool) EffectConstructor[S] {
	return func(d Dispatcher) Effect[S] {
		return &funcEffect[S]{BaseEffect: NewBaseEffect(d), fn: fn}
	}
}
