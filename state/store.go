package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/SSSOC-CAN/flux/errors"
	bg "github.com/SSSOCPaulCote/blunderguard"
	"github.com/SSSOCPaulCote/gux"
	"github.com/google/uuid"
	e "github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	ErrMissingHandler      = bg.Error("missing reducer or effect")
	ErrDuplicateHandler    = bg.Error("action kind already registered")
	ErrInvalidRegistration = bg.Error("registration must name exactly one reducer or effect")
	ErrStoreDestroyed      = bg.Error("store has been destroyed")
	ErrEffectDestroyed     = bg.Error("effect has been destroyed")
	ErrSuperseded          = bg.Error("superseded by a later request")
	defaultStoreName       = "store"
)

// MissingHandlerError is returned by Dispatch when no reducer or effect is
// registered for the action's kind. It matches ErrMissingHandler.
type MissingHandlerError struct {
	Kind Kind
}

func (m *MissingHandlerError) Error() string {
	return fmt.Sprintf("Missing Reducer or Effect for action (%s)!", m.Kind)
}

// Is lets errors.Is match ErrMissingHandler
func (m *MissingHandlerError) Is(target error) bool {
	return target == ErrMissingHandler
}

type (
	// Registration pairs an action kind with exactly one of a reducer or an effect constructor
	Registration[S any] struct {
		Kind    Kind
		Reducer Reducer[S]
		Effect  EffectConstructor[S]
	}

	// Provider declares the fixed action kind to handler table of a store
	Provider[S any] interface {
		Provide() []Registration[S]
	}

	// ProviderFunc adapts a function to the Provider interface
	ProviderFunc[S any] func() []Registration[S]

	// Option configures a Store
	Option func(*options)

	options struct {
		logger zerolog.Logger
		name   string
	}

	// Store holds the current state and routes dispatched actions to their reducer or effect
	Store[S any] struct {
		name      string
		logger    zerolog.Logger
		container *gux.Store
		reducers  map[Kind]Reducer[S]
		effects   map[Kind]Effect[S]

		dispatchMu sync.Mutex

		listenerMu     sync.RWMutex
		listeners      map[uint64]func(S)
		nextListenerID uint64

		lifeMu      sync.RWMutex
		destroyed   bool
		ctx         context.Context
		cancel      context.CancelFunc
		destroyOnce sync.Once
		wg          sync.WaitGroup
	}
)

// Provide satisfies the Provider interface
func (f ProviderFunc[S]) Provide() []Registration[S] {
	return f()
}

// ReducerFor registers reducer r for actions of the given kind
func ReducerFor[S any](kind Kind, r Reducer[S]) Registration[S] {
	return Registration[S]{Kind: kind, Reducer: r}
}

// EffectFor registers the effect built by c for actions of the given kind
func EffectFor[S any](kind Kind, c EffectConstructor[S]) Registration[S] {
	return Registration[S]{Kind: kind, Effect: c}
}

// WithLogger sets the logger used by the store
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithName sets the name the store logs under
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// New creates a Store holding initial and builds its registry from p. Effect
// constructors are called once, with the new store as their Dispatcher.
func New[S any](initial S, p Provider[S], opts ...Option) (*Store[S], error) {
	o := &options{
		logger: zerolog.Nop(),
		name:   defaultStoreName,
	}
	for _, opt := range opts {
		opt(o)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store[S]{
		name:      o.name,
		logger:    o.logger.With().Str("store", o.name).Logger(),
		reducers:  make(map[Kind]Reducer[S]),
		effects:   make(map[Kind]Effect[S]),
		listeners: make(map[uint64]func(S)),
		ctx:       ctx,
		cancel:    cancel,
	}
	var registrations []Registration[S]
	if p != nil {
		registrations = p.Provide()
	}
	var effectCtors []Registration[S]
	for _, r := range registrations {
		if (r.Reducer == nil) == (r.Effect == nil) {
			cancel()
			return nil, e.Wrapf(ErrInvalidRegistration, "action (%s)", r.Kind)
		}
		if _, ok := s.reducers[r.Kind]; ok {
			cancel()
			return nil, e.Wrapf(ErrDuplicateHandler, "action (%s)", r.Kind)
		}
		for _, c := range effectCtors {
			if c.Kind == r.Kind {
				cancel()
				return nil, e.Wrapf(ErrDuplicateHandler, "action (%s)", r.Kind)
			}
		}
		if r.Reducer != nil {
			s.reducers[r.Kind] = r.Reducer
		} else {
			effectCtors = append(effectCtors, r)
		}
	}
	for _, r := range effectCtors {
		s.effects[r.Kind] = r.Effect(s)
	}
	s.container = gux.CreateStore(initial, s.rootReducer)
	s.logger.Debug().Msg(fmt.Sprintf("store created with %v reducers and %v effects", len(s.reducers), len(s.effects)))
	return s, nil
}

// rootReducer adapts the typed reducer registry to the underlying gux store
func (s *Store[S]) rootReducer(current interface{}, a gux.Action) (interface{}, error) {
	var old S
	if current != nil {
		var ok bool
		old, ok = current.(S)
		if !ok {
			return nil, errors.ErrInvalidStateType
		}
	}
	action, ok := a.Payload.(Action)
	if !ok {
		return nil, errors.ErrInvalidPayloadType
	}
	r, ok := s.reducers[Kind(a.Type)]
	if !ok {
		return nil, &MissingHandlerError{Kind: Kind(a.Type)}
	}
	return r.Reduce(old, action)
}

// Name returns the name of the store
func (s *Store[S]) Name() string {
	return s.name
}

// GetState returns the current state
func (s *Store[S]) GetState() S {
	var current S
	if v := s.container.GetState(); v != nil {
		current, _ = v.(S)
	}
	return current
}

// Dispatch routes a to its registered handler. A reducer is applied and the new
// state published before Dispatch returns, with an already resolved promise. An
// effect is started on its own goroutine with a snapshot of the current state and
// the returned promise resolves with the effect's result. Dispatching an
// unregistered kind returns a *MissingHandlerError.
func (s *Store[S]) Dispatch(ctx context.Context, a Action) (*Promise, error) {
	kind := KindOf(a)
	if r, ok := s.reducers[kind]; ok && r != nil {
		return s.reduce(kind, a)
	}
	if eff, ok := s.effects[kind]; ok {
		return s.runEffect(ctx, kind, eff, a)
	}
	s.logger.Error().Str("action", string(kind)).Msg("no handler registered")
	return nil, &MissingHandlerError{Kind: kind}
}

// reduce applies the reducer for kind and publishes the resulting state. The
// store cannot be destroyed while a publish is in progress.
func (s *Store[S]) reduce(kind Kind, a Action) (*Promise, error) {
	s.lifeMu.RLock()
	if s.destroyed {
		s.lifeMu.RUnlock()
		return nil, ErrStoreDestroyed
	}
	s.dispatchMu.Lock()
	err := s.container.Dispatch(gux.Action{Type: string(kind), Payload: a})
	newState := s.GetState()
	s.dispatchMu.Unlock()
	s.lifeMu.RUnlock()
	if err != nil {
		s.logger.Debug().Str("action", string(kind)).Msg(fmt.Sprintf("reducer failed: %v", err))
		return nil, e.Wrapf(err, "could not reduce action (%s)", kind)
	}
	s.logger.Trace().Str("action", string(kind)).Msg("state published")
	s.notify(newState)
	return resolvedPromise(true), nil
}

// runEffect starts the effect on its own goroutine
func (s *Store[S]) runEffect(ctx context.Context, kind Kind, eff Effect[S], a Action) (*Promise, error) {
	s.lifeMu.RLock()
	defer s.lifeMu.RUnlock()
	if s.destroyed {
		return nil, ErrStoreDestroyed
	}
	dispatchID := uuid.NewString()
	snapshot := s.GetState()
	p := newPromise()
	effCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		defer stop()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().Str("action", string(kind)).Str("dispatch_id", dispatchID).Msg(fmt.Sprintf("effect panicked: %v", r))
				p.resolve(false)
			}
		}()
		s.logger.Debug().Str("action", string(kind)).Str("dispatch_id", dispatchID).Msg("effect started")
		ok := eff.Effect(effCtx, snapshot, a)
		s.logger.Debug().Str("action", string(kind)).Str("dispatch_id", dispatchID).Bool("ok", ok).Msg("effect finished")
		p.resolve(ok)
	}()
	return p, nil
}

// Subscribe registers a listener called with the new state after every publish.
// Returns a function removing the listener.
func (s *Store[S]) Subscribe(listener func(S)) func() {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	id := s.nextListenerID
	s.nextListenerID++
	s.listeners[id] = listener
	return func() {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		delete(s.listeners, id)
	}
}

// notify calls every listener with the published state
func (s *Store[S]) notify(newState S) {
	s.listenerMu.RLock()
	ls := make([]func(S), 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.listenerMu.RUnlock()
	for _, l := range ls {
		l(newState)
	}
}

// Destroy tears the store down. Every effect is destroyed exactly once and
// in-flight effects are cancelled. Further dispatches return ErrStoreDestroyed.
func (s *Store[S]) Destroy() {
	s.destroyOnce.Do(func() {
		s.lifeMu.Lock()
		s.destroyed = true
		s.lifeMu.Unlock()
		s.cancel()
		for _, eff := range s.effects {
			eff.Destroy()
		}
		s.logger.Debug().Msg("store destroyed")
	})
}

// Destroyed reports whether Destroy has been called
func (s *Store[S]) Destroyed() bool {
	s.lifeMu.RLock()
	defer s.lifeMu.RUnlock()
	return s.destroyed
}

// Wait blocks until every in-flight effect has returned or ctx is done
func (s *Store[S]) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
