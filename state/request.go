package state

import (
	"context"
	"sync"
)

// RequestState is the lifecycle of a named request as seen by observers
type RequestState struct {
	InProgress   bool
	Error        bool
	ErrorMessage string
	Count        int
	Next         string
	Previous     string
}

// RequestStatePatch is a partial update of a RequestState. Nil fields are left untouched.
type RequestStatePatch struct {
	InProgress   *bool
	Error        *bool
	ErrorMessage *string
	Count        *int
	Next         *string
	Previous     *string
}

// RequestStateUpdater reports request lifecycle changes to observers
type RequestStateUpdater func(requestName string, patch RequestStatePatch)

// Apply returns a copy of r with the patch applied
func (p RequestStatePatch) Apply(r RequestState) RequestState {
	if p.InProgress != nil {
		r.InProgress = *p.InProgress
	}
	if p.Error != nil {
		r.Error = *p.Error
	}
	if p.ErrorMessage != nil {
		r.ErrorMessage = *p.ErrorMessage
	}
	if p.Count != nil {
		r.Count = *p.Count
	}
	if p.Next != nil {
		r.Next = *p.Next
	}
	if p.Previous != nil {
		r.Previous = *p.Previous
	}
	return r
}

func boolPtr(b bool) *bool { return &b }

func stringPtr(s string) *string { return &s }

// InProgressPatch marks a request as started and clears any previous error
func InProgressPatch() RequestStatePatch {
	return RequestStatePatch{InProgress: boolPtr(true), Error: boolPtr(false), ErrorMessage: stringPtr("")}
}

// SucceededPatch marks a request as finished and clears any previous error
func SucceededPatch() RequestStatePatch {
	return RequestStatePatch{InProgress: boolPtr(false), Error: boolPtr(false), ErrorMessage: stringPtr("")}
}

// FailedPatch marks a request as finished with the given error
func FailedPatch(err error) RequestStatePatch {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return RequestStatePatch{InProgress: boolPtr(false), Error: boolPtr(true), ErrorMessage: stringPtr(msg)}
}

// PagePatch records pagination details of a finished list request
func PagePatch(count int, next, previous string) RequestStatePatch {
	return RequestStatePatch{
		InProgress:   boolPtr(false),
		Error:        boolPtr(false),
		ErrorMessage: stringPtr(""),
		Count:        &count,
		Next:         &next,
		Previous:     &previous,
	}
}

// RequestStates tracks request lifecycles by name. Its Update method is a RequestStateUpdater.
type RequestStates struct {
	mu       sync.RWMutex
	requests map[string]RequestState
}

// NewRequestStates creates an empty tracker
func NewRequestStates() *RequestStates {
	return &RequestStates{requests: make(map[string]RequestState)}
}

// Update applies patch to the named request
func (r *RequestStates) Update(requestName string, patch RequestStatePatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[requestName] = patch.Apply(r.requests[requestName])
}

// Get returns the current state of the named request
func (r *RequestStates) Get(requestName string) RequestState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.requests[requestName]
}

// Request performs one service call on behalf of effect e, reporting the
// request lifecycle to update under name. It returns the call's result and true
// on success. If e is destroyed, or ctx is superseded by a later Switch, while
// the call is in flight the result is abandoned: Request returns false and
// reports nothing further, leaving the request state to the newer request.
func Request[T any](ctx context.Context, e *BaseEffect, name string, update RequestStateUpdater, call func(context.Context) (T, error)) (T, bool) {
	var zero T
	if update == nil {
		update = func(string, RequestStatePatch) {}
	}
	if e.Destroyed() {
		return zero, false
	}
	ctx, cancel := e.Context(ctx)
	defer cancel()
	update(name, InProgressPatch())
	type result struct {
		value T
		err   error
	}
	resChan := make(chan result, 1)
	go func() {
		v, err := call(ctx)
		resChan <- result{value: v, err: err}
	}()
	select {
	case res := <-resChan:
		if e.Destroyed() || Superseded(ctx) {
			return zero, false
		}
		if res.err != nil {
			update(name, FailedPatch(res.err))
			return zero, false
		}
		update(name, SucceededPatch())
		return res.value, true
	case <-ctx.Done():
		if e.Destroyed() || Superseded(ctx) {
			return zero, false
		}
		update(name, FailedPatch(ctx.Err()))
		return zero, false
	}
}
