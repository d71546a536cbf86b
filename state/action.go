package state

import (
	"github.com/SSSOC-CAN/flux/errors"
)

// Kind is the discriminant used to route an Action to its handler
type Kind string

// Action is an immutable command dispatched to a Store. Two actions are of the
// same kind iff their Kind methods return the same value.
type Action interface {
	Kind() Kind
}

// Command is a generic Action carrying a payload of type T
type Command[T any] struct {
	kind    Kind
	payload T
}

// NewAction creates a Command of the given kind. The payload is stored verbatim
func NewAction[T any](kind Kind, payload T) Command[T] {
	return Command[T]{kind: kind, payload: payload}
}

// Kind satisfies the Action interface
func (c Command[T]) Kind() Kind {
	return c.kind
}

// Payload returns the payload the command was constructed with
func (c Command[T]) Payload() T {
	return c.payload
}

// KindOf returns the kind of a possibly nil action
func KindOf(a Action) Kind {
	if a == nil {
		return ""
	}
	return a.Kind()
}

// Payload extracts the payload of a Command[T]. Returns ErrInvalidPayloadType if a
// is not a Command[T]
func Payload[T any](a Action) (T, error) {
	c, ok := a.(Command[T])
	if !ok {
		var zero T
		return zero, errors.ErrInvalidPayloadType
	}
	return c.payload, nil
}
