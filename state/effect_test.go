package state

import (
	"context"
	"testing"
	"time"

	"github.com/SSSOC-CAN/flux/errors"
	e "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDispatcher records dispatched actions without routing them anywhere
type recordingDispatcher struct {
	actions []Action
}

func (r *recordingDispatcher) Dispatch(_ context.Context, a Action) (*Promise, error) {
	r.actions = append(r.actions, a)
	return resolvedPromise(true), nil
}

func TestBaseEffectDispatchOrder(t *testing.T) {
	d := &recordingDispatcher{}
	b := NewBaseEffect(d)
	require.NoError(t, b.Dispatch(context.Background(), setTestAction{test: "1"}, setTestAction{test: "2"}))
	assert.Equal(t, []Action{setTestAction{test: "1"}, setTestAction{test: "2"}}, d.actions)
}

func TestBaseEffectDispatchAfterDestroy(t *testing.T) {
	d := &recordingDispatcher{}
	b := NewBaseEffect(d)
	b.Destroy()
	b.Destroy()
	err := b.Dispatch(context.Background(), setTestAction{test: "late"})
	assert.True(t, e.Is(err, ErrEffectDestroyed))
	assert.Empty(t, d.actions)
}

func TestBaseEffectContext(t *testing.T) {
	b := NewBaseEffect(&recordingDispatcher{})
	ctx, cancel := b.Context(context.Background())
	defer cancel()
	select {
	case <-ctx.Done():
		t.Fatal("context done before the effect was destroyed")
	default:
	}
	b.Destroy()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context not cancelled after the effect was destroyed")
	}
}

func TestBaseEffectSwitch(t *testing.T) {
	b := NewBaseEffect(&recordingDispatcher{})
	first, cancelFirst := b.Switch(context.Background())
	defer cancelFirst()
	second, cancelSecond := b.Switch(context.Background())
	defer cancelSecond()
	select {
	case <-first.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("previous request was not cancelled")
	}
	assert.True(t, Superseded(first))
	assert.NoError(t, second.Err())
	assert.False(t, Superseded(second))
	cancelSecond()
	assert.Error(t, second.Err())
	assert.False(t, Superseded(second), "a request cancelled by its own caller is not superseded")
}

func TestPromise(t *testing.T) {
	p := newPromise()
	_, resolved := p.Result()
	assert.False(t, resolved)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	p.resolve(true)
	p.resolve(false)
	ok, resolved := p.Result()
	assert.True(t, resolved)
	assert.True(t, ok)
}

func TestPayload(t *testing.T) {
	a := NewAction[int]("count", 3)
	assert.Equal(t, Kind("count"), a.Kind())
	v, err := Payload[int](a)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	_, err = Payload[string](a)
	assert.ErrorIs(t, err, errors.ErrInvalidPayloadType)
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestCombineReducers(t *testing.T) {
	suffix := ReducerFunc[testState](func(s testState, _ Action) (testState, error) {
		s.Test += "!"
		return s, nil
	})
	combined := CombineReducers[testState](setTestReducer, suffix)
	next, err := combined.Reduce(testState{}, setTestAction{test: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi!", next.Test)
	original := testState{Test: "unchanged"}
	out, err := CombineReducers[testState](suffix, failingReducer).Reduce(original, setTestAction{})
	require.Error(t, err)
	assert.Equal(t, original, out)
}
