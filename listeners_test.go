package rws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListeners_DispatchOrder(t *testing.T) {
	var ls Listeners
	rec := &recorder{}

	ls.Add(EventMessage, rec.handler("a"), ListenerOptions{})
	ls.Add(EventClose, rec.handler("close"), ListenerOptions{})
	ls.Add(EventMessage, rec.handler("b"), ListenerOptions{})

	ls.Dispatch(Event{Kind: EventMessage})
	assert.Equal(t, []string{"a", "b"}, rec.get())
	assert.Equal(t, 3, ls.Len())
}

func TestListeners_Remove(t *testing.T) {
	var ls Listeners
	rec := &recorder{}

	a := ls.Add(EventMessage, rec.handler("a"), ListenerOptions{})
	ls.Add(EventMessage, rec.handler("b"), ListenerOptions{})

	assert.True(t, ls.Remove(a))
	assert.False(t, ls.Remove(a))
	assert.False(t, ls.Remove(0))

	ls.Dispatch(Event{Kind: EventMessage})
	assert.Equal(t, []string{"b"}, rec.get())
}

func TestListeners_Once(t *testing.T) {
	var ls Listeners
	rec := &recorder{}

	ls.Add(EventOpen, rec.handler("once"), ListenerOptions{Once: true})
	ls.Dispatch(Event{Kind: EventOpen})
	ls.Dispatch(Event{Kind: EventOpen})

	assert.Equal(t, []string{"once"}, rec.get())
	assert.Equal(t, 0, ls.Len())
}

func TestListeners_HandlerMayModify(t *testing.T) {
	var ls Listeners
	rec := &recorder{}

	var self Ref
	self = ls.Add(EventMessage, func(ev Event) {
		ls.Remove(self)
		ls.Add(EventMessage, rec.handler("added"), ListenerOptions{})
	}, ListenerOptions{})

	ls.Dispatch(Event{Kind: EventMessage})
	assert.Empty(t, rec.get(), "listeners added during dispatch wait for the next event")

	ls.Dispatch(Event{Kind: EventMessage})
	assert.Equal(t, []string{"added"}, rec.get())
}

func TestRef_String(t *testing.T) {
	var ar atomicRef
	assert.Equal(t, "#1", ar.nextRef().String())
	assert.Equal(t, Ref(2), ar.nextRef())
}

func TestConnState_String(t *testing.T) {
	tests := []struct {
		state    ConnState
		expected string
	}{
		{Connecting, "connecting"},
		{Open, "open"},
		{Closing, "closing"},
		{Closed, "closed"},
		{ConnState(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}
