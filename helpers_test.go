package rws

import (
	"sort"
	"sync"
	"time"
)

// manualClock fires callbacks only when advanced.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) stopper {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &manualTimer{clock: c, at: c.now + d, seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// Advance moves time forward by d, running due callbacks in order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDue(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()

		next.f()
	}
}

// AdvanceTo moves time forward to the absolute time at.
func (c *manualClock) AdvanceTo(at time.Duration) {
	c.Advance(at - c.Now())
}

func (c *manualClock) nextDue(target time.Duration) *manualTimer {
	var pending []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= target {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].at == pending[j].at {
			return pending[i].seq < pending[j].seq
		}
		return pending[i].at < pending[j].at
	})
	return pending[0]
}

func (c *manualClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fakeTransport changes state only when told to.
type fakeTransport struct {
	listeners Listeners

	mu         sync.Mutex
	state      ConnState
	sent       []string
	closeCalls int
}

func (f *fakeTransport) State() ConnState {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.state
}

func (f *fakeTransport) setState(st ConnState) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state = st
}

func (f *fakeTransport) AddEventListener(kind EventKind, handler Handler, opts ListenerOptions) Ref {
	return f.listeners.Add(kind, handler, opts)
}

func (f *fakeTransport) RemoveEventListener(ref Ref) {
	f.listeners.Remove(ref)
}

func (f *fakeTransport) Send(t MessageType, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != Open {
		return ErrNotOpen
	}
	f.sent = append(f.sent, string(data))
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closeCalls++
	wasClosed := f.state == Closed
	f.state = Closed
	f.mu.Unlock()

	if !wasClosed {
		f.listeners.Dispatch(Event{Kind: EventClose, Code: 1000, WasClean: true})
	}
	return nil
}

// drop simulates an unexpected disconnect.
func (f *fakeTransport) drop() {
	f.setState(Closed)
	f.listeners.Dispatch(Event{Kind: EventClose, Code: 1006})
}

func (f *fakeTransport) emit(ev Event) {
	f.listeners.Dispatch(ev)
}

func (f *fakeTransport) kinds() []EventKind {
	return f.listeners.kinds()
}

// fakeFactory hands out fakeTransports whose initial state is chosen by
// stateFor, called with the zero based index of the transport.
type fakeFactory struct {
	mu       sync.Mutex
	stateFor func(n int) ConnState
	opened   []*fakeTransport
	endpoint string
}

func newFakeFactory(stateFor func(n int) ConnState) *fakeFactory {
	return &fakeFactory{stateFor: stateFor}
}

func (f *fakeFactory) Open(endpoint string) Transport {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := &fakeTransport{state: f.stateFor(len(f.opened))}
	f.opened = append(f.opened, t)
	f.endpoint = endpoint
	return t
}

func (f *fakeFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.opened)
}

func (f *fakeFactory) get(n int) *fakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.opened[n]
}

func (f *fakeFactory) last() *fakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.opened[len(f.opened)-1]
}

// firstOpenThen returns a stateFor whose first transport is open and every
// later one starts in state.
func firstOpenThen(state ConnState) func(int) ConnState {
	return func(n int) ConnState {
		if n == 0 {
			return Open
		}
		return state
	}
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
