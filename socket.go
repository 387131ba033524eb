package rws

import (
	"fmt"
	"net/url"
	"sync"
	"time"
)

type subscription struct {
	ref     Ref
	kind    EventKind
	handler Handler
	opts    ListenerOptions

	// transport the handler is currently attached to, and its ref there
	on       Transport
	attached Ref
}

func (sub *subscription) attach(t Transport) {
	sub.attached = t.AddEventListener(sub.kind, sub.handler, sub.opts)
	sub.on = t
}

func (sub *subscription) detach(t Transport) {
	if sub.on == nil || sub.on != t {
		return
	}
	t.RemoveEventListener(sub.attached)
	sub.on = nil
	sub.attached = 0
}

// Socket keeps a Transport to a fixed endpoint connected. When the transport
// closes it opens a replacement every retry interval until one is open, then
// re-registers every listener added through the Socket. A retry episode that
// outlives the give-up budget is abandoned and GaveUp is closed.
type Socket struct {
	endpoint      string
	retryInterval time.Duration
	giveUpAfter   time.Duration
	factory       Factory
	logger        Logger
	metrics       *Metrics
	clock         clock
	onReconnect   func(attempts int)

	mu         sync.Mutex
	transport  Transport
	refs       atomicRef
	subs       []*subscription
	observer   Ref
	observerOn Transport
	interval   *interval
	budget     stopper
	episode    uint64
	attempts   int
	stopped    bool
	gaveUp     chan struct{}
	gaveUpOnce sync.Once
}

// NewSocket opens a transport to endPoint and starts watching it for
// disconnects. The connection is established immediately.
func NewSocket(endPoint string, opts ...Option) (*Socket, error) {
	if endPoint == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidEndpoint)
	}
	if _, err := url.Parse(endPoint); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}

	s := &Socket{
		endpoint:      endPoint,
		retryInterval: defaultRetryInterval,
		giveUpAfter:   defaultGiveUpAfter,
		logger:        NewNoopLogger(),
		clock:         realClock{},
		gaveUp:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.retryInterval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRetryInterval, s.retryInterval)
	}
	if s.factory == nil {
		f := NewWebsocketFactory(nil)
		f.Logger = s.logger
		s.factory = f
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.transport = s.open()
	s.watch()

	return s, nil
}

func (s *Socket) Endpoint() string {
	return s.endpoint
}

// State returns the state of the current transport.
func (s *Socket) State() ConnState {
	return s.current().State()
}

// Attempts returns the attempt number of the running retry episode, or 0.
func (s *Socket) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.attempts
}

// GaveUp is closed when a retry episode exceeds its budget. No further
// reconnects are attempted after that.
func (s *Socket) GaveUp() <-chan struct{} {
	return s.gaveUp
}

// AddEventListener registers handler on the current transport and on every
// transport that replaces it. The returned Ref removes it again.
func (s *Socket) AddEventListener(kind EventKind, handler Handler, opts ListenerOptions) Ref {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &subscription{
		ref:     s.refs.nextRef(),
		kind:    kind,
		handler: handler,
		opts:    opts,
	}
	s.subs = append(s.subs, sub)
	sub.attach(s.transport)

	return sub.ref
}

// RemoveEventListener forgets the listener registered under ref and detaches
// it from the current transport. Unknown refs are ignored.
func (s *Socket) RemoveEventListener(ref Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.ref == ref {
			sub.detach(s.transport)
			continue
		}
		kept = append(kept, sub)
	}
	s.subs = kept
}

// Send writes to the current transport. Nothing is buffered while
// disconnected; the transport's error is returned as is.
func (s *Socket) Send(t MessageType, data []byte) error {
	return s.current().Send(t, data)
}

// Close closes the current transport. The resulting close event is treated
// like any other disconnect and starts a retry episode; use Stop to shut the
// socket down.
func (s *Socket) Close() error {
	return s.current().Close()
}

// Stop cancels any retry episode, stops watching for disconnects and closes
// the current transport.
func (s *Socket) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.stopTimers()
	s.detachObserver()
	t := s.transport
	s.mu.Unlock()

	s.logger.Printf(LogInfo, "socket", "Stopped reconnecting to %s", s.endpoint)
	return t.Close()
}

func (s *Socket) current() Transport {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.transport
}

func (s *Socket) open() Transport {
	t := s.factory.Open(s.endpoint)
	s.metrics.transportOpened()
	s.logger.Printf(LogDebug, "socket", "Opening transport to %s", s.endpoint)
	return t
}

// watch attaches the disconnect observer to the current transport. A
// transport that closed before the observer was in place starts an episode
// straight away.
func (s *Socket) watch() {
	s.attachObserver()
	if st := s.transport.State(); st == Closing || st == Closed {
		s.beginEpisode()
	}
}

func (s *Socket) attachObserver() {
	t := s.transport
	s.observer = t.AddEventListener(EventClose, func(Event) {
		s.handleClose(t)
	}, ListenerOptions{})
	s.observerOn = t
}

func (s *Socket) detachObserver() {
	if s.observerOn == nil {
		return
	}
	s.observerOn.RemoveEventListener(s.observer)
	s.observerOn = nil
	s.observer = 0
}

func (s *Socket) handleClose(t Transport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || t != s.transport || s.interval != nil {
		return
	}
	s.beginEpisode()
}

// beginEpisode must be called with s.mu held.
func (s *Socket) beginEpisode() {
	s.episode++
	s.metrics.disconnected()
	s.logger.Printf(LogInfo, "socket", "Disconnected from %s, retrying every %s", s.endpoint, s.retryInterval)

	iv := newInterval(s.clock, s.retryInterval)
	s.interval = iv
	iv.Start(func() {
		s.tick(iv)
	})

	if s.giveUpAfter > 0 {
		episode := s.episode
		s.budget = s.clock.AfterFunc(s.giveUpAfter, func() {
			s.expire(episode)
		})
	}
}

func (s *Socket) tick(iv *interval) {
	attempts, ok := s.retry(iv)
	if ok && s.onReconnect != nil {
		s.onReconnect(attempts)
	}
}

// retry makes one reconnect attempt and reports whether the socket is
// connected again, and after how many attempts.
func (s *Socket) retry(iv *interval) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.interval != iv {
		return 0, false
	}

	s.attempts++
	attempts := s.attempts
	s.metrics.attempt(attempts)
	s.logger.Printf(LogInfo, "socket", "Reconnect attempt %d to %s", attempts, s.endpoint)

	switch s.transport.State() {
	case Closed, Closing:
		s.detachObserver()
		s.transport = s.open()
		if s.transport.State() != Open {
			return attempts, false
		}
		s.reconnected()
		return attempts, true
	case Open:
		s.reconnected()
		return attempts, true
	}
	return attempts, false
}

// reconnected must be called with s.mu held and an open transport.
func (s *Socket) reconnected() {
	s.stopTimers()
	s.detachObserver()

	t := s.transport
	for _, sub := range s.subs {
		sub.detach(t)
	}
	for _, sub := range s.subs {
		sub.attach(t)
	}

	s.metrics.reconnected()
	s.logger.Printf(LogInfo, "socket", "Reconnected to %s, restored %d listeners", s.endpoint, len(s.subs))

	s.watch()
}

func (s *Socket) expire(episode uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if episode != s.episode || s.interval == nil {
		return
	}
	s.stopTimers()
	s.metrics.gaveUp()
	s.logger.Printf(LogWarning, "socket", "Gave up reconnecting to %s after %s", s.endpoint, s.giveUpAfter)
	s.gaveUpOnce.Do(func() {
		close(s.gaveUp)
	})
}

// stopTimers ends the current retry episode. It must be called with s.mu held.
func (s *Socket) stopTimers() {
	if s.interval != nil {
		s.interval.Stop()
		s.interval = nil
	}
	if s.budget != nil {
		s.budget.Stop()
		s.budget = nil
	}
	s.attempts = 0
	s.metrics.resetAttempt()
}
