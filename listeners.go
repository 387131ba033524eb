package rws

import "sync"

type listener struct {
	ref     Ref
	kind    EventKind
	handler Handler
	once    bool
}

// Listeners is an ordered set of event handlers keyed by the Ref returned from
// Add. Transports embed it to implement AddEventListener and
// RemoveEventListener. The zero value is ready to use.
type Listeners struct {
	mu    sync.Mutex
	refs  atomicRef
	items []*listener
}

// Add registers handler for kind and returns a handle for Remove. Adding the
// same handler twice registers it twice.
func (ls *Listeners) Add(kind EventKind, handler Handler, opts ListenerOptions) Ref {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	l := &listener{
		ref:     ls.refs.nextRef(),
		kind:    kind,
		handler: handler,
		once:    opts.Once,
	}
	ls.items = append(ls.items, l)
	return l.ref
}

// Remove unregisters the listener with the given ref. It reports whether a
// listener was removed.
func (ls *Listeners) Remove(ref Ref) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	return ls.removeLocked(ref)
}

func (ls *Listeners) removeLocked(ref Ref) bool {
	for i, l := range ls.items {
		if l.ref == ref {
			ls.items = append(ls.items[:i:i], ls.items[i+1:]...)
			return true
		}
	}
	return false
}

// Dispatch calls every listener registered for ev.Kind, in registration
// order. Handlers run without the lock held, so they may add or remove
// listeners.
func (ls *Listeners) Dispatch(ev Event) {
	ls.mu.Lock()
	matched := make([]*listener, 0, len(ls.items))
	for _, l := range ls.items {
		if l.kind == ev.Kind {
			matched = append(matched, l)
		}
	}
	for _, l := range matched {
		if l.once {
			ls.removeLocked(l.ref)
		}
	}
	ls.mu.Unlock()

	for _, l := range matched {
		l.handler(ev)
	}
}

// Len returns the number of registered listeners.
func (ls *Listeners) Len() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	return len(ls.items)
}

func (ls *Listeners) kinds() []EventKind {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	kinds := make([]EventKind, len(ls.items))
	for i, l := range ls.items {
		kinds[i] = l.kind
	}
	return kinds
}
