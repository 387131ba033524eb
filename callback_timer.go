package rws

import (
	"sync"
	"time"
)

type stopper interface {
	Stop() bool
}

// clock schedules callbacks. Tests substitute a manual clock.
type clock interface {
	AfterFunc(d time.Duration, f func()) stopper
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

// interval calls its callback every period until stopped. The next timer is
// armed before the callback runs, so a callback that stops the interval also
// cancels the pending tick.
type interval struct {
	mu       sync.Mutex
	clock    clock
	period   time.Duration
	callback func()
	timer    stopper
	stopped  bool
}

func newInterval(c clock, period time.Duration) *interval {
	return &interval{
		clock:  c,
		period: period,
	}
}

func (iv *interval) Start(callback func()) {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	iv.callback = callback
	iv.arm()
}

func (iv *interval) arm() {
	iv.timer = iv.clock.AfterFunc(iv.period, iv.fire)
}

func (iv *interval) fire() {
	iv.mu.Lock()
	if iv.stopped {
		iv.mu.Unlock()
		return
	}
	iv.arm()
	callback := iv.callback
	iv.mu.Unlock()

	callback()
}

func (iv *interval) Stop() {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	iv.stopped = true
	if iv.timer != nil {
		iv.timer.Stop()
		iv.timer = nil
	}
}
