// Copyright (c) 2023 BVK Chaitanya

// Package ratelimit governs the spacing of outbound exchange API calls.
//
// Kraken limits API usage with a leaky bucket: every account has a counter
// with a fixed ceiling that refills at a fixed rate per second, and each call
// type costs a variable number of points. Instead of tracking the exact cost
// of every call type (a lookup table that must be kept in sync with exchange
// policy), this package uses a blanket "slowmode" entered reactively on the
// first rate-limit rejection. While slowmode is active every call waits long
// enough for the bucket to refund the most expensive call, and each wait
// decrements the slowmode counter until it reaches zero.
//
// The tradeoff is a short period of over-throttling after a rejection in
// exchange for simplicity: calls are not queued globally, so a concurrent
// burst can still exceed the intended spacing until the first rejection is
// observed.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/time/rate"
)

// State holds the shared slowmode counter. A single State is created by the
// orchestration layer and shared by every Limiter that talks to the same
// account.
type State struct {
	mu       sync.Mutex
	slowmode int
}

// NewState returns a state with slowmode disabled.
func NewState() *State {
	return new(State)
}

// Slowmode returns the current value of the slowmode counter.
func (s *State) Slowmode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slowmode
}

func (s *State) set(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slowmode = max(v, 0)
}

// decrement reduces the counter by one and reports if it reached zero as a
// result of this call.
func (s *State) decrement() (disabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slowmode == 0 {
		return false
	}
	s.slowmode--
	return s.slowmode == 0
}

type Limiter struct {
	opts Options

	state *State

	activeLog rate.Sometimes
}

// New creates a limiter operating on the shared state.
func New(state *State, opts *Options) (*Limiter, error) {
	if state == nil {
		return nil, fmt.Errorf("ratelimit state cannot be nil: %w", os.ErrInvalid)
	}
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	v := &Limiter{
		opts:      *opts,
		state:     state,
		activeLog: rate.Sometimes{First: 1, Interval: opts.LogInterval},
	}
	return v, nil
}

// Slowmode returns the current slowmode counter.
func (v *Limiter) Slowmode() int {
	return v.state.Slowmode()
}

// DeclareBulk engages slowmode at the ceiling value. Callers use it before
// starting an operation known to issue many expensive calls.
func (v *Limiter) DeclareBulk() {
	v.state.set(v.opts.SlowmodeCeiling)
	slog.Info("slowmode enabled for a bulk operation", "slowmode", v.opts.SlowmodeCeiling)
}

// BeforeCall must be invoked immediately before every outbound call. When
// slowmode is active it blocks for three decay intervals and decrements the
// slowmode counter. Returns a non-nil error only if the context is canceled.
func (v *Limiter) BeforeCall(ctx context.Context) error {
	if v.state.Slowmode() == 0 {
		return nil
	}
	v.activeLog.Do(func() {
		slog.Info("slowmode is active; delaying api call", "slowmode", v.state.Slowmode(), "delay", v.opts.callDelay())
	})
	if err := v.opts.Clock.Sleep(ctx, v.opts.callDelay()); err != nil {
		return err
	}
	if v.state.decrement() {
		slog.Info("slowmode disabled")
	}
	return nil
}

// OnRejected must be invoked when a call is rejected by the exchange for
// exceeding the rate limit. It engages slowmode at the ceiling value and
// blocks for a cooldown period of four decay intervals, after which the
// caller may retry the rejected call exactly once.
func (v *Limiter) OnRejected(ctx context.Context) error {
	v.state.set(v.opts.SlowmodeCeiling)
	slog.Warn("rate limit exceeded; slowmode enabled", "slowmode", v.opts.SlowmodeCeiling, "cooldown", v.opts.cooldown())
	return v.opts.Clock.Sleep(ctx, v.opts.cooldown())
}
