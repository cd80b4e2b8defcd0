// Copyright (c) 2023 BVK Chaitanya

package ratelimit

import (
	"fmt"
	"os"
	"time"
)

const (
	// DefaultBaseDecayInterval is calibrated against Kraken's refill rate of
	// 0.5 points per second: three intervals refund 2.25 points, which is
	// slightly more than the most expensive call type (2 points).
	DefaultBaseDecayInterval = 1500 * time.Millisecond

	// DefaultSlowmodeCeiling matches the bucket ceiling of an intermediate
	// verification tier account.
	DefaultSlowmodeCeiling = 20
)

type Options struct {
	// BaseDecayInterval is the unit of delay. Calls in slowmode are delayed
	// by three units and the cooldown after a rejection is four units.
	BaseDecayInterval time.Duration

	// SlowmodeCeiling is the slowmode counter value set on a rate-limit
	// rejection or a bulk declaration.
	SlowmodeCeiling int

	// LogInterval limits how often the "slowmode is active" message is
	// logged.
	LogInterval time.Duration

	// Clock is used for all delays. Defaults to the system clock.
	Clock Clock
}

func (v *Options) setDefaults() {
	if v.BaseDecayInterval == 0 {
		v.BaseDecayInterval = DefaultBaseDecayInterval
	}
	if v.SlowmodeCeiling == 0 {
		v.SlowmodeCeiling = DefaultSlowmodeCeiling
	}
	if v.LogInterval == 0 {
		v.LogInterval = 30 * time.Second
	}
	if v.Clock == nil {
		v.Clock = SystemClock{}
	}
}

// Check validates the options.
func (v *Options) Check() error {
	if v.BaseDecayInterval < 0 {
		return fmt.Errorf("base decay interval %s cannot be negative: %w", v.BaseDecayInterval, os.ErrInvalid)
	}
	if v.SlowmodeCeiling < 0 {
		return fmt.Errorf("slowmode ceiling %d cannot be negative: %w", v.SlowmodeCeiling, os.ErrInvalid)
	}
	return nil
}

func (v *Options) callDelay() time.Duration {
	return 3 * v.BaseDecayInterval
}

func (v *Options) cooldown() time.Duration {
	return 4 * v.BaseDecayInterval
}
