// Copyright (c) 2023 BVK Chaitanya

package gateway

import (
	"sync/atomic"
	"time"
)

// NonceSource generates strictly increasing nonce values. Kraken rejects a
// private request whose nonce is not larger than the previous one, so a
// single NonceSource must be shared by all calls made with the same api key.
// The zero value uses time.Now.
type NonceSource struct {
	last atomic.Uint64

	now func() time.Time
}

// NewNonceSource returns a nonce source seeded from the given time function,
// which defaults to time.Now when nil.
func NewNonceSource(now func() time.Time) *NonceSource {
	if now == nil {
		now = time.Now
	}
	return &NonceSource{now: now}
}

// Next returns a nonce larger than all previously returned values. Values
// track the current time in microseconds when the clock is ahead of the
// sequence.
func (n *NonceSource) Next() uint64 {
	now := n.now
	if now == nil {
		now = time.Now
	}
	for {
		last := n.last.Load()
		next := last + 1
		if v := now().UnixMicro(); v > 0 && uint64(v) > next {
			next = uint64(v)
		}
		if n.last.CompareAndSwap(last, next) {
			return next
		}
	}
}
