// Copyright (c) 2023 BVK Chaitanya

package ratelimit

import (
	"context"
	"time"

	"github.com/bvk/krakenscan/ctxutil"
)

// Clock abstracts the time source and delays so that backoff timing can be
// verified without real sleeps.
type Clock interface {
	Now() time.Time

	// Sleep blocks for the given duration or till the context is canceled, in
	// which case the context's cause is returned.
	Sleep(ctx context.Context, d time.Duration) error
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	ctxutil.Sleep(ctx, d)
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	return nil
}
