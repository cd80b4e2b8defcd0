// Copyright (c) 2023 BVK Chaitanya

// Package gateway implements the single chokepoint through which all
// outbound exchange api calls pass.
//
// Every call consults the rate limiter, receives a fresh nonce, and has its
// response envelope unwrapped into either a result payload or a typed error.
// A rate-limit rejection engages the limiter's slowmode and the call is
// retried exactly once after the cooldown; a failed retry is returned as is
// and never retried again.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"

	"github.com/bvk/krakenscan/kraken"
	"github.com/bvk/krakenscan/ratelimit"
)

// Transport issues a single api request and returns the response envelope.
type Transport interface {
	API(ctx context.Context, method string, params url.Values) (*kraken.Envelope, error)
}

type Gateway struct {
	transport Transport

	limiter *ratelimit.Limiter

	nonces *NonceSource
}

// New creates a gateway. Limiter and nonce source are owned by the caller so
// that multiple gateways for the same account share them.
func New(transport Transport, limiter *ratelimit.Limiter, nonces *NonceSource) (*Gateway, error) {
	if transport == nil || limiter == nil || nonces == nil {
		return nil, fmt.Errorf("transport, limiter and nonce source are required: %w", os.ErrInvalid)
	}
	g := &Gateway{
		transport: transport,
		limiter:   limiter,
		nonces:    nonces,
	}
	return g, nil
}

// Call invokes an api method and returns its result payload. Params must not
// include the nonce field, which is injected by the gateway.
//
// A non-nil error means the call produced no result. Callers decide whether
// a missing result skips a data point or aborts a batch.
func (g *Gateway) Call(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	if params.Has("nonce") {
		return nil, fmt.Errorf("params for %s must not include the nonce: %w", method, os.ErrInvalid)
	}

	result, err := g.call(ctx, method, params)
	if err == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	if !errors.Is(err, ErrRateLimitExceeded) {
		slog.Error("api call failed", "method", method, "err", err)
		return nil, err
	}

	if err := g.limiter.OnRejected(ctx); err != nil {
		return nil, err
	}
	result, err = g.call(ctx, method, params)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("api call failed again after rate-limit cooldown (will not retry)", "method", method, "err", err)
		}
		return nil, fmt.Errorf("retry after rate-limit cooldown: %w", err)
	}
	return result, nil
}

func (g *Gateway) call(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	if err := g.limiter.BeforeCall(ctx); err != nil {
		return nil, err
	}

	values := make(url.Values, len(params)+1)
	for k, vs := range params {
		values[k] = append([]string(nil), vs...)
	}
	values.Set("nonce", strconv.FormatUint(g.nonces.Next(), 10))

	envelope, err := g.transport.API(ctx, method, values)
	if err != nil {
		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}
		return nil, &TransportError{Method: method, Err: err}
	}
	if s := envelope.ErrorString(); len(s) != 0 {
		return nil, newAPIError(method, s)
	}
	return envelope.Result, nil
}
