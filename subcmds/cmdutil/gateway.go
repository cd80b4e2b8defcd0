// Copyright (c) 2025 BVK Chaitanya

package cmdutil

import (
	"time"

	"github.com/bvk/krakenscan/config"
	"github.com/bvk/krakenscan/gateway"
	"github.com/bvk/krakenscan/kraken"
	"github.com/bvk/krakenscan/ratelimit"
)

// Exchange bundles the kraken client with the rate limiter and the gateway
// that all api calls of a command go through.
type Exchange struct {
	Client  *kraken.Client
	Limiter *ratelimit.Limiter
	Gateway *gateway.Gateway
}

func NewExchange(cfg *config.Config, secrets *config.Secrets) (*Exchange, error) {
	var key, secret string
	if secrets != nil && secrets.Kraken != nil {
		key, secret = secrets.Kraken.Key, secrets.Kraken.Secret
	}
	client, err := kraken.New(key, secret, cfg.KrakenOptions())
	if err != nil {
		return nil, err
	}
	limiter, err := ratelimit.New(ratelimit.NewState(), cfg.RateLimitOptions())
	if err != nil {
		client.Close()
		return nil, err
	}
	gw, err := gateway.New(client, limiter, gateway.NewNonceSource(time.Now))
	if err != nil {
		client.Close()
		return nil, err
	}
	e := &Exchange{
		Client:  client,
		Limiter: limiter,
		Gateway: gw,
	}
	return e, nil
}

func (e *Exchange) Close() error {
	return e.Client.Close()
}
