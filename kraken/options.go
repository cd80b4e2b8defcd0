// Copyright (c) 2025 BVK Chaitanya

package kraken

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

var RestURL = url.URL{
	Scheme: "https",
	Host:   "api.kraken.com",
	Path:   "/0",
}

type Options struct {
	// RestURL is the base URL for the REST api endpoints.
	RestURL string

	// HttpClientTimeout is the timeout for every http request.
	HttpClientTimeout time.Duration
}

func (v *Options) setDefaults() {
	if v.RestURL == "" {
		v.RestURL = RestURL.String()
	}
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 30 * time.Second
	}
}

// Check validates the options.
func (v *Options) Check() error {
	u, err := url.Parse(v.RestURL)
	if err != nil {
		return fmt.Errorf("could not parse rest url %q: %w", v.RestURL, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("rest url scheme %q is not supported: %w", u.Scheme, os.ErrInvalid)
	}
	if v.HttpClientTimeout < 0 {
		return fmt.Errorf("http client timeout cannot be negative: %w", os.ErrInvalid)
	}
	return nil
}
