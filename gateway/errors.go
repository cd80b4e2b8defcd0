// Copyright (c) 2023 BVK Chaitanya

package gateway

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRateLimitExceeded matches api errors reporting that the account's
	// rate limit is exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrTransport matches network or http failures.
	ErrTransport = errors.New("transport failure")
)

var rateLimitSignatures = []string{
	"Rate limit exceeded",
	"Too many requests",
}

// APIError is a failure reported by the exchange through the response
// envelope. Raw holds the exchange's error string, which has the form
// "<Category>:<Detail>" (ex: "EAPI:Rate limit exceeded").
type APIError struct {
	Method string

	Raw string

	Category string
	Detail   string
}

func newAPIError(method, raw string) *APIError {
	v := &APIError{Method: method, Raw: raw}
	if p := strings.IndexRune(raw, ':'); p >= 0 {
		v.Category, v.Detail = raw[:p], raw[p+1:]
	} else {
		v.Detail = raw
	}
	return v
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api method %s failed: %s", e.Method, e.Raw)
}

// IsRateLimit returns true if the error is a rate-limit rejection.
func (e *APIError) IsRateLimit() bool {
	for _, s := range rateLimitSignatures {
		if strings.Contains(e.Raw, s) {
			return true
		}
	}
	return false
}

func (e *APIError) Is(target error) bool {
	return target == ErrRateLimitExceeded && e.IsRateLimit()
}

// TransportError wraps failures from the underlying http client.
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("api method %s transport failure: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
