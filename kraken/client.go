// Copyright (c) 2025 BVK Chaitanya

package kraken

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"slices"
	"strings"
	"time"
)

var publicMethods = []string{
	"Time", "SystemStatus", "Assets", "AssetPairs", "Ticker", "Depth", "Trades", "Spread", "OHLC",
}

var privateMethods = []string{
	"Balance", "TradeBalance", "OpenOrders", "ClosedOrders", "QueryOrders", "TradesHistory",
	"QueryTrades", "OpenPositions", "Ledgers", "QueryLedgers", "TradeVolume", "AddOrder",
	"CancelOrder", "CancelAllOrdersAfter", "DepositMethods", "DepositAddresses", "DepositStatus",
	"WithdrawInfo", "Withdraw", "WithdrawStatus", "WithdrawCancel", "GetWebSocketsToken",
}

// rateLimitedError is the envelope error reported for http status 429 so
// that callers see a single rate-limit signature.
const rateLimitedError = "EAPI:Rate limit exceeded"

type Client struct {
	opts Options

	restURL *url.URL

	client http.Client

	key    string
	secret []byte
}

// New returns a new client instance. Key and secret can be empty when only
// public methods are used.
func New(key, secret string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	restURL, err := url.Parse(opts.RestURL)
	if err != nil {
		return nil, err
	}

	var decoded []byte
	if len(secret) != 0 {
		v, err := base64.StdEncoding.DecodeString(secret)
		if err != nil {
			slog.Error("could not base64-decode the api secret", "err", err)
			return nil, fmt.Errorf("could not decode api secret: %w", err)
		}
		decoded = v
	}

	c := &Client{
		opts:    *opts,
		restURL: restURL,
		key:     key,
		secret:  decoded,
		client: http.Client{
			Timeout: opts.HttpClientTimeout,
		},
	}
	return c, nil
}

// Close releases resources and destroys the client instance.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// IsPublic returns true if the method is a known public api method.
func IsPublic(method string) bool {
	return slices.Contains(publicMethods, method)
}

// IsPrivate returns true if the method is a known private api method.
func IsPrivate(method string) bool {
	return slices.Contains(privateMethods, method)
}

// API invokes a Kraken api method with the given parameters and returns the
// response envelope. A non-nil error is returned only for transport level
// failures; api errors are reported through the envelope.
func (c *Client) API(ctx context.Context, method string, params url.Values) (*Envelope, error) {
	if IsPublic(method) {
		return c.publicGet(ctx, method, params)
	}
	if IsPrivate(method) {
		return c.privatePost(ctx, method, params)
	}
	return nil, fmt.Errorf("api method %q is not recognized: %w", method, os.ErrInvalid)
}

func (c *Client) methodURL(kind, method string) *url.URL {
	return &url.URL{
		Scheme: c.restURL.Scheme,
		Host:   c.restURL.Host,
		Path:   path.Join(c.restURL.Path, kind, method),
	}
}

func (c *Client) publicGet(ctx context.Context, method string, params url.Values) (*Envelope, error) {
	addrURL := c.methodURL("public", method)
	addrURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addrURL.String(), nil)
	if err != nil {
		slog.Error("could not create http get request with context", "url", addrURL, "err", err)
		return nil, err
	}
	return c.do(req)
}

func (c *Client) privatePost(ctx context.Context, method string, params url.Values) (*Envelope, error) {
	if len(c.key) == 0 || len(c.secret) == 0 {
		return nil, fmt.Errorf("private method %q needs api credentials: %w", method, os.ErrPermission)
	}
	nonce := params.Get("nonce")
	if len(nonce) == 0 {
		return nil, fmt.Errorf("private method %q needs a nonce: %w", method, os.ErrInvalid)
	}

	addrURL := c.methodURL("private", method)
	body := params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addrURL.String(), strings.NewReader(body))
	if err != nil {
		slog.Error("could not create http post request with context", "url", addrURL, "err", err)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	req.Header.Set("API-Key", c.key)
	req.Header.Set("API-Sign", Sign(c.secret, addrURL.Path, nonce, body))
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Envelope, error) {
	s := time.Now()
	resp, err := c.client.Do(req)
	if d := time.Since(s); d > c.opts.HttpClientTimeout {
		slog.Warn(fmt.Sprintf("%s request took %s which is more than the http client timeout %s", req.Method, d, c.opts.HttpClientTimeout))
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not perform http request", "method", req.Method, "url", req.URL, "err", err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		slog.Warn("http request returned with status code 429 - too many requests", "url", req.URL)
		return &Envelope{Error: []string{rateLimitedError}}, nil
	}
	if resp.StatusCode != http.StatusOK {
		if body, err := io.ReadAll(resp.Body); err == nil {
			slog.Warn("http request returned unsuccessful status code", "status-code", resp.StatusCode, "body", string(body))
		}
		return nil, fmt.Errorf("http %s returned %d", req.Method, resp.StatusCode)
	}

	envelope := new(Envelope)
	if err := json.NewDecoder(resp.Body).Decode(envelope); err != nil {
		slog.Error("could not decode response to json", "url", req.URL, "err", err)
		return nil, err
	}
	return envelope, nil
}

// Sign computes the API-Sign header value for a private request: the
// HMAC-SHA512 of the uri path followed by SHA256(nonce + post data), keyed
// by the decoded api secret.
func Sign(secret []byte, uriPath, nonce, postData string) string {
	sum := sha256.Sum256([]byte(nonce + postData))

	mac := hmac.New(sha512.New, secret)
	io.WriteString(mac, uriPath)
	mac.Write(sum[:])
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
