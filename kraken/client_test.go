// Copyright (c) 2025 BVK Chaitanya

package kraken

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"testing"
	"time"
)

var (
	testingKey    string
	testingSecret string
)

func checkCredentials() bool {
	if len(testingKey) != 0 && len(testingSecret) != 0 {
		return true
	}
	data, err := os.ReadFile("kraken-creds.json")
	if err != nil {
		return false
	}
	s := new(Credentials)
	if err := json.Unmarshal(data, s); err != nil {
		return false
	}
	testingKey = s.Key
	testingSecret = s.Secret
	return len(testingKey) != 0 && len(testingSecret) != 0
}

var fakeSecret = base64.StdEncoding.EncodeToString([]byte("not-a-real-secret"))

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts := &Options{
		RestURL:           server.URL + "/0",
		HttpClientTimeout: 5 * time.Second,
	}
	c, err := New("test-key", fakeSecret, opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPublicGet(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("want GET, got %s", r.Method)
		}
		if r.URL.Path != "/0/public/Ticker" {
			t.Errorf("want /0/public/Ticker, got %s", r.URL.Path)
		}
		if v := r.URL.Query().Get("pair"); v != "XXBTZUSD" {
			t.Errorf("want pair XXBTZUSD, got %q", v)
		}
		io.WriteString(w, `{"error":[],"result":{"XXBTZUSD":{"h":["101.5","102.5"],"l":["90.1","89.9"]}}}`)
	})

	params := make(url.Values)
	params.Set("pair", "XXBTZUSD")
	env, err := c.API(ctx, "Ticker", params)
	if err != nil {
		t.Fatal(err)
	}
	if s := env.ErrorString(); s != "" {
		t.Fatalf("want empty error, got %q", s)
	}

	var result map[string]*Ticker
	if err := json.Unmarshal(env.Result, &result); err != nil {
		t.Fatal(err)
	}
	ticker, ok := result["XXBTZUSD"]
	if !ok {
		t.Fatalf("ticker for XXBTZUSD is missing")
	}
	if v := ticker.High[1].String(); v != "102.5" {
		t.Fatalf("want 24h high 102.5, got %s", v)
	}
	if v := ticker.Low[1].String(); v != "89.9" {
		t.Fatalf("want 24h low 89.9, got %s", v)
	}
}

func TestPrivatePostSignature(t *testing.T) {
	ctx := context.Background()
	secret, _ := base64.StdEncoding.DecodeString(fakeSecret)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("want POST, got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		values, err := url.ParseQuery(string(body))
		if err != nil {
			t.Errorf("could not parse post body: %v", err)
		}
		want := Sign(secret, r.URL.Path, values.Get("nonce"), string(body))
		if got := r.Header.Get("API-Sign"); got != want {
			t.Errorf("want signature %q, got %q", want, got)
		}
		if got := r.Header.Get("API-Key"); got != "test-key" {
			t.Errorf("want api key test-key, got %q", got)
		}
		io.WriteString(w, `{"error":["EGeneral:Permission denied"]}`)
	})

	params := make(url.Values)
	params.Set("nonce", strconv.FormatInt(time.Now().UnixMicro(), 10))
	env, err := c.API(ctx, "Balance", params)
	if err != nil {
		t.Fatal(err)
	}
	if s := env.ErrorString(); s != "EGeneral:Permission denied" {
		t.Fatalf("want permission denied error, got %q", s)
	}
}

func TestPrivateNeedsNonce(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request")
	})
	if _, err := c.API(context.Background(), "Balance", nil); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("want ErrInvalid, got %v", err)
	}
}

func TestTooManyRequests(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	env, err := c.API(context.Background(), "Time", nil)
	if err != nil {
		t.Fatal(err)
	}
	if s := env.ErrorString(); s != rateLimitedError {
		t.Fatalf("want %q, got %q", rateLimitedError, s)
	}
}

func TestServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	if _, err := c.API(context.Background(), "Time", nil); err == nil {
		t.Fatalf("want non-nil error for http status 502")
	}
}

func TestUnknownMethod(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request")
	})
	if _, err := c.API(context.Background(), "NoSuchMethod", nil); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("want ErrInvalid, got %v", err)
	}
}

func TestMissingCredentials(t *testing.T) {
	c, err := New("", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	params := make(url.Values)
	params.Set("nonce", "1")
	if _, err := c.API(context.Background(), "Balance", params); !errors.Is(err, os.ErrPermission) {
		t.Fatalf("want ErrPermission, got %v", err)
	}
}

func TestLiveBalance(t *testing.T) {
	if !checkCredentials() {
		t.Skip("no credentials")
		return
	}

	c, err := New(testingKey, testingSecret, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	params := make(url.Values)
	params.Set("nonce", strconv.FormatInt(time.Now().UnixMicro(), 10))
	env, err := c.API(context.Background(), "Balance", params)
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("error=%q result=%s", env.ErrorString(), env.Result)
}
