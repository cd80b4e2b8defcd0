// Copyright (c) 2023 BVK Chaitanya

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bvk/krakenscan/kraken"
	"github.com/bvk/krakenscan/notify"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Backfill.Window != DefaultBackfillWindow {
		t.Fatalf("want default backfill window, got %q", c.Backfill.Window)
	}
	if v := c.KrakenOptions().RestURL; v != kraken.RestURL.String() {
		t.Fatalf("want default rest url, got %q", v)
	}
}

func TestLoad(t *testing.T) {
	data := `
kraken:
  rest_url: http://localhost:8080/0
  http_timeout: 10s
ratelimit:
  base_decay_interval: 2s
  slowmode_ceiling: 15
scan:
  quote: EUR
  exclude: [EURT]
  notify_top: 5
backfill:
  window: 2024-01-01
`
	fpath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(fpath, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(fpath)
	if err != nil {
		t.Fatal(err)
	}
	if c.Kraken.HttpTimeout != 10*time.Second || c.KrakenOptions().RestURL != "http://localhost:8080/0" {
		t.Fatalf("unexpected kraken settings %+v", c.Kraken)
	}
	if opts := c.RateLimitOptions(); opts.BaseDecayInterval != 2*time.Second || opts.SlowmodeCeiling != 15 {
		t.Fatalf("unexpected rate limit options %+v", opts)
	}
	if opts := c.ScanOptions(); opts.Quote != "EUR" || len(opts.Exclude) != 1 || opts.Exclude[0] != "EURT" {
		t.Fatalf("unexpected scan options %+v", opts)
	}
	if c.Scan.NotifyTop != 5 || c.Backfill.Window != "2024-01-01" {
		t.Fatalf("unexpected config %+v", c)
	}

	if err := os.WriteFile(fpath, []byte("ratelimit:\n  slowmode_ceiling: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(fpath); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("want ErrInvalid, got %v", err)
	}
}

func TestSecrets(t *testing.T) {
	dir := t.TempDir()
	fpath := filepath.Join(dir, "secrets.json")

	s, err := SecretsFromFile(fpath)
	if err != nil {
		t.Fatal(err)
	}
	if s.Kraken == nil || s.Kraken.Key != "" {
		t.Fatalf("want empty kraken credentials for a missing file")
	}

	s.Kraken = &kraken.Credentials{Key: "key", Secret: "c2VjcmV0"}
	s.Telegram = &notify.TelegramKeys{Token: "token", ChatID: 42}
	if err := s.Save(fpath); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(fpath)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0600 {
		t.Fatalf("want secrets file mode 0600, got %v", fi.Mode().Perm())
	}

	s, err = SecretsFromFile(fpath)
	if err != nil {
		t.Fatal(err)
	}
	if s.Kraken.Key != "key" || s.Telegram.ChatID != 42 || s.Pushover != nil {
		t.Fatalf("unexpected secrets %+v", s)
	}

	if err := os.WriteFile(filepath.Join(dir, EnvFileName), []byte("KRAKEN_API_KEY=env-key\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(KeyEnv, "")
	t.Setenv(SecretEnv, "")
	if err := s.ApplyEnv(dir); err != nil {
		t.Fatal(err)
	}
	if s.Kraken.Key != "env-key" || s.Kraken.Secret != "c2VjcmV0" {
		t.Fatalf("unexpected credentials after env override %+v", s.Kraken)
	}

	bad := &Secrets{Kraken: &kraken.Credentials{Key: "k", Secret: "not base64!"}}
	if err := bad.Save(fpath); err == nil {
		t.Fatalf("want error for an invalid secret")
	}
}
