// Copyright (c) 2023 BVK Chaitanya

// Package config loads the tunables file and the secrets file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bvk/krakenscan/kraken"
	"github.com/bvk/krakenscan/ratelimit"
	"github.com/bvk/krakenscan/scan"
	"gopkg.in/yaml.v3"
)

type Kraken struct {
	RestURL     string        `yaml:"rest_url"`
	HttpTimeout time.Duration `yaml:"http_timeout"`
}

type RateLimit struct {
	BaseDecayInterval time.Duration `yaml:"base_decay_interval"`
	SlowmodeCeiling   int           `yaml:"slowmode_ceiling"`
}

type Scan struct {
	Quote          string   `yaml:"quote"`
	Exclude        []string `yaml:"exclude"`
	MaxConcurrency int      `yaml:"max_concurrency"`

	// NotifyTop is the number of top pairs sent in notifications. Zero
	// disables notifications.
	NotifyTop int `yaml:"notify_top"`
}

type Backfill struct {
	// Window is the default backfill start, in any format accepted by
	// timerange.ParseTime.
	Window string `yaml:"window"`
}

type Config struct {
	Kraken    Kraken    `yaml:"kraken"`
	RateLimit RateLimit `yaml:"ratelimit"`
	Scan      Scan      `yaml:"scan"`
	Backfill  Backfill  `yaml:"backfill"`
}

const DefaultBackfillWindow = "-24h"

func (c *Config) setDefaults() {
	if len(c.Backfill.Window) == 0 {
		c.Backfill.Window = DefaultBackfillWindow
	}
}

func (c *Config) Check() error {
	if c.RateLimit.BaseDecayInterval < 0 || c.RateLimit.SlowmodeCeiling < 0 {
		return fmt.Errorf("rate limit settings cannot be negative: %w", os.ErrInvalid)
	}
	if c.Scan.NotifyTop < 0 || c.Scan.MaxConcurrency < 0 {
		return fmt.Errorf("scan settings cannot be negative: %w", os.ErrInvalid)
	}
	if err := c.KrakenOptions().Check(); err != nil {
		return err
	}
	return nil
}

// Load reads the yaml tunables file. A missing file yields the defaults.
func Load(fpath string) (*Config, error) {
	c := new(Config)
	if len(fpath) != 0 {
		f, err := os.Open(fpath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		} else {
			defer f.Close()
			if err := yaml.NewDecoder(f).Decode(c); err != nil {
				return nil, fmt.Errorf("could not decode config file %q: %w", fpath, err)
			}
		}
	}
	c.setDefaults()
	if err := c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) KrakenOptions() *kraken.Options {
	opts := &kraken.Options{
		RestURL:           c.Kraken.RestURL,
		HttpClientTimeout: c.Kraken.HttpTimeout,
	}
	if len(opts.RestURL) == 0 {
		opts.RestURL = kraken.RestURL.String()
	}
	return opts
}

func (c *Config) RateLimitOptions() *ratelimit.Options {
	return &ratelimit.Options{
		BaseDecayInterval: c.RateLimit.BaseDecayInterval,
		SlowmodeCeiling:   c.RateLimit.SlowmodeCeiling,
	}
}

func (c *Config) ScanOptions() *scan.Options {
	return &scan.Options{
		Quote:          c.Scan.Quote,
		Exclude:        c.Scan.Exclude,
		MaxConcurrency: c.Scan.MaxConcurrency,
	}
}
