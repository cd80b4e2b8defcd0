// Copyright (c) 2023 BVK Chaitanya

// Package scan scores every selected asset pair concurrently and collects
// the volatility reports.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bvk/krakenscan/trades"
	"github.com/bvk/krakenscan/volatility"
	"github.com/visvasity/topic"
)

type Result struct {
	StartTime  time.Time
	FinishTime time.Time

	// Pairs are the pairs selected for scoring.
	Pairs []*Pair

	// Reports holds one report per successfully scored pair.
	Reports []*volatility.Report

	// Failed lists pairs that could not be scored.
	Failed []string
}

type Scanner struct {
	opts Options

	caller trades.Caller

	scorer *volatility.Scorer

	reports *topic.Topic[*volatility.Report]
}

func New(caller trades.Caller, opts *Options) (*Scanner, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	scorer, err := volatility.NewScorer(caller)
	if err != nil {
		return nil, err
	}
	s := &Scanner{
		opts:    *opts,
		caller:  caller,
		scorer:  scorer,
		reports: topic.New[*volatility.Report](),
	}
	return s, nil
}

func (s *Scanner) Close() error {
	s.reports.Close()
	return nil
}

// Subscribe returns a receiver for reports as they are computed.
func (s *Scanner) Subscribe() (*topic.Receiver[*volatility.Report], error) {
	return topic.Subscribe(s.reports, 0, false)
}

// Run lists asset pairs, filters them and scores the selected pairs
// concurrently. Pairs that fail to score are logged and skipped; one missing
// pair never aborts the scan.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	all, err := ListPairs(ctx, s.caller)
	if err != nil {
		return nil, err
	}
	pairs := FilterPairs(all, s.opts.Quote, s.opts.Exclude)
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no pairs selected out of %d for quote %s: %w", len(all), s.opts.Quote, os.ErrNotExist)
	}
	slog.Info("scoring selected pairs", "selected", len(pairs), "total", len(all), "quote", s.opts.Quote)

	reports, failed := s.scoreAll(ctx, pairs)
	if err := context.Cause(ctx); err != nil {
		return nil, err
	}

	if s.opts.SortByPotential {
		slices.SortStableFunc(reports, func(a, b *volatility.Report) int {
			return b.Potential.Cmp(a.Potential)
		})
	}

	r := &Result{
		StartTime:  start,
		FinishTime: time.Now(),
		Pairs:      pairs,
		Reports:    reports,
		Failed:     failed,
	}
	return r, nil
}

func (s *Scanner) scoreAll(ctx context.Context, pairs []*Pair) ([]*volatility.Report, []string) {
	var sem chan struct{}
	if s.opts.MaxConcurrency > 0 {
		sem = make(chan struct{}, s.opts.MaxConcurrency)
	}

	results := make([]*volatility.Report, len(pairs))

	var wg sync.WaitGroup
	for i, p := range pairs {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if sem != nil {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					return
				}
			}

			r, err := s.scorer.Score(ctx, p.Name, p.Min, false)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					slog.Warn("could not score pair (skipped)", "pair", p.Name, "err", err)
				}
				return
			}
			results[i] = r
			s.reports.Send(r)
		}()
	}
	wg.Wait()

	var reports []*volatility.Report
	var failed []string
	for i, r := range results {
		if r == nil {
			failed = append(failed, pairs[i].Name)
			continue
		}
		reports = append(reports, r)
	}
	if len(failed) > 0 {
		slog.Warn("some pairs could not be scored", "failed", strings.Join(failed, ","))
	}
	return reports, failed
}
