// Copyright (c) 2023 BVK Chaitanya

// Package volatility ranks trading pairs by how much room the current price
// has to grow toward its recent and daily highs.
package volatility

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/url"

	"github.com/bvk/krakenscan/trades"
	"github.com/shopspring/decimal"
)

type Scorer struct {
	caller trades.Caller

	pager *trades.Pager
}

// NewScorer creates a scorer that issues Ticker and Trades calls through the
// caller.
func NewScorer(caller trades.Caller) (*Scorer, error) {
	pager, err := trades.NewPager(caller, nil)
	if err != nil {
		return nil, err
	}
	s := &Scorer{
		caller: caller,
		pager:  pager,
	}
	return s, nil
}

// FetchTicker returns the 24 hour bounds for a pair.
func (s *Scorer) FetchTicker(ctx context.Context, pair string) (*Ticker, error) {
	params := make(url.Values)
	params.Set("pair", pair)
	result, err := s.caller.Call(ctx, "Ticker", params)
	if err != nil {
		return nil, fmt.Errorf("could not fetch ticker for %s: %w", pair, err)
	}
	return ParseTicker(pair, result)
}

// Score fetches the ticker and the recent trade window for a pair and
// computes its report. When includeReport is true a human readable summary
// is also written to the log.
func (s *Scorer) Score(ctx context.Context, pair string, minOrderSize decimal.Decimal, includeReport bool) (*Report, error) {
	ticker, err := s.FetchTicker(ctx, pair)
	if err != nil {
		return nil, err
	}
	page, err := s.pager.FetchRecent(ctx, pair)
	if err != nil {
		return nil, err
	}

	r := Compute(pair, minOrderSize, ticker, page.Records)
	if r.Empty() {
		slog.Warn("pair has no recent trades", "pair", pair)
	}
	if includeReport {
		LogReport(r)
	}
	return r, nil
}

// LogReport writes a human readable block for the report to the standard
// logger.
func LogReport(r *Report) {
	log.Printf("%s: potential %s (profit %s%% profit24 %s%%)", r.Name, r.Potential.StringFixed(2), r.Profit.StringFixed(2), r.Profit24.StringFixed(2))
	log.Printf("%s: percent recent %s daily %s", r.Name, r.PercentRecent.StringFixed(2), r.PercentDaily.StringFixed(2))
	log.Printf("%s: latest %s", r.Name, r.Latest)
	log.Printf("%s: high %s high24 %s", r.Name, r.High, r.High24)
	log.Printf("%s: low %s low24 %s", r.Name, r.Low, r.Low24)
	log.Printf("%s: min order size %s", r.Name, r.Min)
}
