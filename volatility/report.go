// Copyright (c) 2023 BVK Chaitanya

package volatility

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/bvk/krakenscan/kraken"
	"github.com/shopspring/decimal"
)

// ErrNoTrades is reported for pairs without any recent trades.
var ErrNoTrades = errors.New("no recent trades")

// Ticker holds the rolling 24 hour price bounds of a pair.
type Ticker struct {
	High24 decimal.Decimal
	Low24  decimal.Decimal
}

// ParseTicker extracts the 24 hour high and low for a pair from a Ticker
// result payload. Index 0 of the exchange's arrays is today so far and index
// 1 is the last 24 hours.
func ParseTicker(pair string, result json.RawMessage) (*Ticker, error) {
	var tickers map[string]*kraken.Ticker
	if err := json.Unmarshal(result, &tickers); err != nil {
		return nil, fmt.Errorf("could not unmarshal ticker result: %w", err)
	}
	t, ok := tickers[pair]
	if !ok {
		if len(tickers) != 1 {
			return nil, fmt.Errorf("ticker result has no entry for %s: %w", pair, os.ErrNotExist)
		}
		for _, v := range tickers {
			t = v
		}
	}
	if t == nil || len(t.High) < 2 || len(t.Low) < 2 {
		return nil, fmt.Errorf("ticker for %s has no 24h high/low: %w", pair, os.ErrInvalid)
	}
	return &Ticker{High24: t.High[1], Low24: t.Low[1]}, nil
}

// Report is the volatility summary of a single pair. Percentages, profits
// and the potential are in percent units; prices are in quote currency.
type Report struct {
	Name string

	// Volume is the average of volume/price over the recent trades.
	Volume decimal.Decimal

	// Potential is the ranking score; larger is better.
	Potential decimal.Decimal

	Profit   decimal.Decimal
	Profit24 decimal.Decimal

	PercentRecent decimal.Decimal
	PercentDaily  decimal.Decimal

	Latest decimal.Decimal
	High   decimal.Decimal
	High24 decimal.Decimal
	Low    decimal.Decimal
	Low24  decimal.Decimal

	// Min is the minimum order size of the pair.
	Min decimal.Decimal
}

// Empty returns true if the report was computed without any trades.
func (r *Report) Empty() bool {
	return r.Latest.IsZero()
}

// Err returns ErrNoTrades for empty reports.
func (r *Report) Err() error {
	if r.Empty() {
		return fmt.Errorf("%s: %w", r.Name, ErrNoTrades)
	}
	return nil
}
