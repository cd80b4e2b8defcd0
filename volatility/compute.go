// Copyright (c) 2023 BVK Chaitanya

package volatility

import (
	"github.com/bvk/krakenscan/trades"
	"github.com/shopspring/decimal"
)

var (
	hundred    = decimal.NewFromInt(100)
	minPercent = decimal.RequireFromString("0.01")
)

func round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// percentOf returns the position of v inside [low, high] as a percentage,
// rounded to two places and floored at 0.01.
func percentOf(v, low, high decimal.Decimal) decimal.Decimal {
	span := high.Sub(low)
	if !span.IsPositive() {
		return minPercent
	}
	p := round2(hundred.Mul(v.Sub(low)).Div(span))
	return decimal.Max(p, minPercent)
}

// Compute builds the volatility report of a pair from its 24 hour ticker
// bounds and a recent window of trades. An empty trade list yields a zeroed
// report carrying only the name and minimum order size.
//
// The latest price is taken from the second-to-last trade because the last
// trade of the window may still be filling. Percentages and profits are
// rounded before the potential is derived from them.
func Compute(pair string, minOrderSize decimal.Decimal, ticker *Ticker, records []*trades.Record) *Report {
	r := &Report{Name: pair, Min: minOrderSize}
	if len(records) == 0 {
		return r
	}

	high, low := records[0].Price, records[0].Price
	volume := decimal.Zero
	for _, rec := range records {
		high = decimal.Max(high, rec.Price)
		low = decimal.Min(low, rec.Price)
		volume = volume.Add(rec.Volume.Div(rec.Price))
	}
	volume = volume.Div(decimal.NewFromInt(int64(len(records))))

	latest := records[0].Price
	if n := len(records); n > 1 {
		latest = records[n-2].Price
	}

	high24, low24 := latest, latest
	if ticker != nil {
		high24 = decimal.Max(ticker.High24, latest)
		low24 = decimal.Min(ticker.Low24, latest)
	}

	r.Volume = volume
	r.Latest = latest
	r.High, r.Low = high, low
	r.High24, r.Low24 = high24, low24

	r.PercentRecent = percentOf(latest, low, high)
	r.PercentDaily = percentOf(latest, low24, high24)
	r.Profit = round2(hundred.Mul(high.Sub(latest)).Div(latest))
	r.Profit24 = round2(hundred.Mul(high24.Sub(latest)).Div(latest))

	r.Potential = r.Profit.Mul(r.Profit24).Div(r.PercentRecent.Mul(r.PercentDaily))
	return r
}
