// Copyright (c) 2023 BVK Chaitanya

package gobs

import (
	"time"

	"github.com/shopspring/decimal"
)

type Report struct {
	Name string

	Volume    decimal.Decimal
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

	Min decimal.Decimal
}

type ScanRun struct {
	ID string

	StartTime  time.Time
	FinishTime time.Time

	Quote string

	// NumPairs is the number of pairs selected for scoring, including the
	// ones that failed.
	NumPairs int

	// FailedPairs lists pairs that could not be scored.
	FailedPairs []string

	Reports []*Report
}
