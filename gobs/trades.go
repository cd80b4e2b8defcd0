// Copyright (c) 2023 BVK Chaitanya

package gobs

import (
	"time"

	"github.com/shopspring/decimal"
)

type Trade struct {
	Price  decimal.Decimal
	Volume decimal.Decimal

	// Time is in decimal seconds since the epoch, as reported by the exchange.
	Time decimal.Decimal

	Side      string
	OrderType string
	Misc      string

	TradeID int64
}

// TradeBucket holds the trades of a single pair in one UTC hour, sorted by
// time.
type TradeBucket struct {
	Pair string

	Hour time.Time

	Trades []*Trade
}
