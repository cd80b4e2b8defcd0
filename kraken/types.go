// Copyright (c) 2025 BVK Chaitanya

package kraken

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Envelope is the common response format for all Kraken REST api calls. An
// empty Error list indicates success.
type Envelope struct {
	Error  []string        `json:"error"`
	Result json.RawMessage `json:"result"`
}

// ErrorString returns all error messages joined into one string. Returns
// empty string on success.
func (v *Envelope) ErrorString() string {
	return strings.Join(v.Error, "; ")
}

// AssetPair is the per-pair value of the AssetPairs response.
type AssetPair struct {
	Altname  string          `json:"altname"`
	WSName   string          `json:"wsname"`
	Base     string          `json:"base"`
	Quote    string          `json:"quote"`
	Status   string          `json:"status"`
	OrderMin decimal.Decimal `json:"ordermin"`
	CostMin  decimal.Decimal `json:"costmin"`
}

// Ticker is the per-pair value of the Ticker response. Array values hold
// today's value at index 0 and the last 24 hours' value at index 1.
type Ticker struct {
	Ask    []decimal.Decimal `json:"a"`
	Bid    []decimal.Decimal `json:"b"`
	Close  []decimal.Decimal `json:"c"`
	Volume []decimal.Decimal `json:"v"`
	VWAP   []decimal.Decimal `json:"p"`
	Low    []decimal.Decimal `json:"l"`
	High   []decimal.Decimal `json:"h"`
	Open   decimal.Decimal   `json:"o"`
}
