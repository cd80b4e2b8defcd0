// Copyright (c) 2023 BVK Chaitanya

package trades

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// Record is a single public trade as reported by the exchange.
type Record struct {
	Price  decimal.Decimal
	Volume decimal.Decimal

	// Time is the trade timestamp in decimal seconds since the epoch.
	Time decimal.Decimal

	// Side is "b" for buy and "s" for sell.
	Side string

	// OrderType is "m" for market and "l" for limit orders.
	OrderType string

	Misc string

	// TradeID is zero when the exchange doesn't report trade ids.
	TradeID int64
}

// MalformedRecordError reports a trade row that could not be parsed.
type MalformedRecordError struct {
	Pair  string
	Index int
	Row   string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed trade record %d for %s (%s): %v", e.Index, e.Pair, e.Row, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// Timestamp returns the trade time as a time.Time value.
func (r *Record) Timestamp() time.Time {
	sec := r.Time.IntPart()
	nsec := r.Time.Sub(decimal.NewFromInt(sec)).Shift(9).IntPart()
	return time.Unix(sec, nsec)
}

// Equal returns true if both records describe the same trade. Trade ids are
// compared when both records carry one.
func (r *Record) Equal(v *Record) bool {
	if r.TradeID != 0 && v.TradeID != 0 {
		return r.TradeID == v.TradeID
	}
	return r.Time.Equal(v.Time) && r.Price.Equal(v.Price) && r.Volume.Equal(v.Volume)
}

// FromTime converts a timestamp into the decimal seconds format used by
// trade records and cursors. Seconds and nanoseconds are converted
// separately so that times beyond the int64 nanosecond range stay positive.
func FromTime(t time.Time) decimal.Decimal {
	return decimal.NewFromInt(t.Unix()).Add(decimal.New(int64(t.Nanosecond()), -9))
}

// ParseRecords parses trade rows of the form [price, volume, time, side,
// type, misc, id]. Rows that cannot be parsed are logged and skipped.
func ParseRecords(pair string, rows []json.RawMessage) []*Record {
	records := make([]*Record, 0, len(rows))
	for i, row := range rows {
		r, err := parseRecord(row)
		if err != nil {
			merr := &MalformedRecordError{Pair: pair, Index: i, Row: string(row), Err: err}
			slog.Warn("skipping malformed trade record", "err", merr)
			continue
		}
		records = append(records, r)
	}
	return records
}

func parseRecord(row json.RawMessage) (*Record, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(row, &fields); err != nil {
		return nil, err
	}
	if len(fields) < 3 {
		return nil, fmt.Errorf("want at least 3 fields, got %d: %w", len(fields), os.ErrInvalid)
	}

	r := new(Record)
	if err := json.Unmarshal(fields[0], &r.Price); err != nil {
		return nil, fmt.Errorf("could not parse price: %w", err)
	}
	if err := json.Unmarshal(fields[1], &r.Volume); err != nil {
		return nil, fmt.Errorf("could not parse volume: %w", err)
	}
	if err := json.Unmarshal(fields[2], &r.Time); err != nil {
		return nil, fmt.Errorf("could not parse time: %w", err)
	}
	if !r.Price.IsPositive() {
		return nil, fmt.Errorf("price %s must be positive: %w", r.Price, os.ErrInvalid)
	}
	if r.Volume.IsNegative() {
		return nil, fmt.Errorf("volume %s cannot be negative: %w", r.Volume, os.ErrInvalid)
	}

	strs := []*string{&r.Side, &r.OrderType, &r.Misc}
	for i, p := range strs {
		if len(fields) <= 3+i {
			break
		}
		if err := json.Unmarshal(fields[3+i], p); err != nil {
			return nil, fmt.Errorf("could not parse field %d: %w", 3+i, err)
		}
	}
	if len(fields) > 6 {
		if err := json.Unmarshal(fields[6], &r.TradeID); err != nil {
			return nil, fmt.Errorf("could not parse trade id: %w", err)
		}
	}
	return r, nil
}
