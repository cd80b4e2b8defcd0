// Copyright (c) 2023 BVK Chaitanya

package datastore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"slices"
	"time"

	"github.com/bvk/krakenscan/gobs"
	"github.com/bvk/krakenscan/trades"
	"github.com/bvkgo/kv"
	"github.com/shopspring/decimal"
)

func tradeKey(pair string, hour time.Time) string {
	hour = hour.UTC()
	return path.Join(TradesKeyspace, pair, hour.Format("2006-01-02"), hour.Format("15"))
}

func toTrade(r *trades.Record) *gobs.Trade {
	return &gobs.Trade{
		Price:     r.Price,
		Volume:    r.Volume,
		Time:      r.Time,
		Side:      r.Side,
		OrderType: r.OrderType,
		Misc:      r.Misc,
		TradeID:   r.TradeID,
	}
}

func toRecord(t *gobs.Trade) *trades.Record {
	return &trades.Record{
		Price:     t.Price,
		Volume:    t.Volume,
		Time:      t.Time,
		Side:      t.Side,
		OrderType: t.OrderType,
		Misc:      t.Misc,
		TradeID:   t.TradeID,
	}
}

func tradeIdentity(t *gobs.Trade) string {
	if t.TradeID != 0 {
		return fmt.Sprintf("id:%d", t.TradeID)
	}
	return fmt.Sprintf("tpv:%s/%s/%s", t.Time, t.Price, t.Volume)
}

// merge adds new trades to the bucket, ignoring the ones already present,
// and returns the number of trades added.
func merge(bucket *gobs.TradeBucket, list []*gobs.Trade) int {
	seen := make(map[string]bool, len(bucket.Trades)+len(list))
	for _, t := range bucket.Trades {
		seen[tradeIdentity(t)] = true
	}
	added := 0
	for _, t := range list {
		id := tradeIdentity(t)
		if seen[id] {
			continue
		}
		seen[id] = true
		bucket.Trades = append(bucket.Trades, t)
		added++
	}
	if added > 0 {
		slices.SortStableFunc(bucket.Trades, func(a, b *gobs.Trade) int {
			return a.Time.Cmp(b.Time)
		})
	}
	return added
}

// SaveTrades stores trade records of a pair into their hourly buckets.
// Records already in the database are skipped, so overlapping pages can be
// saved as is. Returns the number of newly added trades.
func (ds *Datastore) SaveTrades(ctx context.Context, pair string, records []*trades.Record) (int, error) {
	if err := checkPair(pair); err != nil {
		return 0, err
	}

	hours := make(map[string]time.Time)
	groups := make(map[string][]*gobs.Trade)
	for _, r := range records {
		hour := r.Timestamp().UTC().Truncate(time.Hour)
		key := tradeKey(pair, hour)
		hours[key] = hour
		groups[key] = append(groups[key], toTrade(r))
	}

	var added int
	save := func(ctx context.Context, rw kv.ReadWriter) error {
		added = 0
		for key, list := range groups {
			bucket, err := get[gobs.TradeBucket](ctx, rw, key)
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					return err
				}
				bucket = &gobs.TradeBucket{Pair: pair, Hour: hours[key]}
			}
			n := merge(bucket, list)
			if n == 0 {
				continue
			}
			if err := set(ctx, rw, key, bucket); err != nil {
				return fmt.Errorf("could not save trade bucket %q: %w", key, err)
			}
			added += n
		}
		return nil
	}
	if err := kv.WithReadWriter(ctx, ds.db, save); err != nil {
		return 0, fmt.Errorf("could not save trades for %s: %w", pair, err)
	}
	return added, nil
}

// ScanTrades calls fn for every stored trade of a pair with time in the
// [begin, end) range, in time order. Zero begin or end leaves that side of
// the range open.
func (ds *Datastore) ScanTrades(ctx context.Context, pair string, begin, end time.Time, fn func(*trades.Record) error) error {
	if err := checkPair(pair); err != nil {
		return err
	}

	beginKey, endKey := pathRange(path.Join(TradesKeyspace, pair))
	if !begin.IsZero() {
		beginKey = tradeKey(pair, begin.UTC().Truncate(time.Hour))
	}
	if !end.IsZero() {
		endKey = tradeKey(pair, end.UTC().Truncate(time.Hour).Add(time.Hour))
	}
	var lo, hi decimal.Decimal
	if !begin.IsZero() {
		lo = trades.FromTime(begin)
	}
	if !end.IsZero() {
		hi = trades.FromTime(end)
	}

	scan := func(ctx context.Context, r kv.Reader) error {
		return walk(ctx, r, beginKey, endKey, false, func(key string, bucket *gobs.TradeBucket) error {
			for _, t := range bucket.Trades {
				if !begin.IsZero() && t.Time.LessThan(lo) {
					continue
				}
				if !end.IsZero() && !t.Time.LessThan(hi) {
					return errStop
				}
				if err := fn(toRecord(t)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return kv.WithReader(ctx, ds.db, scan)
}

// LastTradeTime returns the time of the most recent stored trade of a
// pair. Returns os.ErrNotExist if there are no stored trades.
func (ds *Datastore) LastTradeTime(ctx context.Context, pair string) (decimal.Decimal, error) {
	if err := checkPair(pair); err != nil {
		return decimal.Zero, err
	}

	var last *gobs.Trade
	find := func(ctx context.Context, r kv.Reader) error {
		begin, end := pathRange(path.Join(TradesKeyspace, pair))
		return walk(ctx, r, begin, end, true, func(key string, bucket *gobs.TradeBucket) error {
			if n := len(bucket.Trades); n > 0 {
				last = bucket.Trades[n-1]
				return errStop
			}
			return nil
		})
	}
	if err := kv.WithReader(ctx, ds.db, find); err != nil {
		return decimal.Zero, fmt.Errorf("could not find last trade for %s: %w", pair, err)
	}
	if last == nil {
		return decimal.Zero, fmt.Errorf("no stored trades for %s: %w", pair, os.ErrNotExist)
	}
	return last.Time, nil
}
