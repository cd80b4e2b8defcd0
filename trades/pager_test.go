// Copyright (c) 2023 BVK Chaitanya

package trades

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// fakeExchange serves trades with an inclusive since cursor, pageSize
// records per response, like the exchange does.
type fakeExchange struct {
	pair     string
	times    []int64
	pageSize int

	calls []url.Values
}

func newFakeExchange(pair string, first int64, n, pageSize int) *fakeExchange {
	f := &fakeExchange{pair: pair, pageSize: pageSize}
	for i := 0; i < n; i++ {
		f.times = append(f.times, first+int64(i))
	}
	return f
}

func (f *fakeExchange) Call(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	f.calls = append(f.calls, params)
	if method != "Trades" {
		return nil, fmt.Errorf("unexpected method %s", method)
	}
	since := decimal.Zero
	if s := params.Get("since"); s != "" {
		since = decimal.RequireFromString(s)
	}

	var rows []string
	for i, t := range f.times {
		if len(rows) == f.pageSize {
			break
		}
		if decimal.NewFromInt(t).LessThan(since) {
			continue
		}
		rows = append(rows, fmt.Sprintf(`["100.5","0.25",%d,"b","l","",%d]`, t, i+1))
	}
	result := fmt.Sprintf(`{%q:[%s],"last":"%d"}`, f.pair, strings.Join(rows, ","), time.Now().UnixNano())
	return json.RawMessage(result), nil
}

func farFuture() time.Time { return time.Unix(1<<40, 0) }

func TestFetchAllBoundaryDuplicates(t *testing.T) {
	ctx := context.Background()
	const N, P = 4, 5

	// N pages of P records each, where adjacent pages share one record.
	exchange := newFakeExchange("XXBTZUSD", 1000, N*(P-1)+1, P)
	pager, err := NewPager(exchange, &Options{Now: farFuture})
	if err != nil {
		t.Fatal(err)
	}

	all, err := pager.FetchAll(ctx, "XXBTZUSD", decimal.NewFromInt(1000))
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != N*P {
		t.Fatalf("want %d records with boundary duplicates, got %d", N*P, len(all))
	}

	exchange.calls = nil
	unique, err := pager.FetchAllUnique(ctx, "XXBTZUSD", decimal.NewFromInt(1000))
	if err != nil {
		t.Fatal(err)
	}
	if len(unique) != N*P-(N-1) {
		t.Fatalf("want %d unique records, got %d", N*P-(N-1), len(unique))
	}
	for i := 1; i < len(unique); i++ {
		if !unique[i].Time.GreaterThan(unique[i-1].Time) {
			t.Fatalf("records %d and %d are out of order or duplicated", i-1, i)
		}
	}
	// N pages plus the final request that returns only the boundary record.
	if len(exchange.calls) != N+1 {
		t.Fatalf("want %d requests, got %d", N+1, len(exchange.calls))
	}
	if v := exchange.calls[1].Get("since"); v != "1004" {
		t.Fatalf("second request must use the last record's time as cursor, got %q", v)
	}
}

func TestPagesStopAtWallClock(t *testing.T) {
	ctx := context.Background()
	exchange := newFakeExchange("XETHZUSD", 1000, 100, 5)

	// Clock is at the last record of the second page.
	now := func() time.Time { return time.Unix(1008, 0) }
	pager, err := NewPager(exchange, &Options{Now: now})
	if err != nil {
		t.Fatal(err)
	}

	var perr error
	npages := 0
	for range pager.Pages(ctx, "XETHZUSD", decimal.NewFromInt(1000), &perr) {
		npages++
	}
	if perr != nil {
		t.Fatal(perr)
	}
	if npages != 2 {
		t.Fatalf("want 2 pages before reaching the wall clock, got %d", npages)
	}
	if len(exchange.calls) != 2 {
		t.Fatalf("want 2 requests, got %d", len(exchange.calls))
	}
}

func TestPagesEmptyPageIsCaughtUp(t *testing.T) {
	ctx := context.Background()
	exchange := newFakeExchange("XETHZUSD", 1000, 10, 5)
	pager, err := NewPager(exchange, &Options{Now: farFuture})
	if err != nil {
		t.Fatal(err)
	}

	records, err := pager.FetchAll(ctx, "XETHZUSD", decimal.NewFromInt(5000))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("want no records for a future cursor, got %d", len(records))
	}
	if len(exchange.calls) != 1 {
		t.Fatalf("want a single request, got %d", len(exchange.calls))
	}
}

type stuckExchange struct {
	calls int
}

func (s *stuckExchange) Call(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	s.calls++
	return json.RawMessage(`{"XXBTZUSD":[["1","1",500],["1","2",500]],"last":"0"}`), nil
}

func TestPagesStalledCursor(t *testing.T) {
	stuck := new(stuckExchange)
	pager, err := NewPager(stuck, &Options{Now: farFuture})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := pager.FetchAll(context.Background(), "XXBTZUSD", decimal.NewFromInt(500)); !errors.Is(err, ErrStalledCursor) {
		t.Fatalf("want ErrStalledCursor, got %v", err)
	}
	if stuck.calls != 1 {
		t.Fatalf("stalled cursor must not be retried, got %d requests", stuck.calls)
	}
}

func TestFetchRecentWithoutSince(t *testing.T) {
	exchange := newFakeExchange("XXBTZUSD", 1000, 3, 1000)
	pager, err := NewPager(exchange, nil)
	if err != nil {
		t.Fatal(err)
	}
	page, err := pager.FetchRecent(context.Background(), "XXBTZUSD")
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Records) != 3 {
		t.Fatalf("want 3 records, got %d", len(page.Records))
	}
	if exchange.calls[0].Has("since") {
		t.Fatalf("recent window must not send a since cursor")
	}
	if page.Last == "" {
		t.Fatalf("want a continuation id")
	}
}

func TestParsePageCanonicalKey(t *testing.T) {
	result := json.RawMessage(`{"XXBTZUSD":[["10","1",1]],"last":"17"}`)
	page, err := parsePage("XBTUSD", result)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Records) != 1 || page.Last != "17" {
		t.Fatalf("unexpected page %+v", page)
	}

	ambiguous := json.RawMessage(`{"A":[],"B":[]}`)
	if _, err := parsePage("XBTUSD", ambiguous); err == nil {
		t.Fatalf("want error for an ambiguous result")
	}
}

func TestDropBoundaryDuplicates(t *testing.T) {
	rec := func(ts int64) *Record {
		return &Record{Price: decimal.NewFromInt(1), Volume: decimal.NewFromInt(1), Time: decimal.NewFromInt(ts)}
	}
	pages := []*Page{
		{Records: []*Record{rec(1), rec(2), rec(3)}},
		{Records: []*Record{rec(3), rec(4), rec(5)}},
		{Records: nil},
		{Records: []*Record{rec(5), rec(6)}},
	}
	records := DropBoundaryDuplicates(pages)
	if len(records) != 6 {
		t.Fatalf("want 6 records, got %d", len(records))
	}
	for i, r := range records {
		if r.Time.IntPart() != int64(i+1) {
			t.Fatalf("record %d has time %s", i, r.Time)
		}
	}
}

func TestPagesSingleRecordAtWindowStart(t *testing.T) {
	exchange := newFakeExchange("XXBTZUSD", 1000, 1, 5)
	pager, err := NewPager(exchange, &Options{Now: farFuture})
	if err != nil {
		t.Fatal(err)
	}

	records, err := pager.FetchAll(context.Background(), "XXBTZUSD", decimal.NewFromInt(1000))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Time.IntPart() != 1000 {
		t.Fatalf("want the only trade at the window start, got %d records", len(records))
	}
	if len(exchange.calls) != 1 {
		t.Fatalf("want a single request, got %d", len(exchange.calls))
	}
}

func TestParsePageWithoutRows(t *testing.T) {
	page, err := parsePage("XXBTZUSD", json.RawMessage(`{"last":"17"}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Records) != 0 || page.Last != "17" {
		t.Fatalf("want an empty page, got %+v", page)
	}
}
