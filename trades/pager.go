// Copyright (c) 2023 BVK Chaitanya

// Package trades fetches public trade history through the api gateway.
//
// The exchange's trade listing uses an inclusive "since" cursor: a request
// with since equal to the time of the last record of a previous page returns
// that record again as its first element. Pages fetched back to back
// therefore overlap by one record at every boundary. Pages are returned as
// received and DropBoundaryDuplicates is provided for callers that need a
// duplicate free sequence.
package trades

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ErrStalledCursor is returned when a non-empty page doesn't advance the
// pagination cursor.
var ErrStalledCursor = errors.New("trade cursor did not advance")

// Caller invokes an exchange api method and returns the result payload.
type Caller interface {
	Call(ctx context.Context, method string, params url.Values) (json.RawMessage, error)
}

// Page is the result of a single trade listing request.
type Page struct {
	Pair string

	// Since is the cursor used for the request. It is zero for the most
	// recent window.
	Since decimal.Decimal

	Records []*Record

	// Last is the exchange supplied continuation id, if any.
	Last string
}

// NextCursor returns the time of the last record, which is the cursor for
// the next page. Returns false for empty pages.
func (p *Page) NextCursor() (decimal.Decimal, bool) {
	if len(p.Records) == 0 {
		return decimal.Zero, false
	}
	return p.Records[len(p.Records)-1].Time, true
}

type Options struct {
	// Count limits the number of records per page when positive.
	Count int

	// Now returns the current wall clock time. Pagination stops once the
	// cursor reaches it.
	Now func() time.Time
}

func (v *Options) setDefaults() {
	if v.Now == nil {
		v.Now = time.Now
	}
}

func (v *Options) Check() error {
	if v.Count < 0 {
		return fmt.Errorf("page count cannot be negative: %w", os.ErrInvalid)
	}
	return nil
}

type Pager struct {
	opts Options

	caller Caller
}

func NewPager(caller Caller, opts *Options) (*Pager, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	if caller == nil {
		return nil, fmt.Errorf("caller cannot be nil: %w", os.ErrInvalid)
	}
	p := &Pager{
		opts:   *opts,
		caller: caller,
	}
	return p, nil
}

// FetchRecent returns the exchange's default recent window of trades for a
// pair.
func (p *Pager) FetchRecent(ctx context.Context, pair string) (*Page, error) {
	return p.fetch(ctx, pair, decimal.Zero, false)
}

// FetchSince returns trades for a pair with time at or after the cursor.
func (p *Pager) FetchSince(ctx context.Context, pair string, since decimal.Decimal) (*Page, error) {
	return p.fetch(ctx, pair, since, true)
}

func (p *Pager) fetch(ctx context.Context, pair string, since decimal.Decimal, useSince bool) (*Page, error) {
	params := make(url.Values)
	params.Set("pair", pair)
	if useSince {
		params.Set("since", since.String())
	}
	if p.opts.Count > 0 {
		params.Set("count", strconv.Itoa(p.opts.Count))
	}

	result, err := p.caller.Call(ctx, "Trades", params)
	if err != nil {
		return nil, fmt.Errorf("could not fetch trades for %s: %w", pair, err)
	}
	page, err := parsePage(pair, result)
	if err != nil {
		slog.Error("could not parse trades response", "pair", pair, "err", err)
		return nil, err
	}
	page.Since = since
	return page, nil
}

func parsePage(pair string, result json.RawMessage) (*Page, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(result, &fields); err != nil {
		return nil, fmt.Errorf("could not unmarshal trades result: %w", err)
	}

	page := &Page{Pair: pair}
	if v, ok := fields["last"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			// Some responses carry the id as a bare number.
			s = string(v)
		}
		page.Last = s
		delete(fields, "last")
	}

	if len(fields) == 0 {
		// Nothing but the continuation id means no trades.
		return page, nil
	}

	rows, ok := fields[pair]
	if !ok {
		// The result may be keyed by the canonical pair name instead of the
		// requested alias.
		if len(fields) != 1 {
			return nil, fmt.Errorf("trades result has no entry for %s: %w", pair, os.ErrNotExist)
		}
		for _, v := range fields {
			rows = v
		}
	}

	var list []json.RawMessage
	if err := json.Unmarshal(rows, &list); err != nil {
		return nil, fmt.Errorf("could not unmarshal trade rows: %w", err)
	}
	page.Records = ParseRecords(pair, list)
	return page, nil
}

// Pages returns an iterator over consecutive trade pages for a pair starting
// at windowStart. Each page's cursor is the time of the previous page's last
// record, so adjacent pages overlap by one record. Iteration stops on an
// empty page, on a page with just one record at the cursor, or once the cursor
// reaches the current time.
//
// Errors are reported through errp, which must point to a nil error.
func (p *Pager) Pages(ctx context.Context, pair string, windowStart decimal.Decimal, errp *error) iter.Seq[*Page] {
	return func(yield func(*Page) bool) {
		cursor := windowStart
		var prev *Record
		for *errp == nil {
			page, err := p.FetchSince(ctx, pair, cursor)
			if err != nil {
				*errp = err
				return
			}
			next, ok := page.NextCursor()
			if !ok {
				return
			}
			if len(page.Records) == 1 && next.Equal(cursor) {
				// A lone record at the cursor means the history is caught up. It
				// is new only when it is not the previous page's boundary record.
				if prev == nil || !page.Records[0].Equal(prev) {
					yield(page)
				}
				return
			}
			if !next.GreaterThan(cursor) {
				slog.Error("trade page did not advance the cursor", "pair", pair, "cursor", cursor, "records", len(page.Records))
				*errp = fmt.Errorf("pair %s at cursor %s: %w", pair, cursor, ErrStalledCursor)
				return
			}
			if !yield(page) {
				return
			}
			prev = page.Records[len(page.Records)-1]
			cursor = next
			if !cursor.LessThan(FromTime(p.opts.Now())) {
				return
			}
		}
	}
}

// FetchAll concatenates all pages from windowStart as received, including
// the one record overlap at every page boundary. A pair with N pages of P
// records each yields N*P records.
func (p *Pager) FetchAll(ctx context.Context, pair string, windowStart decimal.Decimal) ([]*Record, error) {
	var err error
	var records []*Record
	for page := range p.Pages(ctx, pair, windowStart, &err) {
		records = append(records, page.Records...)
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

// FetchAllUnique is like FetchAll, but drops the duplicated record at every
// page boundary. A pair with N pages of P records each yields N*P-(N-1)
// records.
func (p *Pager) FetchAllUnique(ctx context.Context, pair string, windowStart decimal.Decimal) ([]*Record, error) {
	var err error
	var pages []*Page
	for page := range p.Pages(ctx, pair, windowStart, &err) {
		pages = append(pages, page)
	}
	if err != nil {
		return nil, err
	}
	return DropBoundaryDuplicates(pages), nil
}

// DropBoundaryDuplicates concatenates pages skipping the first record of
// every page that repeats the last record of the previous page.
func DropBoundaryDuplicates(pages []*Page) []*Record {
	var records []*Record
	var prev *Record
	for _, page := range pages {
		recs := page.Records
		if prev != nil && len(recs) > 0 && recs[0].Equal(prev) {
			recs = recs[1:]
		}
		records = append(records, recs...)
		if n := len(page.Records); n > 0 {
			prev = page.Records[n-1]
		}
	}
	return records
}
