// Copyright (c) 2023 BVK Chaitanya

package datastore

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/bvk/krakenscan/gobs"
	"github.com/bvk/krakenscan/volatility"
	"github.com/bvkgo/kv"
	"github.com/google/uuid"
)

// NewReport converts a volatility report into its stored form.
func NewReport(r *volatility.Report) *gobs.Report {
	return &gobs.Report{
		Name:          r.Name,
		Volume:        r.Volume,
		Potential:     r.Potential,
		Profit:        r.Profit,
		Profit24:      r.Profit24,
		PercentRecent: r.PercentRecent,
		PercentDaily:  r.PercentDaily,
		Latest:        r.Latest,
		High:          r.High,
		High24:        r.High24,
		Low:           r.Low,
		Low24:         r.Low24,
		Min:           r.Min,
	}
}

func runKey(start time.Time, id string) string {
	return path.Join(ScansKeyspace, start.UTC().Format(time.RFC3339), id)
}

// SaveRun stores a scan run and returns its key. A new uuid is assigned when
// the run has no id.
func (ds *Datastore) SaveRun(ctx context.Context, run *gobs.ScanRun) (string, error) {
	if run.StartTime.IsZero() {
		return "", fmt.Errorf("scan run start time cannot be zero: %w", os.ErrInvalid)
	}
	if len(run.ID) == 0 {
		run.ID = uuid.New().String()
	}
	key := runKey(run.StartTime, run.ID)
	if err := kv.WithReadWriter(ctx, ds.db, func(ctx context.Context, rw kv.ReadWriter) error {
		return set(ctx, rw, key, run)
	}); err != nil {
		return "", fmt.Errorf("could not save scan run %s: %w", run.ID, err)
	}
	return key, nil
}

// ListRuns returns stored scan runs started in the [begin, end) range in
// time order. Zero begin or end leaves that side of the range open.
func (ds *Datastore) ListRuns(ctx context.Context, begin, end time.Time) ([]*gobs.ScanRun, error) {
	beginKey, endKey := pathRange(ScansKeyspace)
	if !begin.IsZero() {
		beginKey = path.Join(ScansKeyspace, begin.UTC().Format(time.RFC3339))
	}
	if !end.IsZero() {
		endKey = path.Join(ScansKeyspace, end.UTC().Format(time.RFC3339))
	}

	var runs []*gobs.ScanRun
	list := func(ctx context.Context, r kv.Reader) error {
		return walk(ctx, r, beginKey, endKey, false, func(key string, run *gobs.ScanRun) error {
			runs = append(runs, run)
			return nil
		})
	}
	if err := kv.WithReader(ctx, ds.db, list); err != nil {
		return nil, fmt.Errorf("could not list scan runs: %w", err)
	}
	return runs, nil
}
