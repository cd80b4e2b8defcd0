// Copyright (c) 2024 BVK Chaitanya

// Package timerange parses the time windows accepted on the command line.
package timerange

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Range is a half-open [Begin, End) time range. A zero Begin or End leaves
// that side of the range open.
type Range struct {
	Begin, End time.Time
}

func (r *Range) IsZero() bool {
	return r.Begin.IsZero() && r.End.IsZero()
}

func (r *Range) InRange(v time.Time) bool {
	if !r.Begin.IsZero() && v.Before(r.Begin) {
		return false
	}
	if !r.End.IsZero() && !v.Before(r.End) {
		return false
	}
	return true
}

func (r *Range) String() string {
	format := func(t time.Time) string {
		if t.IsZero() {
			return "*"
		}
		return t.Format(time.RFC3339)
	}
	return fmt.Sprintf("[%s, %s)", format(r.Begin), format(r.End))
}

// ParseTime parses a point in time as a negative duration relative to now
// (for example -24h), a date (2006-01-02) in the given zone or an RFC3339
// timestamp.
func ParseTime(s string, now time.Time, zone *time.Location) (time.Time, error) {
	if zone == nil {
		zone = time.Local
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d > 0 {
			return time.Time{}, fmt.Errorf("time as a duration must be a -ve value: %w", os.ErrInvalid)
		}
		return now.Add(d), nil
	}
	if v, err := time.ParseInLocation("2006-01-02", s, zone); err == nil {
		return v, nil
	}
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse %q as a duration, date or timestamp: %w", s, os.ErrInvalid)
	}
	return v, nil
}

// Parse returns the range named by s, which is one of today, yesterday,
// this-week, last-week, this-month, last-month or a "begin[,end]" pair of
// ParseTime values. An empty string is the open range.
func Parse(s string, now time.Time, zone *time.Location) (*Range, error) {
	if zone == nil {
		zone = time.Local
	}
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return &Range{}, nil
	}
	if fn, ok := named[s]; ok {
		return fn(now.In(zone)), nil
	}

	first, second, hasEnd := strings.Cut(s, ",")
	r := new(Range)
	if v := strings.TrimSpace(first); len(v) != 0 {
		begin, err := ParseTime(v, now, zone)
		if err != nil {
			return nil, err
		}
		r.Begin = begin
	}
	if v := strings.TrimSpace(second); hasEnd && len(v) != 0 {
		end, err := ParseTime(v, now, zone)
		if err != nil {
			return nil, err
		}
		r.End = end
	}
	if !r.Begin.IsZero() && !r.End.IsZero() && !r.Begin.Before(r.End) {
		return nil, fmt.Errorf("range begin %s must be before end %s: %w", r.Begin, r.End, os.ErrInvalid)
	}
	return r, nil
}
