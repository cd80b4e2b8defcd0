// Copyright (c) 2025 BVK Chaitanya

package timerange

import "time"

var named = map[string]func(time.Time) *Range{
	"today":      Today,
	"yesterday":  Yesterday,
	"this-week":  ThisWeek,
	"last-week":  LastWeek,
	"this-month": ThisMonth,
	"last-month": LastMonth,
}

func midnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func Today(now time.Time) *Range {
	begin := midnight(now)
	return &Range{Begin: begin, End: begin.AddDate(0, 0, 1)}
}

func Yesterday(now time.Time) *Range {
	end := midnight(now)
	return &Range{Begin: end.AddDate(0, 0, -1), End: end}
}

func ThisWeek(now time.Time) *Range {
	begin := midnight(now).AddDate(0, 0, -int(now.Weekday()))
	return &Range{Begin: begin, End: begin.AddDate(0, 0, 7)}
}

func LastWeek(now time.Time) *Range {
	end := midnight(now).AddDate(0, 0, -int(now.Weekday()))
	return &Range{Begin: end.AddDate(0, 0, -7), End: end}
}

func ThisMonth(now time.Time) *Range {
	begin := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return &Range{Begin: begin, End: begin.AddDate(0, 1, 0)}
}

func LastMonth(now time.Time) *Range {
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return &Range{Begin: end.AddDate(0, -1, 0), End: end}
}
