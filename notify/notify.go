// Copyright (c) 2023 BVK Chaitanya

// Package notify delivers scan summaries to the operator's phone.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/bvk/krakenscan/volatility"
)

type Notifier interface {
	SendMessage(ctx context.Context, at time.Time, msg string) error
}

// Multi sends every message to all notifiers. Failures are logged and
// joined into the returned error.
type Multi []Notifier

func (m Multi) SendMessage(ctx context.Context, at time.Time, msg string) error {
	var errs []error
	for _, n := range m {
		if err := n.SendMessage(ctx, at, msg); err != nil {
			slog.Error("could not send notification", "notifier", fmt.Sprintf("%T", n), "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Summary formats the topN reports with the largest potential, skipping
// reports without trades. Returns empty string if there is nothing to
// report.
func Summary(reports []*volatility.Report, topN int) string {
	var list []*volatility.Report
	for _, r := range reports {
		if !r.Empty() {
			list = append(list, r)
		}
	}
	slices.SortStableFunc(list, func(a, b *volatility.Report) int {
		return b.Potential.Cmp(a.Potential)
	})
	if topN > 0 && len(list) > topN {
		list = list[:topN]
	}

	var sb strings.Builder
	for i, r := range list {
		if i > 0 {
			sb.WriteRune('\n')
		}
		fmt.Fprintf(&sb, "%s potential %s profit %s%% profit24 %s%% latest %s",
			r.Name, r.Potential.StringFixed(2), r.Profit.StringFixed(2), r.Profit24.StringFixed(2), r.Latest)
	}
	return sb.String()
}
