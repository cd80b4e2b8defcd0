// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"slices"
	"time"

	"github.com/bvk/krakenscan/gobs"
	"github.com/bvk/krakenscan/subcmds/cmdutil"
	"github.com/bvk/krakenscan/timerange"
	"github.com/visvasity/cli"
)

type History struct {
	cmdutil.Flags

	period string
	top    int
}

func (c *History) Purpose() string {
	return "Lists saved scan runs and their top pairs"
}

func (c *History) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("history", flag.ContinueOnError)
	c.Flags.SetFlags(fset)
	fset.StringVar(&c.period, "period", "", "time period of the runs (ex: today, last-week, -48h, 2024-01-01,2024-02-01)")
	fset.IntVar(&c.top, "top", 3, "number of top pairs to print for each run")
	return "history", fset, cli.CmdFunc(c.run)
}

func (c *History) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	if err := c.Flags.Resolve(); err != nil {
		return err
	}
	defer c.Flags.Close()

	var period timerange.Range
	if len(c.period) != 0 {
		v, err := timerange.Parse(c.period, time.Now(), time.Local)
		if err != nil {
			return fmt.Errorf("could not parse period %q: %w", c.period, err)
		}
		period = *v
	}

	db, err := cmdutil.OpenDB(ctx, c.DataDir, c.LockWait)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.Datastore.ListRuns(ctx, period.Begin, period.End)
	if err != nil {
		return err
	}

	stdout := cli.Stdout(ctx)
	for _, run := range runs {
		fmt.Fprintf(stdout, "%s %s quote=%s pairs=%d reports=%d failed=%d took=%s\n",
			run.StartTime.Local().Format(time.DateTime), run.ID, run.Quote, run.NumPairs,
			len(run.Reports), len(run.FailedPairs), run.FinishTime.Sub(run.StartTime).Round(time.Second))

		reports := slices.Clone(run.Reports)
		slices.SortStableFunc(reports, func(a, b *gobs.Report) int {
			return b.Potential.Cmp(a.Potential)
		})
		for i, r := range reports {
			if i >= c.top {
				break
			}
			fmt.Fprintf(stdout, "  %-12s potential %8s profit %6s%% profit24 %6s%% latest %s\n",
				r.Name, r.Potential.StringFixed(2), r.Profit.StringFixed(2), r.Profit24.StringFixed(2), r.Latest)
		}
	}
	return nil
}
