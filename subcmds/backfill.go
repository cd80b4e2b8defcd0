// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bvk/krakenscan/datastore"
	"github.com/bvk/krakenscan/report"
	"github.com/bvk/krakenscan/subcmds/cmdutil"
	"github.com/bvk/krakenscan/timerange"
	"github.com/bvk/krakenscan/trades"
	"github.com/visvasity/cli"
)

type Backfill struct {
	cmdutil.Flags

	window  string
	dumpDir string
	noDump  bool
}

func (c *Backfill) Purpose() string {
	return "Downloads trade history of asset pairs into the database"
}

func (c *Backfill) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("backfill", flag.ContinueOnError)
	c.Flags.SetFlags(fset)
	fset.StringVar(&c.window, "window", "", "start of the history as a negative duration, date or RFC3339 time (default from config)")
	fset.StringVar(&c.dumpDir, "dump-dir", "", "directory for the per-pair csv files (default=trades in data-dir)")
	fset.BoolVar(&c.noDump, "no-dump", false, "when true, csv files are not written")
	return "backfill", fset, cli.CmdFunc(c.run)
}

func (c *Backfill) Description() string {
	return `

Command "backfill" downloads the full trade history of the given asset pairs
starting from the window start and saves it in the database. Pairs that
already have trades in the database resume from the last saved trade.

Trade history is fetched one page at a time. Every page is a separate api
call, so the rate limiter starts in slowmode for this command.

  $ krakenscan backfill -window=-72h XXBTZUSD XETHZUSD

`
}

func (c *Backfill) run(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(args) == 0 {
		return fmt.Errorf("this command takes one or more (asset pair name) arguments")
	}
	if err := c.Flags.Resolve(); err != nil {
		return err
	}
	defer c.Flags.Close()

	cfg, err := c.Flags.Config()
	if err != nil {
		return err
	}
	secrets, err := c.Flags.Secrets()
	if err != nil {
		return err
	}

	window := c.window
	if len(window) == 0 {
		window = cfg.Backfill.Window
	}
	begin, err := timerange.ParseTime(window, time.Now(), time.Local)
	if err != nil {
		return fmt.Errorf("could not parse window %q: %w", window, err)
	}

	if len(c.dumpDir) == 0 {
		c.dumpDir = filepath.Join(c.DataDir, "trades")
	}
	if !c.noDump {
		if err := os.MkdirAll(c.dumpDir, 0700); err != nil {
			return fmt.Errorf("could not create dump directory %q: %w", c.dumpDir, err)
		}
	}

	db, err := cmdutil.OpenDB(ctx, c.DataDir, c.LockWait)
	if err != nil {
		return err
	}
	defer db.Close()

	ex, err := cmdutil.NewExchange(cfg, secrets)
	if err != nil {
		return err
	}
	defer ex.Close()
	ex.Limiter.DeclareBulk()

	pager, err := trades.NewPager(ex.Gateway, nil)
	if err != nil {
		return err
	}

	for _, pair := range args {
		if err := c.backfill(ctx, db.Datastore, pager, pair, begin); err != nil {
			return err
		}
		if c.noDump {
			continue
		}
		if err := c.dump(ctx, db.Datastore, pair, begin); err != nil {
			return err
		}
	}
	return nil
}

func (c *Backfill) backfill(ctx context.Context, ds *datastore.Datastore, pager *trades.Pager, pair string, begin time.Time) error {
	start := trades.FromTime(begin)
	last, err := ds.LastTradeTime(ctx, pair)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	} else if last.GreaterThan(start) {
		log.Printf("%s: resuming from the last saved trade at %s", pair, last)
		start = last
	}

	npages, nsaved := 0, 0
	var perr error
	for page := range pager.Pages(ctx, pair, start, &perr) {
		n, err := ds.SaveTrades(ctx, pair, page.Records)
		if err != nil {
			return err
		}
		npages++
		nsaved += n
		if next, ok := page.NextCursor(); ok {
			log.Printf("%s: saved %d new trades up to %s", pair, n, (&trades.Record{Time: next}).Timestamp().Format(time.RFC3339))
		}
	}
	if perr != nil {
		return perr
	}
	log.Printf("%s: saved %d new trades from %d pages", pair, nsaved, npages)
	return nil
}

func (c *Backfill) dump(ctx context.Context, ds *datastore.Datastore, pair string, begin time.Time) error {
	var records []*trades.Record
	collect := func(r *trades.Record) error {
		records = append(records, r)
		return nil
	}
	if err := ds.ScanTrades(ctx, pair, begin, time.Time{}, collect); err != nil {
		return err
	}
	file := filepath.Join(c.dumpDir, pair+".csv")
	if err := report.WriteFile(file, func(w io.Writer) error { return report.WriteTrades(w, records) }); err != nil {
		return err
	}
	log.Printf("%s: wrote %d trades to %s", pair, len(records), file)
	return nil
}
