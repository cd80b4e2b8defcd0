// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bvk/krakenscan/datastore"
	"github.com/bvk/krakenscan/gobs"
	"github.com/bvk/krakenscan/notify"
	"github.com/bvk/krakenscan/report"
	"github.com/bvk/krakenscan/scan"
	"github.com/bvk/krakenscan/subcmds/cmdutil"
	"github.com/visvasity/cli"
	"github.com/visvasity/topic"
)

type Scan struct {
	cmdutil.Flags

	output string

	quote       string
	concurrency int
	noSort      bool

	notifyTop int
	noSave    bool
}

func (c *Scan) Purpose() string {
	return "Scores every selected asset pair and writes a csv report"
}

func (c *Scan) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("scan", flag.ContinueOnError)
	c.Flags.SetFlags(fset)
	fset.StringVar(&c.output, "output", "cryptos.csv", "path to the csv report file")
	fset.StringVar(&c.quote, "quote", "", "quote currency of the selected pairs (default from config or USD)")
	fset.IntVar(&c.concurrency, "max-concurrency", 0, "when positive, limits the number of pairs scored concurrently")
	fset.BoolVar(&c.noSort, "no-sort", false, "when true, reports are not ranked by potential")
	fset.IntVar(&c.notifyTop, "notify-top", -1, "number of top pairs to send as a notification (default from config)")
	fset.BoolVar(&c.noSave, "no-save", false, "when true, the scan run is not saved in the database")
	return "scan", fset, cli.CmdFunc(c.run)
}

func (c *Scan) Description() string {
	return `

Command "scan" lists all tradable asset pairs on Kraken, selects the pairs
quoted in USD (excluding the USDT and USDC stablecoin pairs, dark pool pairs
and fiat pairs) and computes a volatility report for each one of them from
the recent trades and the 24 hour ticker.

Reports are written to a csv file ranked by the trading potential. The run
is also saved in the database so that "history" command can show it later.

When notification services are configured in the secrets file, top N pairs
are sent as a message.

`
}

func (c *Scan) run(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
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

	sopts := cfg.ScanOptions()
	if len(c.quote) != 0 {
		sopts.Quote = c.quote
	}
	if c.concurrency > 0 {
		sopts.MaxConcurrency = c.concurrency
	}
	sopts.SortByPotential = !c.noSort

	notifyTop := cfg.Scan.NotifyTop
	if c.notifyTop >= 0 {
		notifyTop = c.notifyTop
	}

	var db *cmdutil.DB
	if !c.noSave {
		v, err := cmdutil.OpenDB(ctx, c.DataDir, c.LockWait)
		if err != nil {
			return err
		}
		defer v.Close()
		db = v
	}

	ex, err := cmdutil.NewExchange(cfg, secrets)
	if err != nil {
		return err
	}
	defer ex.Close()

	scanner, err := scan.New(ex.Gateway, sopts)
	if err != nil {
		return err
	}
	defer scanner.Close()

	receiver, err := scanner.Subscribe()
	if err != nil {
		return err
	}
	defer receiver.Close()

	reportCh, err := topic.ReceiveCh(receiver)
	if err != nil {
		return err
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		nscored := 0
		for {
			select {
			case <-done:
				return
			case r, ok := <-reportCh:
				if !ok {
					return
				}
				nscored++
				log.Printf("scored %s (%d done): potential %s latest %s", r.Name, nscored, r.Potential.StringFixed(2), r.Latest)
			}
		}
	}()

	result, err := scanner.Run(ctx)
	if err != nil {
		return err
	}
	log.Printf("scored %d of %d selected pairs in %s", len(result.Reports), len(result.Pairs), result.FinishTime.Sub(result.StartTime).Round(time.Millisecond))

	if err := report.WriteFile(c.output, func(w io.Writer) error { return report.WriteReports(w, result.Reports) }); err != nil {
		return err
	}
	log.Printf("wrote %d reports to %s", len(result.Reports), c.output)

	if db != nil {
		run := &gobs.ScanRun{
			StartTime:   result.StartTime,
			FinishTime:  result.FinishTime,
			Quote:       sopts.Quote,
			NumPairs:    len(result.Pairs),
			FailedPairs: result.Failed,
		}
		for _, r := range result.Reports {
			run.Reports = append(run.Reports, datastore.NewReport(r))
		}
		key, err := db.Datastore.SaveRun(ctx, run)
		if err != nil {
			return err
		}
		log.Printf("saved scan run %s at %s", run.ID, key)
	}

	if notifyTop > 0 {
		notifiers, err := cmdutil.Notifiers(secrets)
		if err != nil {
			return err
		}
		if len(notifiers) != 0 {
			msg := notify.Summary(result.Reports, notifyTop)
			if len(msg) != 0 {
				if err := notifiers.SendMessage(ctx, result.FinishTime, msg); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
