// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"github.com/bvk/krakenscan/scan"
	"github.com/bvk/krakenscan/subcmds/cmdutil"
	"github.com/bvk/krakenscan/volatility"
	"github.com/shopspring/decimal"
	"github.com/visvasity/cli"
)

type Score struct {
	cmdutil.Flags
}

func (c *Score) Purpose() string {
	return "Prints the volatility report for one asset pair"
}

func (c *Score) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("score", flag.ContinueOnError)
	c.Flags.SetFlags(fset)
	return "score", fset, cli.CmdFunc(c.run)
}

func (c *Score) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (asset pair name) argument")
	}
	pair := args[0]

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

	ex, err := cmdutil.NewExchange(cfg, secrets)
	if err != nil {
		return err
	}
	defer ex.Close()

	var minSize decimal.Decimal
	pairs, err := scan.ListPairs(ctx, ex.Gateway)
	if err != nil {
		return err
	}
	found := false
	for _, p := range pairs {
		if p.Name == pair {
			minSize, found = p.Min, true
			break
		}
	}
	if !found {
		slog.Warn("pair is not listed in asset pairs (min order size is unknown)", "pair", pair)
	}

	scorer, err := volatility.NewScorer(ex.Gateway)
	if err != nil {
		return err
	}
	r, err := scorer.Score(ctx, pair, minSize, true /* includeReport */)
	if err != nil {
		return err
	}
	if r.Empty() {
		return r.Err()
	}
	return nil
}
