// Copyright (c) 2023 BVK Chaitanya

package main

import (
	"context"
	"log"
	"os"

	"github.com/bvk/krakenscan/subcmds"
	"github.com/bvk/krakenscan/subcmds/setup"
	"github.com/visvasity/cli"
)

func main() {
	setupCmds := []cli.Command{
		new(setup.Kraken),
		new(setup.Pushover),
		new(setup.Telegram),
	}

	cmds := []cli.Command{
		new(subcmds.Scan),
		new(subcmds.Score),
		new(subcmds.Backfill),
		new(subcmds.History),
		cli.NewGroup("setup", "Configure exchange and notification secrets", setupCmds...),
	}
	if err := cli.Run(context.Background(), cmds, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
