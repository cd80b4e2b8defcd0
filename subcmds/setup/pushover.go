// Copyright (c) 2023 BVK Chaitanya

package setup

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/bvk/krakenscan/config"
	"github.com/bvk/krakenscan/notify"
	"github.com/bvk/krakenscan/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Pushover struct {
	cmdutil.Flags

	applicationKey string
	userKey        string
	skipTesting    bool
}

func (c *Pushover) Purpose() string {
	return "Setup configures Pushover service API keys"
}

func (c *Pushover) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("pushover", flag.ContinueOnError)
	c.Flags.SetFlags(fset)
	fset.StringVar(&c.applicationKey, "application-key", "", "Pushover application key")
	fset.StringVar(&c.userKey, "user-key", "", "Pushover user key")
	fset.BoolVar(&c.skipTesting, "skip-testing", false, "don't test the keys")
	return "pushover", fset, cli.CmdFunc(c.run)
}

func (c *Pushover) Description() string {
	return `

Command "pushover" configures scan notifications to the user's mobile phones
through the Pushover service. Pushover configuration is optional.

  $ krakenscan setup pushover -application-key=a1b2... -user-key=u1v2...

`
}

func (c *Pushover) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	if err := c.Flags.Resolve(); err != nil {
		return err
	}
	defer c.Flags.Close()

	secrets, err := config.SecretsFromFile(c.SecretsPath)
	if err != nil {
		return err
	}
	secrets.Pushover = &notify.PushoverKeys{
		ApplicationKey: c.applicationKey,
		UserKey:        c.userKey,
	}
	if err := secrets.Check(); err != nil {
		return err
	}

	if !c.skipTesting {
		client, err := notify.NewPushover(secrets.Pushover)
		if err != nil {
			return err
		}
		if err := client.SendMessage(ctx, time.Now(), "Test message from krakenscan setup; please ignore."); err != nil {
			return err
		}
	}
	return secrets.Save(c.SecretsPath)
}
