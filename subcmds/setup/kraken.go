// Copyright (c) 2025 BVK Chaitanya

package setup

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bvk/krakenscan/config"
	"github.com/bvk/krakenscan/kraken"
	"github.com/bvk/krakenscan/subcmds/cmdutil"
	"github.com/visvasity/cli"
	"golang.org/x/term"
)

type Kraken struct {
	cmdutil.Flags

	key         string
	skipTesting bool
}

func (c *Kraken) Purpose() string {
	return "Setup configures Kraken API key and secret"
}

func (c *Kraken) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("kraken", flag.ContinueOnError)
	c.Flags.SetFlags(fset)
	fset.StringVar(&c.key, "key", "", "Kraken API key")
	fset.BoolVar(&c.skipTesting, "skip-testing", false, "don't test the credentials")
	return "kraken", fset, cli.CmdFunc(c.run)
}

func (c *Kraken) Description() string {
	return `

Command "kraken" saves the Kraken API key and secret in the secrets file.
The secret is read from the terminal without echo.

Scanning uses only the public api methods, so Kraken credentials are
optional. When configured, credentials are verified with a Balance call.

  $ krakenscan setup kraken -key=AbCd...

`
}

func (c *Kraken) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	if len(c.key) == 0 {
		return fmt.Errorf("api key cannot be empty: %w", os.ErrInvalid)
	}
	if err := c.Flags.Resolve(); err != nil {
		return err
	}
	defer c.Flags.Close()

	secrets, err := config.SecretsFromFile(c.SecretsPath)
	if err != nil {
		return err
	}

	fmt.Print("Kraken API secret: ")
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("could not read the api secret: %w", err)
	}

	secrets.Kraken = &kraken.Credentials{
		Key:    c.key,
		Secret: strings.TrimSpace(string(secret)),
	}
	if err := secrets.Check(); err != nil {
		return err
	}

	if !c.skipTesting {
		cfg, err := c.Flags.Config()
		if err != nil {
			return err
		}
		ex, err := cmdutil.NewExchange(cfg, secrets)
		if err != nil {
			return err
		}
		defer ex.Close()

		if _, err := ex.Gateway.Call(ctx, "Balance", nil); err != nil {
			return fmt.Errorf("could not verify the credentials: %w", err)
		}
		log.Printf("kraken credentials are verified")
	}

	return secrets.Save(c.SecretsPath)
}
