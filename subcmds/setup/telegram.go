// Copyright (c) 2025 BVK Chaitanya

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

type Telegram struct {
	cmdutil.Flags

	token       string
	chatID      int64
	skipTesting bool
}

func (c *Telegram) Purpose() string {
	return "Setup configures Telegram bot token and chat id"
}

func (c *Telegram) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("telegram", flag.ContinueOnError)
	c.Flags.SetFlags(fset)
	fset.StringVar(&c.token, "bot-token", "", "Telegram bot's authentication token")
	fset.Int64Var(&c.chatID, "chat-id", 0, "Telegram chat id that receives the notifications")
	fset.BoolVar(&c.skipTesting, "skip-testing", false, "don't test the parameters")
	return "telegram", fset, cli.CmdFunc(c.run)
}

func (c *Telegram) Description() string {
	return `

Command "telegram" configures scan notifications to a Telegram chat through a
Telegram bot. Telegram configuration is optional.

  $ krakenscan setup telegram -bot-token=USCJS2...TVP4KV -chat-id=12345678

`
}

func (c *Telegram) run(ctx context.Context, args []string) error {
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
	secrets.Telegram = &notify.TelegramKeys{
		Token:  c.token,
		ChatID: c.chatID,
	}
	if err := secrets.Check(); err != nil {
		return err
	}

	if !c.skipTesting {
		client, err := notify.NewTelegram(secrets.Telegram)
		if err != nil {
			return err
		}
		if err := client.SendMessage(ctx, time.Now(), "Test message from krakenscan setup; please ignore."); err != nil {
			return err
		}
	}
	return secrets.Save(c.SecretsPath)
}
