// Copyright (c) 2025 BVK Chaitanya

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
)

type TelegramKeys struct {
	Token string `json:"token"`

	// ChatID is the chat that receives notifications.
	ChatID int64 `json:"chat_id"`
}

func (v *TelegramKeys) Check() error {
	if len(v.Token) == 0 {
		return fmt.Errorf("bot token cannot be empty")
	}
	if v.ChatID == 0 {
		return fmt.Errorf("chat id cannot be zero")
	}
	return nil
}

type Telegram struct {
	bot *bot.Bot

	chatID int64
}

// NewTelegram creates a send-only bot client. Incoming updates are not
// polled.
func NewTelegram(keys *TelegramKeys, opts ...bot.Option) (*Telegram, error) {
	if err := keys.Check(); err != nil {
		return nil, err
	}
	b, err := bot.New(keys.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create telegram bot: %w", err)
	}
	t := &Telegram{
		bot:    b,
		chatID: keys.ChatID,
	}
	return t, nil
}

func (t *Telegram) SendMessage(ctx context.Context, at time.Time, text string) error {
	msg := at.Format("2006-01-02 15:04:05 MST") + "\n" + text
	slog.Info("sending telegram notification", "at", at, "chat-id", t.chatID)

	m := &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   msg,
	}
	if _, err := t.bot.SendMessage(ctx, m); err != nil {
		return fmt.Errorf("could not send telegram message: %w", err)
	}
	return nil
}
