// Copyright (c) 2025 BVK Chaitanya

package cmdutil

import (
	"github.com/bvk/krakenscan/config"
	"github.com/bvk/krakenscan/notify"
)

// Notifiers returns a notifier for every service configured in the secrets.
// Result is empty when no service is configured.
func Notifiers(secrets *config.Secrets) (notify.Multi, error) {
	var ns notify.Multi
	if secrets.Pushover != nil {
		p, err := notify.NewPushover(secrets.Pushover)
		if err != nil {
			return nil, err
		}
		ns = append(ns, p)
	}
	if secrets.Telegram != nil {
		t, err := notify.NewTelegram(secrets.Telegram)
		if err != nil {
			return nil, err
		}
		ns = append(ns, t)
	}
	return ns, nil
}
