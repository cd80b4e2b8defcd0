// Copyright (c) 2025 BVK Chaitanya

package kraken

import (
	"encoding/base64"
	"fmt"
)

type Credentials struct {
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

func (v *Credentials) Check() error {
	if len(v.Key) == 0 {
		return fmt.Errorf("kraken api key cannot be empty")
	}
	if len(v.Secret) == 0 {
		return fmt.Errorf("kraken api secret cannot be empty")
	}
	if _, err := base64.StdEncoding.DecodeString(v.Secret); err != nil {
		return fmt.Errorf("kraken api secret is not base64 encoded: %w", err)
	}
	return nil
}
