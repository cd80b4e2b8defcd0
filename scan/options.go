// Copyright (c) 2023 BVK Chaitanya

package scan

import (
	"fmt"
	"os"
)

const DefaultQuote = "USD"

var DefaultExclude = []string{"USDT", "USDC"}

type Options struct {
	// Quote selects pairs that trade against this currency.
	Quote string

	// Exclude drops pairs whose name contains any of these strings. Nil
	// selects the DefaultExclude list.
	Exclude []string

	// MaxConcurrency limits the number of pairs scored in parallel. Zero
	// scores all pairs at once.
	MaxConcurrency int

	// SortByPotential orders the reports by potential, largest first,
	// instead of pair name.
	SortByPotential bool
}

func (v *Options) setDefaults() {
	if len(v.Quote) == 0 {
		v.Quote = DefaultQuote
	}
	if v.Exclude == nil {
		v.Exclude = DefaultExclude
	}
}

func (v *Options) Check() error {
	if v.MaxConcurrency < 0 {
		return fmt.Errorf("max concurrency cannot be negative: %w", os.ErrInvalid)
	}
	return nil
}
