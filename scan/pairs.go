// Copyright (c) 2023 BVK Chaitanya

package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/bvk/krakenscan/kraken"
	"github.com/bvk/krakenscan/trades"
	"github.com/shopspring/decimal"
)

// Pair is a tradeable asset pair with its minimum order size.
type Pair struct {
	Name string

	Min decimal.Decimal
}

// ListPairs returns all asset pairs known to the exchange, sorted by name.
func ListPairs(ctx context.Context, caller trades.Caller) ([]*Pair, error) {
	result, err := caller.Call(ctx, "AssetPairs", nil)
	if err != nil {
		return nil, fmt.Errorf("could not list asset pairs: %w", err)
	}
	var m map[string]*kraken.AssetPair
	if err := json.Unmarshal(result, &m); err != nil {
		return nil, fmt.Errorf("could not unmarshal asset pairs: %w", err)
	}

	var pairs []*Pair
	for name, info := range m {
		p := &Pair{Name: name}
		if info != nil {
			p.Min = info.OrderMin
		}
		pairs = append(pairs, p)
	}
	slices.SortFunc(pairs, func(a, b *Pair) int {
		return strings.Compare(a.Name, b.Name)
	})
	return pairs, nil
}

// IsSelected returns true if the pair trades against the quote currency,
// doesn't contain any of the excluded strings, has no '.' in its name (dark
// pool and staking variants) and doesn't start with 'Z' (fiat pairs).
func IsSelected(name, quote string, exclude []string) bool {
	if !strings.Contains(name, quote) {
		return false
	}
	for _, x := range exclude {
		if len(x) != 0 && strings.Contains(name, x) {
			return false
		}
	}
	if strings.Contains(name, ".") || strings.HasPrefix(name, "Z") {
		return false
	}
	return true
}

// FilterPairs returns the pairs selected by IsSelected.
func FilterPairs(pairs []*Pair, quote string, exclude []string) []*Pair {
	var selected []*Pair
	for _, p := range pairs {
		if IsSelected(p.Name, quote, exclude) {
			selected = append(selected, p)
		}
	}
	return selected
}
