// Copyright (c) 2023 BVK Chaitanya

// Package datastore persists backfilled trades and scan runs in a key-value
// database.
//
// Trades are stored in hourly buckets under
// /krakenscan/trades/<pair>/<yyyy-mm-dd>/<hh> and scan runs under
// /krakenscan/scans/<rfc3339>/<uuid>. All values are gob encoded.
package datastore

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/bvkgo/kv"
)

const (
	Keyspace = "/krakenscan/"

	TradesKeyspace = Keyspace + "trades/"
	ScansKeyspace  = Keyspace + "scans/"
)

type Datastore struct {
	db kv.Database
}

func New(db kv.Database) *Datastore {
	return &Datastore{db: db}
}

// IsGoodKey returns true if the key is an absolute clean path. It is the
// key checker for database backends.
func IsGoodKey(k string) bool {
	return path.IsAbs(k) && k == path.Clean(k)
}

func checkPair(pair string) error {
	if len(pair) == 0 || strings.ContainsAny(pair, "/.") {
		return fmt.Errorf("pair name %q is invalid: %w", pair, os.ErrInvalid)
	}
	return nil
}
