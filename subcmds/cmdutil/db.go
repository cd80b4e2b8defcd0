// Copyright (c) 2023 BVK Chaitanya

package cmdutil

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/bvk/krakenscan/ctxutil"
	"github.com/bvk/krakenscan/datastore"
	"github.com/bvkgo/kvbadger"
	"github.com/dgraph-io/badger/v4"
	"github.com/nightlyone/lockfile"
)

// DB is the locked on-disk database in the data directory.
type DB struct {
	flock lockfile.Lockfile
	bdb   *badger.DB

	Datastore *datastore.Datastore
}

// OpenDB takes the data directory lock and opens the badger database. Only
// one command can own the database at a time; lock is retried for up to the
// wait duration.
func OpenDB(ctx context.Context, dataDir string, wait time.Duration) (_ *DB, status error) {
	lockPath := filepath.Join(dataDir, "krakenscan.lock")
	flock, err := lockfile.New(lockPath)
	if err != nil {
		return nil, fmt.Errorf("could not create lock file %q: %w", lockPath, err)
	}
	if err := ctxutil.RetryTimeout(ctx, 100*time.Millisecond, wait, flock.TryLock); err != nil {
		return nil, fmt.Errorf("could not get lock on file %q (is another command running?): %w", lockPath, err)
	}
	defer func() {
		if status != nil {
			flock.Unlock()
		}
	}()

	dbDir := filepath.Join(dataDir, "db")
	bopts := badger.DefaultOptions(dbDir).WithLogger(nil)
	bdb, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("could not open the database: %w", err)
	}
	log.Printf("using database at %s", dbDir)

	db := &DB{
		flock:     flock,
		bdb:       bdb,
		Datastore: datastore.New(kvbadger.New(bdb, datastore.IsGoodKey)),
	}
	return db, nil
}

func (db *DB) Close() error {
	err := db.bdb.Close()
	if uerr := db.flock.Unlock(); uerr != nil && err == nil {
		err = uerr
	}
	return err
}
