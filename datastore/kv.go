// Copyright (c) 2023 BVK Chaitanya

package datastore

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/bvkgo/kv"
)

func get[T any](ctx context.Context, g kv.Getter, key string) (*T, error) {
	value, err := g.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("could not get value at %q: %w", key, err)
	}
	gv := new(T)
	if err := gob.NewDecoder(value).Decode(gv); err != nil {
		return nil, fmt.Errorf("could not gob-decode value at key %q: %w", key, err)
	}
	return gv, nil
}

func set[T any](ctx context.Context, s kv.Setter, key string, value *T) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return fmt.Errorf("could not gob-encode value for key %q: %w", key, err)
	}
	return s.Set(ctx, key, &buf)
}

// walk decodes every value in the [begin, end) key range in ascending or
// descending order. Walk stops early without an error when fn returns
// errStop.
func walk[T any](ctx context.Context, r kv.Reader, begin, end string, descend bool, fn func(string, *T) error) error {
	open := r.Ascend
	if descend {
		open = r.Descend
	}
	it, err := open(ctx, begin, end)
	if err != nil {
		return err
	}
	defer kv.Close(it)

	for k, v, err := it.Fetch(ctx, false); err == nil; k, v, err = it.Fetch(ctx, true) {
		gv := new(T)
		if err := gob.NewDecoder(v).Decode(gv); err != nil {
			return fmt.Errorf("could not decode value at key %q: %w", k, err)
		}
		if err := fn(k, gv); err != nil {
			if errors.Is(err, errStop) {
				return nil
			}
			return err
		}
	}

	if _, _, err := it.Fetch(ctx, false); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("could not complete key range scan: %w", err)
	}
	return nil
}

var errStop = errors.New("stop")

// pathRange returns the key range covering all keys under a directory.
func pathRange(dir string) (begin string, end string) {
	dir = path.Clean(dir)
	return dir + "/", dir + string('/'+1)
}
