// Copyright (c) 2023 BVK Chaitanya

package gateway

import (
	"sync"
	"testing"
	"time"
)

func TestNonceFollowsClock(t *testing.T) {
	now := time.Unix(1700000000, 0)
	n := NewNonceSource(func() time.Time { return now })

	if v := n.Next(); v != uint64(now.UnixMicro()) {
		t.Fatalf("want %d, got %d", now.UnixMicro(), v)
	}
	// Same clock reading must still produce a larger value.
	if v := n.Next(); v != uint64(now.UnixMicro())+1 {
		t.Fatalf("want %d, got %d", now.UnixMicro()+1, v)
	}
}

func TestNonceNeverRegresses(t *testing.T) {
	now := time.Unix(1700000000, 0)
	n := NewNonceSource(func() time.Time { return now })

	first := n.Next()
	now = now.Add(-time.Hour) // clock moved backwards
	if v := n.Next(); v <= first {
		t.Fatalf("nonce regressed from %d to %d", first, v)
	}
}

func TestNonceConcurrent(t *testing.T) {
	n := NewNonceSource(nil)

	const workers, perWorker = 16, 1000
	results := make([][]uint64, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				results[i] = append(results[i], n.Next())
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]bool, workers*perWorker)
	for _, vs := range results {
		for j, v := range vs {
			if j > 0 && v <= vs[j-1] {
				t.Fatalf("nonce sequence is not increasing within a goroutine: %d after %d", v, vs[j-1])
			}
			if seen[v] {
				t.Fatalf("duplicate nonce %d", v)
			}
			seen[v] = true
		}
	}
}

func TestNonceZeroValue(t *testing.T) {
	before := uint64(time.Now().UnixMicro())
	n := new(NonceSource)
	first := n.Next()
	if first < before {
		t.Fatalf("want a nonce from the current time, got %d before %d", first, before)
	}
	if v := n.Next(); v <= first {
		t.Fatalf("want increasing nonces, got %d after %d", v, first)
	}
}
