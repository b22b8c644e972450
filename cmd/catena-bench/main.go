// Command catena-bench drives a synthetic Zipfian workload against a
// catena cache and reports throughput and hit ratio.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package main

import (
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	flashflags "github.com/agilira/flash-flags"
	"github.com/catena-cache/catena"
)

func main() {
	fs := flashflags.New("catena-bench", "throughput and hit-ratio workload driver for the catena cache")
	size := fs.Int("size", 100_000, "maximum number of entries held by the cache")
	keyspace := fs.Int("keyspace", 1_000_000, "number of distinct keys the workload draws from")
	readRatio := fs.Float64("read-ratio", 0.9, "fraction of operations that are reads, in [0,1]")
	zipfS := fs.Float64("zipf-s", 1.1, "Zipf distribution skew exponent, must be > 1.0")
	duration := fs.Duration("duration", 5*time.Second, "how long to run the workload")
	workers := fs.Int("workers", runtime.GOMAXPROCS(0), "number of concurrent worker goroutines")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "catena-bench:", err)
		os.Exit(2)
	}

	cache, err := catena.NewCache[string, int64](catena.Config[string, int64]{
		MaximumSize: int64(*size),
		RecordStats: true,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "catena-bench: building cache:", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(1))
	zipf := rand.NewZipf(rng, *zipfS, 1, uint64(*keyspace-1))

	var ops atomic.Int64
	stop := make(chan struct{})
	var wg sync.WaitGroup

	fmt.Printf("running %d workers for %s: keyspace=%d size=%d read-ratio=%.2f zipf-s=%.2f\n",
		*workers, *duration, *keyspace, *size, *readRatio, *zipfS)

	start := time.Now()
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
				}
				key := strconv.FormatUint(zipf.Uint64(), 10)
				if r.Float64() < *readRatio {
					cache.Get(key)
				} else {
					cache.Put(key, r.Int63())
				}
				ops.Add(1)
			}
		}(int64(w) + 2)
	}

	time.Sleep(*duration)
	close(stop)
	wg.Wait()
	elapsed := time.Since(start)

	stats := cache.Stats()
	total := ops.Load()
	fmt.Printf("\n%d operations in %s (%.0f ops/sec)\n", total, elapsed, float64(total)/elapsed.Seconds())
	fmt.Printf("hits=%d misses=%d hit-ratio=%.4f evictions=%d eviction-weight=%d size=%d\n",
		stats.Hits, stats.Misses, stats.HitRatio(), stats.Evictions, stats.EvictionWeight, stats.Size)
}
