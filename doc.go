// Package catena provides a high-performance, thread-safe, in-process
// cache built around the W-TinyLFU (Window-TinyLFU) eviction algorithm,
// with hierarchical timer-wheel expiration, asynchronous refresh-after-write,
// and write-through views.
//
// # Overview
//
// Catena is designed for production use with a focus on:
//   - Hit ratio: W-TinyLFU admission combines recency and frequency
//   - Concurrency: sharded hash table with lock-free reads
//   - Type safety: generic API, Cache[K comparable, V any]
//   - Observability: OpenTelemetry integration (optional separate module)
//
// # Quick Start
//
//	import "github.com/catena-cache/catena"
//
//	type User struct {
//	    ID   int
//	    Name string
//	}
//
//	func main() {
//	    cache, err := catena.NewCache[string, User](catena.Config[string, User]{
//	        MaximumSize:      10_000,
//	        ExpireAfterWrite: time.Hour,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    cache.Put("user:123", User{ID: 123, Name: "Alice"})
//
//	    if user, found := cache.Get("user:123"); found {
//	        fmt.Printf("User: %s\n", user.Name)
//	    }
//
//	    stats := cache.Stats()
//	    fmt.Printf("Hit ratio: %.2f%%\n", stats.HitRatio()*100)
//	}
//
// # Read-Through Loading and Stampede Prevention
//
// GetOrLoad populates a miss via Config.Loader, coalescing concurrent
// callers for the same key into a single invocation:
//
//	user, err := cache.GetOrLoad(ctx, "user:123")
//	if err != nil {
//	    log.Printf("load failed: %v", err)
//	}
//
// Key characteristics:
//   - Cache hit: identical cost to Get
//   - N concurrent misses for the same key: exactly one Loader call
//   - A panicking Loader surfaces as ErrCodeLoaderPanicked
//
// # Refresh-After-Write
//
// When Config.RefreshAfterWrite and Config.Loader are both set, a read
// that finds a stale-but-present entry triggers a non-blocking background
// reload: the caller still gets the old value immediately, and the entry
// is updated in place once the reload completes. Unlike GetOrLoad, no
// caller ever waits on a refresh.
//
// # W-TinyLFU Eviction
//
// W-TinyLFU combines:
//   - Window region: recently admitted entries, plain LRU
//   - Probation/Protected regions: the main space, admission governed by
//     a count-min sketch frequency estimate
//   - Admission policy: a window entry only displaces a probation entry
//     when its estimated frequency is higher, with a small randomized
//     tie-break so an entrenched incumbent can't win forever on ties
//
// # Expiration
//
// Catena supports four expiration modes, chosen from whichever
// combination of Config fields is set:
//   - ExpireAfterWrite: fixed TTL from the last write, FIFO queue
//   - ExpireAfterAccess: fixed TTL from the last read or write, LRU queue
//   - Both set together: tracked as a single min(write, access) deadline
//     on the hierarchical timer wheel
//   - ExpireAfter: a per-entry Expiry implementation for variable TTLs,
//     also tracked on the timer wheel
//
// Expiration is swept by the maintenance pipeline (see CleanUp) and is
// also checked lazily on Get, so an expired entry never appears to have
// hit even if the next scheduled sweep hasn't run yet.
//
// # Views
//
// Keys, Values, and Entries return weakly-consistent snapshots of the
// live table: no ConcurrentModification error, no single cross-shard
// instant, just a shard-by-shard walk. Entry.SetValue writes through to
// the backing cache entry.
//
// # Concurrency Model
//
//   - Reads: lock-free hash-chain traversal; a hit then records the access
//     into one read-buffer stripe under that stripe's short mutex
//   - Writes: per-shard mutex, shards sized from GOMAXPROCS
//   - Eviction/expiration bookkeeping: confined to a single serialized
//     maintenance "drain" pass per the coalescing state machine in
//     drain.go, fed by a striped read buffer and an unbounded write
//     buffer so hot-path callers never contend on the policy's linked
//     lists directly
//
// # Observability
//
// Built-in stats tracking:
//
//	stats := cache.Stats()
//	fmt.Printf("Hits: %d, Misses: %d, Hit ratio: %.2f%%\n",
//	    stats.Hits, stats.Misses, stats.HitRatio()*100)
//	fmt.Printf("Size: %d, Evictions: %d\n", stats.Size, stats.Evictions)
//
// Enterprise observability with OpenTelemetry (optional):
//
//	import catenaotel "github.com/catena-cache/catena/otel"
//
//	exporter, _ := prometheus.New()
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	collector, _ := catenaotel.NewOTelMetricsCollector(provider)
//
//	cache, _ := catena.NewCache[string, User](catena.Config[string, User]{
//	    MaximumSize:      10_000,
//	    MetricsCollector: collector, // optional, zero overhead if nil
//	})
//
// The core catena package has zero OTEL dependencies; catena/otel is a
// separate module.
//
// # Error Handling
//
// Catena uses structured errors (github.com/agilira/go-errors) with a
// stable code catalog:
//
//	if _, err := cache.GetOrLoad(ctx, "user:123"); err != nil {
//	    switch {
//	    case catena.IsRetryable(err):
//	        // transient loader failure, safe to retry
//	    case catena.GetErrorCode(err) == catena.ErrCodeLoaderPanicked:
//	        log.Printf("loader panicked: %v", err)
//	    default:
//	        log.Printf("load failed: %v", err)
//	    }
//	}
//
// # Best Practices
//
//  1. Size the cache to roughly the working set; an undersized cache
//     thrashes the window region, an oversized one wastes memory.
//  2. Monitor hit ratio; a sustained drop usually means the working set
//     outgrew MaximumSize/MaximumWeight or key distribution shifted.
//  3. Prefer GetOrLoad over a manual check-then-Put to get stampede
//     protection for free.
//  4. Set RefreshAfterWrite below ExpireAfterWrite when both are used,
//     so entries usually refresh before they ever expire.
//  5. Pass a context with a timeout to GetOrLoad when the Loader talks to
//     a remote system.
//
// # License
//
// See LICENSE file in the repository.
package catena
