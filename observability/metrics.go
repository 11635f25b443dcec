// Package observability exposes the prometheus instrumentation shared by the
// cache coordinators.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lasr"

// CacheMetrics records account cache activity.
type CacheMetrics struct {
	Writes    prometheus.Counter
	Hits      prometheus.Counter
	Misses    prometheus.Counter
	Evictions prometheus.Counter
}

// WaiterMetrics records pending-transaction registry activity.
type WaiterMetrics struct {
	Registered prometheus.Counter
	Confirmed  prometheus.Counter
	// Orphaned counts confirmations that arrived with no registered waiter.
	Orphaned prometheus.Counter
}

// BlobMetrics records pending-blob settlement queue activity.
type BlobMetrics struct {
	Submitted prometheus.Counter
	Settled   prometheus.Counter
	// DuplicateProofs counts proofs for addresses no longer queued.
	DuplicateProofs prometheus.Counter
	CastFailures    prometheus.Counter
}

var (
	cacheOnce     sync.Once
	cacheRegistry *CacheMetrics

	waiterOnce     sync.Once
	waiterRegistry *WaiterMetrics

	blobOnce     sync.Once
	blobRegistry *BlobMetrics
)

func counter(subsystem, name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	})
}

// Cache returns the lazily-initialised account cache metrics.
func Cache() *CacheMetrics {
	cacheOnce.Do(func() {
		cacheRegistry = &CacheMetrics{
			Writes:    counter("account_cache", "writes_total", "Account upserts applied to the cache."),
			Hits:      counter("account_cache", "hits_total", "Lookups answered from the cache."),
			Misses:    counter("account_cache", "misses_total", "Lookups for addresses not resident in the cache."),
			Evictions: counter("account_cache", "evictions_total", "Entries removed after a downstream removal signal."),
		}
		prometheus.MustRegister(
			cacheRegistry.Writes,
			cacheRegistry.Hits,
			cacheRegistry.Misses,
			cacheRegistry.Evictions,
		)
	})
	return cacheRegistry
}

// Waiters returns the lazily-initialised pending-transaction metrics.
func Waiters() *WaiterMetrics {
	waiterOnce.Do(func() {
		waiterRegistry = &WaiterMetrics{
			Registered: counter("pending_transactions", "waiters_registered_total", "Waiters registered for pending confirmations."),
			Confirmed:  counter("pending_transactions", "waiters_confirmed_total", "Waiters resolved by confirmation events."),
			Orphaned:   counter("pending_transactions", "orphaned_confirmations_total", "Confirmations that found no registered waiter."),
		}
		prometheus.MustRegister(
			waiterRegistry.Registered,
			waiterRegistry.Confirmed,
			waiterRegistry.Orphaned,
		)
	})
	return waiterRegistry
}

// Blobs returns the lazily-initialised settlement queue metrics.
func Blobs() *BlobMetrics {
	blobOnce.Do(func() {
		blobRegistry = &BlobMetrics{
			Submitted:       counter("pending_blobs", "submissions_total", "Blob responses queued for validation."),
			Settled:         counter("pending_blobs", "settlements_total", "Verified blobs handed to the execution layer."),
			DuplicateProofs: counter("pending_blobs", "duplicate_proofs_total", "Proofs received for addresses no longer queued."),
			CastFailures:    counter("pending_blobs", "cast_failures_total", "Outbound notifications dropped because a peer mailbox was unavailable."),
		}
		prometheus.MustRegister(
			blobRegistry.Submitted,
			blobRegistry.Settled,
			blobRegistry.DuplicateProofs,
			blobRegistry.CastFailures,
		)
	})
	return blobRegistry
}
