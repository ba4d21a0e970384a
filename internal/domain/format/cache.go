package format

import (
	"sync"
	"time"

	"github.com/FACorreiaa/payslip-extract/internal/domain/payslip"
)

// Cache defaults per the pipeline's expected usage: user-initiated imports,
// a handful of documents per session.
const (
	DefaultCacheTTL      = time.Hour
	DefaultCacheCapacity = 50
)

type cacheEntry struct {
	draft      *payslip.Draft
	createdAt  time.Time // TTL is measured from creation
	accessedAt time.Time // eviction order follows last access
}

// inflightCall tracks one in-progress compute so concurrent callers of the
// same key wait for its result instead of computing again.
type inflightCall struct {
	done  chan struct{}
	draft *payslip.Draft
	err   error
}

// ResultCache memoizes reconciled drafts by document fingerprint. One mutex
// guards the map and the eviction bookkeeping only; computes run outside it,
// with per-key in-flight tracking so two concurrent runs of the same
// document parse once while distinct documents proceed in parallel.
type ResultCache struct {
	mu       sync.Mutex
	entries  map[string]*cacheEntry
	inflight map[string]*inflightCall
	ttl      time.Duration
	capacity int
	now      func() time.Time // swapped in tests to drive TTL expiry
}

// NewResultCache creates a cache. Non-positive ttl or capacity fall back to
// the defaults.
func NewResultCache(ttl time.Duration, capacity int) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &ResultCache{
		entries:  make(map[string]*cacheEntry),
		inflight: make(map[string]*inflightCall),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns the cached draft for a key. Expiry is checked lazily here: an
// entry past its TTL is purged and reported as a miss.
func (c *ResultCache) Get(key string) (*payslip.Draft, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key)
}

// Put stores a draft under a key and then enforces the capacity bound,
// evicting strictly-oldest entries by access time until back within bounds.
func (c *ResultCache) Put(key string, draft *payslip.Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(key, draft)
}

// GetOrCompute returns the cached draft for key, or runs compute and caches
// its result when cacheable is true. The second return reports whether the
// result came from the cache or a concurrent compute of the same key rather
// than this call's own compute. Computes run outside the lock: the same
// fingerprint never parses twice concurrently, distinct fingerprints never
// wait on each other.
func (c *ResultCache) GetOrCompute(key string, compute func() (*payslip.Draft, bool, error)) (*payslip.Draft, bool, error) {
	c.mu.Lock()
	if draft, ok := c.getLocked(key); ok {
		c.mu.Unlock()
		return draft, true, nil
	}
	if call, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-call.done
		if call.err != nil {
			return nil, false, call.err
		}
		return call.draft, true, nil
	}
	call := &inflightCall{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	draft, cacheable, err := compute()

	c.mu.Lock()
	delete(c.inflight, key)
	if err == nil && cacheable {
		c.putLocked(key, draft)
	}
	c.mu.Unlock()

	call.draft, call.err = draft, err
	close(call.done)

	if err != nil {
		return nil, false, err
	}
	return draft, false, nil
}

// Len reports the number of live entries, counting expired ones that have
// not been lazily purged yet.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ResultCache) getLocked(key string) (*payslip.Draft, bool) {
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.createdAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	entry.accessedAt = c.now()
	return entry.draft, true
}

func (c *ResultCache) putLocked(key string, draft *payslip.Draft) {
	now := c.now()
	c.entries[key] = &cacheEntry{draft: draft, createdAt: now, accessedAt: now}

	for len(c.entries) > c.capacity {
		oldestKey := ""
		var oldest time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.accessedAt.Before(oldest) {
				oldestKey = k
				oldest = e.accessedAt
			}
		}
		delete(c.entries, oldestKey)
	}
}
