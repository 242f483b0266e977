package service

import (
	"strconv"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
)

// AvailabilityCache keeps each ad's sorted blocked days in process memory.
// The guards invalidate an ad's entry whenever one of its bookings changes.
// A nil *AvailabilityCache caches nothing.
//
// Every invalidation bumps a per-ad version.  Readers take the version
// before loading bookings and hand it back to Set, which drops the value if
// a guard invalidated the ad in between.
type AvailabilityCache struct {
	c   *ccache.Cache[[]string]
	ttl time.Duration

	mu       sync.Mutex
	versions map[uint64]uint64
}

// NewAvailabilityCache returns a cache holding at most size ads for ttl.
func NewAvailabilityCache(size int64, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{
		c:        ccache.New(ccache.Configure[[]string]().MaxSize(size)),
		ttl:      ttl,
		versions: make(map[uint64]uint64),
	}
}

func adKey(adID uint64) string { return strconv.FormatUint(adID, 10) }

// Get returns the cached days of the ad.
func (a *AvailabilityCache) Get(adID uint64) ([]string, bool) {
	if a == nil {
		return nil, false
	}
	item := a.c.Get(adKey(adID))
	if item == nil || item.Expired() {
		return nil, false
	}
	return item.Value(), true
}

// Version returns the ad's invalidation counter.
func (a *AvailabilityCache) Version(adID uint64) uint64 {
	if a == nil {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.versions[adID]
}

// Set stores the days of the ad unless the ad was invalidated after version
// was read.
func (a *AvailabilityCache) Set(adID, version uint64, days []string) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.versions[adID] != version {
		return
	}
	a.c.Set(adKey(adID), days, a.ttl)
}

// Invalidate drops the entry of every given ad.
func (a *AvailabilityCache) Invalidate(adIDs ...uint64) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, id := range adIDs {
		a.versions[id]++
		a.c.Delete(adKey(id))
	}
}

// Stop halts the cache's background worker.
func (a *AvailabilityCache) Stop() {
	if a != nil {
		a.c.Stop()
	}
}
