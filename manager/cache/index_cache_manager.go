package cache

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dot5enko/simple-range-join/index"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

type CacheEntry struct {
	CacheEntryId uuid.UUID

	Index   *index.IntervalIndex
	RtStats *CacheStats
}

// IndexCacheManager keeps built indexes by a caller chosen key.
// Concurrent misses on one key build the index once.
type IndexCacheManager struct {
	storage       map[string]*CacheEntry
	storageLocker sync.RWMutex

	buildGroup singleflight.Group
}

func NewIndexCacheManager() *IndexCacheManager {
	return &IndexCacheManager{
		storage: make(map[string]*CacheEntry),
	}
}

func (m *IndexCacheManager) get(key string) *CacheEntry {

	m.storageLocker.Lock()
	defer m.storageLocker.Unlock()

	if entry, ok := m.storage[key]; ok {
		entry.RtStats.Reads++
		return entry
	}

	return nil
}

func (m *IndexCacheManager) GetOrBuild(key string, build func() (*index.IntervalIndex, error)) (*index.IntervalIndex, error) {

	if entry := m.get(key); entry != nil {
		return entry.Index, nil
	}

	v, err, shared := m.buildGroup.Do(key, func() (any, error) {

		// another caller may have finished while this one waited for the group
		if entry := m.get(key); entry != nil {
			return entry, nil
		}

		idx, buildErr := build()
		if buildErr != nil {
			return nil, fmt.Errorf("unable to build index `%s` : %w", key, buildErr)
		}

		uid, uidErr := uuid.NewV7()
		if uidErr != nil {
			uid = uuid.New()
		}

		entry := &CacheEntry{
			CacheEntryId: uid,
			Index:        idx,
			RtStats:      &CacheStats{Created: time.Now()},
		}

		m.storageLocker.Lock()
		m.storage[key] = entry
		m.storageLocker.Unlock()

		return entry, nil
	})

	if err != nil {
		return nil, err
	}

	entry := v.(*CacheEntry)
	slog.Debug("index cache", "key", key, "entry", entry.CacheEntryId.String(), "index", entry.Index.ID().String(), "shared", shared)

	return entry.Index, nil
}

func (m *IndexCacheManager) Evict(key string) bool {

	m.storageLocker.Lock()
	defer m.storageLocker.Unlock()

	_, ok := m.storage[key]
	delete(m.storage, key)

	return ok
}

func (m *IndexCacheManager) Len() int {

	m.storageLocker.RLock()
	defer m.storageLocker.RUnlock()

	return len(m.storage)
}

// Stats returns a copy of the entry stats, false if key is not cached
func (m *IndexCacheManager) Stats(key string) (CacheStats, bool) {

	m.storageLocker.RLock()
	defer m.storageLocker.RUnlock()

	entry, ok := m.storage[key]
	if !ok {
		return CacheStats{}, false
	}

	return *entry.RtStats, true
}
