package manager

import (
	"github.com/dot5enko/simple-range-join/index"
	"github.com/dot5enko/simple-range-join/schema"
)

func (sm *Manager) BuildIndex(lookup *schema.Table, lowerColumn, upperColumn string) (*index.IntervalIndex, error) {
	return index.Build(lookup, lowerColumn, upperColumn, index.WithStrategy(sm.config.Strategy))
}

// CachedIndex returns the index stored under key, building it from lookup
// on a miss. Concurrent callers with one key share a single build.
func (sm *Manager) CachedIndex(key string, lookup *schema.Table, lowerColumn, upperColumn string) (*index.IntervalIndex, error) {
	return sm.Indexes.GetOrBuild(key, func() (*index.IntervalIndex, error) {
		return sm.BuildIndex(lookup, lowerColumn, upperColumn)
	})
}
