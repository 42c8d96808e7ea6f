package manager

import (
	"runtime"

	"github.com/dot5enko/simple-range-join/index"
	"github.com/dot5enko/simple-range-join/manager/cache"
	"github.com/dot5enko/simple-range-join/manager/executor"
	"github.com/dot5enko/simple-range-join/manager/query"
)

type Config struct {
	// probe goroutines per join, runtime.NumCPU() when zero
	Workers int

	// primary rows per chunk, query.DefaultChunkRows when zero
	ChunkRows int

	SkipIncomparable bool
	Suffix           string

	// strategy of indexes built by BuildIndex and CachedIndex
	Strategy index.Strategy
}

type Manager struct {
	config Config

	Planner *query.JoinPlanner
	Indexes *cache.IndexCacheManager

	threadCaches *cache.TypedRingBuffer[executor.ProbeThreadCache]
}

func New(config Config) *Manager {

	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.ChunkRows <= 0 {
		config.ChunkRows = query.DefaultChunkRows
	}
	if config.Suffix == "" {
		config.Suffix = query.DefaultSuffix
	}

	return &Manager{
		config:       config,
		Planner:      query.NewJoinPlanner(),
		Indexes:      cache.NewIndexCacheManager(),
		threadCaches: cache.NewTypedRingBuffer[executor.ProbeThreadCache](config.Workers),
	}
}

func (sm *Manager) Config() Config {
	return sm.config
}

func (sm *Manager) options(how query.JoinType) query.JoinOptions {
	return query.JoinOptions{
		How:              how,
		SkipIncomparable: sm.config.SkipIncomparable,
		Suffix:           sm.config.Suffix,
		ChunkRows:        sm.config.ChunkRows,
	}
}
