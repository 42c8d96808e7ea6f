package executor

import (
	"sync"
	"sync/atomic"

	"github.com/dot5enko/simple-range-join/bits"
	"github.com/dot5enko/simple-range-join/manager/query"
)

// TaskStatus is shared by every task of one join
type TaskStatus struct {
	ChunksTotal     int
	ChunksProcessed atomic.Int32

	// lowest chunk index that failed, ChunksTotal while none did
	firstFailed atomic.Int64

	Results []ChunkResult
	Errors  []error

	Stats   ProbeStats
	Matched bits.Bitfield

	Lock sync.Mutex
}

func NewTaskStatus(chunks int) *TaskStatus {
	status := &TaskStatus{
		ChunksTotal: chunks,
		Results:     make([]ChunkResult, chunks),
		Errors:      make([]error, chunks),
	}
	status.firstFailed.Store(int64(chunks))

	return status
}

// Fail records err for chunkIdx and lowers the failure mark if needed
func (s *TaskStatus) Fail(chunkIdx int, err error) {

	s.Errors[chunkIdx] = err

	for {
		cur := s.firstFailed.Load()
		if int64(chunkIdx) >= cur {
			return
		}
		if s.firstFailed.CompareAndSwap(cur, int64(chunkIdx)) {
			return
		}
	}
}

// Skippable reports whether an earlier chunk already failed. Chunks before
// the failure mark are always probed so the reported row is the first one.
func (s *TaskStatus) Skippable(chunkIdx int) bool {
	return int64(chunkIdx) > s.firstFailed.Load()
}

// FirstError is the error of the lowest failed chunk
func (s *TaskStatus) FirstError() error {
	failed := s.firstFailed.Load()
	if failed >= int64(s.ChunksTotal) {
		return nil
	}
	return s.Errors[failed]
}

func (s *TaskStatus) complete(res ChunkResult) {
	s.Lock.Lock()
	defer s.Lock.Unlock()

	s.Results[res.ChunkIdx] = res
	s.Stats.Add(res.Stats)
}

func (s *TaskStatus) mergeMatched(matched bits.Bitfield) {
	if !matched.Any() {
		return
	}

	s.Lock.Lock()
	defer s.Lock.Unlock()

	s.Matched = bits.MergeOR(s.Matched, matched)
}

type ProbeTask struct {
	Chunk *query.ProbeChunk
	Plan  *query.JoinPlan

	Status *TaskStatus
}
