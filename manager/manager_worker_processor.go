package manager

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dot5enko/simple-range-join/manager/executor"
	"github.com/dot5enko/simple-range-join/manager/query"
	"github.com/dot5enko/simple-range-join/schema"
	"golang.org/x/sync/errgroup"
)

// executePlan probes all plan chunks on a worker pool and stitches the
// chunk results back in primary row order
func (sm *Manager) executePlan(ctx context.Context, plan *query.JoinPlan) ([]schema.Row, JoinStats, error) {

	start := time.Now()

	status := executor.NewTaskStatus(len(plan.Chunks))
	prober := executor.NewRowProber(plan)

	routines := max(1, min(sm.config.Workers, len(plan.Chunks)))

	slog.Debug("starting workers", "max_executors", routines, "chunks", len(plan.Chunks))

	g, gctx := errgroup.WithContext(ctx)
	tasksQueue := make(chan *executor.ProbeTask, routines)

	g.Go(func() error {
		defer close(tasksQueue)

		for idx := range plan.Chunks {

			// everything after a failed chunk is discarded anyway
			if status.Skippable(idx) {
				return nil
			}

			select {
			case tasksQueue <- &executor.ProbeTask{Chunk: &plan.Chunks[idx], Plan: plan, Status: status}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}

		return nil
	})

	for threadId := range routines {
		g.Go(func() error {

			threadCache, cacheId, acquireErr := sm.threadCaches.Acquire(gctx)
			if acquireErr != nil {
				return acquireErr
			}
			defer sm.threadCaches.Return(cacheId)

			threadCache.Reset(plan.Index.LookupRows())

			return executor.ChunkSingleThreadProcessor(gctx, threadId, threadCache, prober, tasksQueue)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, JoinStats{}, fmt.Errorf("join cancelled after %d of %d chunks: %w", status.ChunksProcessed.Load(), status.ChunksTotal, err)
	}

	if err := status.FirstError(); err != nil {
		return nil, JoinStats{}, err
	}

	total := 0
	for idx := range status.Results {
		total += len(status.Results[idx].Rows)
	}

	rows := make([]schema.Row, 0, total)
	for idx := range status.Results {
		rows = append(rows, status.Results[idx].Rows...)
	}

	stats := JoinStats{
		ProbeStats:    status.Stats,
		LookupMatched: status.Matched.Count(),
		Chunks:        len(plan.Chunks),
		Workers:       routines,
		Took:          time.Since(start),
	}

	return rows, stats, nil
}
