package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
)

// DiagnosticOutput receives worker diagnostics
var DiagnosticOutput io.Writer = os.Stderr

// ChunkSingleThreadProcessor drains tasksQueue until it is closed or ctx is
// done. Schema errors are recorded on the task status, only ctx errors are
// returned.
func ChunkSingleThreadProcessor(ctx context.Context, threadId int, threadCache *ProbeThreadCache, prober *RowProber, tasksQueue <-chan *ProbeTask) error {

	slog.Debug("worker started", "thread_id", threadId)
	defer slog.Debug("worker stopped", "thread_id", threadId)

	var status *TaskStatus

	for task := range tasksQueue {

		status = task.Status

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("join interrupted before chunk %d: %w", task.Chunk.ChunkIdx, err)
		}

		curStatus := task.Status

		if curStatus.Skippable(task.Chunk.ChunkIdx) {
			if failed := curStatus.FirstError(); failed != nil {
				color.New(color.FgRed).Fprintf(DiagnosticOutput, "skipped chunk %d because of error: %s\n", task.Chunk.ChunkIdx, failed.Error())
			}
			continue
		}

		taskRes, err := ExecutePlanForChunk(threadCache, prober, task.Plan, task.Chunk)
		if err != nil {
			curStatus.Fail(task.Chunk.ChunkIdx, err)
			continue
		}

		curStatus.complete(taskRes)
		curStatus.ChunksProcessed.Add(1)
	}

	if status != nil {
		status.mergeMatched(threadCache.Matched())
	}

	return nil
}
