package discovery

import (
	"context"
	"math"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/store"
)

// progressTracker publishes job progress and counters. Progress only moves
// forward: every field keeps the highest value seen. It is owned by the job
// goroutine and not safe for concurrent use.
type progressTracker struct {
	store    store.Store
	jobID    string
	progress model.Progress
	counters model.Counters
}

func newProgressTracker(st store.Store, jobID string) *progressTracker {
	return &progressTracker{store: st, jobID: jobID}
}

// percent returns round(100*i/n), or 0 when n is 0.
func percent(i, n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(i) / float64(n)))
}

// advance raises progress to at least p and publishes it with the current
// counters.
func (t *progressTracker) advance(ctx context.Context, p model.Progress) error {
	t.progress = t.progress.Max(p)
	return t.flush(ctx, model.JobPatch{})
}

// flush writes progress and counters together, plus any extra fields in
// patch.
func (t *progressTracker) flush(ctx context.Context, patch model.JobPatch) error {
	progress := t.progress
	patch.Progress = &progress
	_, err := t.store.UpdateJob(ctx, t.jobID, patch.WithCounters(t.counters))
	return err
}
