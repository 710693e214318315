package pipeline

import (
	"bike-data-pipeline/internal/store"
	"time"
)

// stageTracker records the lifecycle of one stage run in the store: a
// started row when created, then a completed or failed row with counts.
type stageTracker struct {
	jobID string
	stage string
	start time.Time
}

// trackStage marks a stage as started and returns its tracker.
func trackStage(jobID, stage string) *stageTracker {
	t := &stageTracker{jobID: jobID, stage: stage, start: time.Now()}
	store.SaveStageProgress(jobID, stage, "started", &t.start, nil, 0, 0, 0)
	return t
}

func (t *stageTracker) complete(in, removed, out int) {
	end := time.Now()
	store.SaveStageProgress(t.jobID, t.stage, "completed", &t.start, &end, in, removed, out)
	store.SavePipelineLog(t.jobID, t.stage, "info", "Stage completed", map[string]interface{}{
		"records_in":      in,
		"records_removed": removed,
		"records_out":     out,
		"duration_ms":     end.Sub(t.start).Milliseconds(),
	})
}

func (t *stageTracker) fail(err error) {
	end := time.Now()
	store.SaveStageProgress(t.jobID, t.stage, "failed", &t.start, &end, 0, 0, 0)
	store.SavePipelineLog(t.jobID, t.stage, "error", "Stage failed", map[string]interface{}{
		"error": err.Error(),
	})
}
