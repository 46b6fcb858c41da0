// Package pipeline sequences the content cascade and the itinerary
// decomposition as individually-timed, individually-failable steps. Steps run
// strictly sequentially; the only shared mutable state is the external job
// record, updated by whole-document overwrite after each step.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/atlastrail/cascade/internal/core/model"
	"github.com/atlastrail/cascade/internal/store"
)

// Reporter pushes run progress onto an external job record. Every method is
// best-effort: failures are logged and discarded, and an empty job id makes
// every call a no-op.
type Reporter struct {
	Store store.Store
	Log   *zap.Logger
}

func NewReporter(s store.Store, log *zap.Logger) *Reporter {
	return &Reporter{Store: s, Log: log}
}

// Record overwrites the job's progress map after a step completes or fails.
func (r *Reporter) Record(ctx context.Context, jobID string, current, total int, steps []model.StepResult) {
	if r == nil || jobID == "" {
		return
	}

	trail := make([]store.Document, 0, len(steps))
	for _, s := range steps {
		trail = append(trail, store.Document{
			"step":       s.Step,
			"name":       s.Name,
			"status":     string(s.Status),
			"durationMs": s.DurationMs,
			"detail":     s.Detail,
		})
	}

	update := store.Document{
		"progress": store.Document{
			"currentStep": current,
			"totalSteps":  total,
			"steps":       trail,
		},
	}
	if _, err := r.Store.Update(ctx, store.CollJobs, jobID, update); err != nil {
		r.Log.Warn("job progress update failed", zap.String("job", jobID), zap.Error(err))
	}
}

// MarkFailed stamps the job with the run's error and a completion time.
func (r *Reporter) MarkFailed(ctx context.Context, jobID, message string) {
	if r == nil || jobID == "" {
		return
	}
	update := store.Document{
		"status":      "failed",
		"error":       message,
		"completedAt": time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := r.Store.Update(ctx, store.CollJobs, jobID, update); err != nil {
		r.Log.Warn("job failure update failed", zap.String("job", jobID), zap.Error(err))
	}
}

// MarkCompleted stamps the job as finished.
func (r *Reporter) MarkCompleted(ctx context.Context, jobID string) {
	if r == nil || jobID == "" {
		return
	}
	update := store.Document{
		"status":      "completed",
		"completedAt": time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := r.Store.Update(ctx, store.CollJobs, jobID, update); err != nil {
		r.Log.Warn("job completion update failed", zap.String("job", jobID), zap.Error(err))
	}
}

// runStep wraps one pipeline step: time it, classify the outcome, append it
// to the trail, and push progress. The error is returned for the caller to
// gate on; the step entry is recorded either way.
func runStep(ctx context.Context, r *Reporter, jobID string, steps *[]model.StepResult, step, total int, name string, fn func() error) error {
	start := time.Now()
	err := fn()

	sr := model.StepResult{
		Step:       step,
		Name:       name,
		Status:     model.StepCompleted,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		sr.Status = model.StepFailed
		sr.Detail = err.Error()
	}
	*steps = append(*steps, sr)
	r.Record(ctx, jobID, step, total, *steps)
	return err
}
