package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atlastrail/cascade/internal/core/extraction"
	"github.com/atlastrail/cascade/internal/core/filter"
	"github.com/atlastrail/cascade/internal/core/ideate"
	"github.com/atlastrail/cascade/internal/core/model"
	"github.com/atlastrail/cascade/internal/core/project"
	"github.com/atlastrail/cascade/internal/store"
)

const decomposeSteps = 3

// Decomposer is the three-step ideation orchestrator: candidate generation,
// candidate filtering, brief shaping. Every step gates the run.
type Decomposer struct {
	Store    store.Store
	Ideator  *ideate.Generator
	Filter   *filter.Engine
	Shaper   *project.Shaper
	Progress *Reporter
	Log      *zap.Logger
}

func (d *Decomposer) Run(ctx context.Context, req RunRequest) (*model.DecompositionResult, error) {
	result := &model.DecompositionResult{ItineraryID: req.ItineraryID, DryRun: req.DryRun}
	log := d.Log.With(zap.String("itinerary", req.ItineraryID), zap.Bool("dryRun", req.DryRun))
	log.Info("decomposition started")

	step := func(n int, name string, fn func() error) error {
		return runStep(ctx, d.Progress, req.JobID, &result.Steps, n, decomposeSteps, name, fn)
	}

	var candidates []model.RawCandidate
	var filtered []model.FilteredCandidate

	if err := step(1, "candidate_generation", func() error {
		doc, err := d.Store.FindByID(ctx, store.CollItineraries, req.ItineraryID)
		if err != nil {
			return fmt.Errorf("load itinerary: %w", err)
		}
		if doc == nil {
			return fmt.Errorf("itinerary %s not found", req.ItineraryID)
		}
		it, err := model.DecodeItinerary(doc)
		if err != nil {
			return err
		}
		candidates, err = d.Ideator.Generate(ctx, it, extraction.Extract(it))
		if err != nil {
			return err
		}
		result.TotalCandidates = len(candidates)
		return nil
	}); err != nil {
		return d.abort(ctx, result, req.JobID, err)
	}

	if err := step(2, "candidate_filtering", func() error {
		var err error
		filtered, err = d.Filter.Filter(ctx, candidates)
		if err != nil {
			return err
		}
		for _, c := range filtered {
			if c.Passed {
				result.Passed++
			} else {
				result.Filtered++
			}
		}
		return nil
	}); err != nil {
		return d.abort(ctx, result, req.JobID, err)
	}

	if err := step(3, "brief_shaping", func() error {
		result.ProjectsCreated, result.FilteredProjectIDs = d.Shaper.Shape(ctx, filtered, req.ItineraryID, req.DryRun)
		return nil
	}); err != nil {
		return d.abort(ctx, result, req.JobID, err)
	}

	d.Progress.MarkCompleted(ctx, req.JobID)
	log.Info("decomposition finished",
		zap.Int("candidates", result.TotalCandidates),
		zap.Int("passed", result.Passed),
		zap.Int("filtered", result.Filtered))
	return result, nil
}

func (d *Decomposer) abort(ctx context.Context, result *model.DecompositionResult, jobID string, err error) (*model.DecompositionResult, error) {
	result.Error = err.Error()
	d.Progress.MarkFailed(ctx, jobID, err.Error())
	d.Log.Error("decomposition aborted", zap.String("itinerary", result.ItineraryID), zap.Error(err))
	return result, err
}
