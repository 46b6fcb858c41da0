package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atlastrail/cascade/internal/core/common"
	"github.com/atlastrail/cascade/internal/core/extraction"
	"github.com/atlastrail/cascade/internal/core/model"
	"github.com/atlastrail/cascade/internal/core/project"
	"github.com/atlastrail/cascade/internal/core/relate"
	"github.com/atlastrail/cascade/internal/core/resolve"
	"github.com/atlastrail/cascade/internal/store"
)

const cascadeSteps = 5

// DecomposeTrigger fires the post-cascade ideation run. Implementations own
// their failures; the cascade never waits on or inspects the outcome.
type DecomposeTrigger interface {
	TriggerDecompose(itineraryID string)
}

// RunRequest identifies one pipeline run. An empty JobID disables progress
// reporting; DryRun suppresses every document-store and graph write.
type RunRequest struct {
	ItineraryID string
	DryRun      bool
	JobID       string
}

// Cascade is the five-step orchestrator: extraction, destination resolution,
// property resolution, relationship management, project generation. Steps 1-4
// gate the run; step 5's outcome is recorded the same way but never aborts.
type Cascade struct {
	Store         store.Store
	Destinations  *resolve.DestinationResolver
	Properties    *resolve.PropertyResolver
	Relationships *relate.Manager
	Projects      *project.Generator
	Progress      *Reporter
	Trigger       DecomposeTrigger
	Log           *zap.Logger
}

func (c *Cascade) Run(ctx context.Context, req RunRequest) (*model.CascadeResult, error) {
	result := &model.CascadeResult{ItineraryID: req.ItineraryID, DryRun: req.DryRun}
	log := c.Log.With(zap.String("itinerary", req.ItineraryID), zap.Bool("dryRun", req.DryRun))
	log.Info("cascade started")

	step := func(n int, name string, fn func() error) error {
		return runStep(ctx, c.Progress, req.JobID, &result.Steps, n, cascadeSteps, name, fn)
	}

	if err := step(1, "entity_extraction", func() error {
		doc, err := c.Store.FindByID(ctx, store.CollItineraries, req.ItineraryID)
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
		result.Entities = extraction.Extract(it)
		return nil
	}); err != nil {
		return c.abort(ctx, result, req.JobID, err)
	}

	var countryRes, locationRes, propertyRes []model.ResolutionResult

	if err := step(2, "destination_resolution", func() error {
		resolutions, err := c.Destinations.Resolve(ctx, result.Entities.Countries, result.Entities.Locations, req.DryRun)
		if err != nil {
			return err
		}
		for _, r := range resolutions {
			if r.EntityType == model.EntityCountry {
				countryRes = append(countryRes, r)
			} else {
				locationRes = append(locationRes, r)
			}
		}
		result.Resolutions = append(result.Resolutions, resolutions...)
		return nil
	}); err != nil {
		return c.abort(ctx, result, req.JobID, err)
	}

	if err := step(3, "property_resolution", func() error {
		resolutions, err := c.Properties.Resolve(ctx, result.Entities.Properties, locationRes, countryRes, req.DryRun)
		if err != nil {
			return err
		}
		propertyRes = resolutions
		result.Resolutions = append(result.Resolutions, resolutions...)
		return nil
	}); err != nil {
		return c.abort(ctx, result, req.JobID, err)
	}

	if err := step(4, "relationship_management", func() error {
		destinationIDs := resolvedIDs(locationRes)
		propertyIDs := resolvedIDs(propertyRes)
		p2d := propertyDestinationMap(result.Entities.Properties, propertyRes, locationRes)
		result.Relationships = c.Relationships.Manage(ctx, req.ItineraryID, destinationIDs, propertyIDs, p2d, req.DryRun)
		return nil
	}); err != nil {
		return c.abort(ctx, result, req.JobID, err)
	}

	// Step 5 is recorded like the rest but its failure does not abort the
	// run. It still counts as an accumulated error, which blocks the
	// downstream trigger and keeps the job from being marked completed.
	if err := step(5, "project_generation", func() error {
		var firstErr error
		for _, r := range result.Resolutions {
			if r.ResolvedID == "" {
				continue
			}
			var coll, contentType string
			switch r.EntityType {
			case model.EntityDestination:
				coll, contentType = store.CollDestinations, "destination_guide"
			case model.EntityProperty:
				coll, contentType = store.CollProperties, "property_spotlight"
			default:
				continue
			}
			action, err := c.Projects.Ensure(ctx, coll, r.ResolvedID, r.EntityName, contentType, req.DryRun)
			if err != nil {
				log.Warn("content project ensure failed", zap.String("entity", r.EntityName), zap.Error(err))
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			result.ContentProjects = append(result.ContentProjects, action)
		}
		return firstErr
	}); err != nil {
		result.Error = err.Error()
	}

	if result.Error == "" {
		c.Progress.MarkCompleted(ctx, req.JobID)
		if !req.DryRun && c.Trigger != nil {
			go c.Trigger.TriggerDecompose(req.ItineraryID)
		}
	} else {
		c.Progress.MarkFailed(ctx, req.JobID, result.Error)
	}

	log.Info("cascade finished",
		zap.Int("steps", len(result.Steps)),
		zap.Int("resolutions", len(result.Resolutions)),
		zap.Int("relationships", len(result.Relationships)),
		zap.Int("contentProjects", len(result.ContentProjects)))
	return result, nil
}

func (c *Cascade) abort(ctx context.Context, result *model.CascadeResult, jobID string, err error) (*model.CascadeResult, error) {
	result.Error = err.Error()
	c.Progress.MarkFailed(ctx, jobID, err.Error())
	c.Log.Error("cascade aborted", zap.String("itinerary", result.ItineraryID), zap.Error(err))
	return result, err
}

func resolvedIDs(resolutions []model.ResolutionResult) []string {
	ids := make([]string, 0, len(resolutions))
	for _, r := range resolutions {
		if r.ResolvedID != "" {
			ids = append(ids, r.ResolvedID)
		}
	}
	return ids
}

// propertyDestinationMap pairs each resolved property with a resolved
// destination by normalized entity name: the property's location name first,
// its country name as fallback. An aliased destination resolves under its
// canonical name, so a property naming the alias will not pair with it.
func propertyDestinationMap(properties []model.PropertyEntity, propertyRes, destinationRes []model.ResolutionResult) map[string]string {
	destByName := map[string]string{}
	for _, r := range destinationRes {
		if r.ResolvedID != "" {
			destByName[common.Normalize(r.EntityName)] = r.ResolvedID
		}
	}
	propByName := map[string]string{}
	for _, r := range propertyRes {
		if r.ResolvedID != "" {
			propByName[common.Normalize(r.EntityName)] = r.ResolvedID
		}
	}

	out := map[string]string{}
	for _, p := range properties {
		propID := propByName[p.NormalizedKey]
		if propID == "" {
			continue
		}
		destID := destByName[common.Normalize(p.LocationName)]
		if destID == "" {
			destID = destByName[common.Normalize(p.CountryName)]
		}
		if destID != "" {
			out[propID] = destID
		}
	}
	return out
}
