package project

import (
	"context"

	"go.uber.org/zap"

	"github.com/atlastrail/cascade/internal/core/common"
	"github.com/atlastrail/cascade/internal/core/model"
	"github.com/atlastrail/cascade/internal/store"
)

// Shaper persists filtered candidates as content-project records. Idempotency
// key is (title, originItinerary): reruns reuse the existing record instead
// of writing a second one.
type Shaper struct {
	Store store.Store
	Log   *zap.Logger
}

func NewShaper(s store.Store, log *zap.Logger) *Shaper {
	return &Shaper{Store: s, Log: log}
}

// Shape returns the project ids for passed and filtered candidates. A
// candidate whose create fails twice (original slug, then the -2 suffix) is
// dropped from both lists; the drop is logged, never fatal.
func (s *Shaper) Shape(ctx context.Context, candidates []model.FilteredCandidate, itineraryID string, dryRun bool) (passedIDs, filteredIDs []string) {
	passedIDs = []string{}
	filteredIDs = []string{}

	for _, c := range candidates {
		existing, err := s.Store.FindOne(ctx, store.CollContentProjects, store.Filter{
			"title":           c.Title,
			"originItinerary": itineraryID,
		})
		if err != nil {
			s.Log.Warn("brief idempotency check failed", zap.String("title", c.Title), zap.Error(err))
			continue
		}
		if existing != nil {
			if c.Passed {
				passedIDs = append(passedIDs, store.ID(existing))
			} else {
				filteredIDs = append(filteredIDs, store.ID(existing))
			}
			continue
		}

		if dryRun {
			continue
		}

		id, ok := s.create(ctx, c, itineraryID)
		if !ok {
			continue
		}
		if c.Passed {
			passedIDs = append(passedIDs, id)
		} else {
			filteredIDs = append(filteredIDs, id)
		}
	}

	return passedIDs, filteredIDs
}

func (s *Shaper) create(ctx context.Context, c model.FilteredCandidate, itineraryID string) (string, bool) {
	stage := "brief"
	if !c.Passed {
		stage = "filtered"
	}

	slug := common.Slugify(c.Title)
	data := store.Document{
		"title":           c.Title,
		"slug":            slug,
		"contentType":     c.ContentType,
		"stage":           stage,
		"originItinerary": itineraryID,
		"briefSummary":    c.BriefSummary,
	}
	if c.FilterReason != "" {
		data["filterReason"] = c.FilterReason
	}

	doc, err := s.Store.Create(ctx, store.CollContentProjects, data)
	if err == nil {
		return store.ID(doc), true
	}
	if !store.IsDuplicateKey(err) {
		s.Log.Warn("brief create failed", zap.String("title", c.Title), zap.Error(err))
		return "", false
	}

	// One retry with a suffixed slug, then give up on this candidate.
	retry := store.Document{}
	for k, v := range data {
		retry[k] = v
	}
	retry["slug"] = slug + "-2"

	doc, err = s.Store.Create(ctx, store.CollContentProjects, retry)
	if err != nil {
		s.Log.Warn("brief create failed after slug retry", zap.String("title", c.Title), zap.Error(err))
		return "", false
	}
	return store.ID(doc), true
}
