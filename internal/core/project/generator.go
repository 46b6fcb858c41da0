package project

import (
	"context"

	"go.uber.org/zap"

	"github.com/atlastrail/cascade/internal/core/common"
	"github.com/atlastrail/cascade/internal/core/model"
	"github.com/atlastrail/cascade/internal/store"
)

// Generator idempotently ensures a content-project stub exists for a resolved
// record. Uniqueness on (targetCollection, targetRecordId) is enforced by a
// pre-create existence check; the slug index catches check-then-act races.
type Generator struct {
	Store store.Store
	Log   *zap.Logger
}

func NewGenerator(s store.Store, log *zap.Logger) *Generator {
	return &Generator{Store: s, Log: log}
}

func (g *Generator) Ensure(ctx context.Context, targetCollection, targetRecordID, title, contentType string, dryRun bool) (model.ContentProjectAction, error) {
	action := model.ContentProjectAction{
		TargetCollection: targetCollection,
		TargetRecordID:   targetRecordID,
	}

	existing, err := g.Store.FindOne(ctx, store.CollContentProjects, store.Filter{
		"targetCollection": targetCollection,
		"targetRecordId":   targetRecordID,
	})
	if err != nil {
		return action, err
	}
	if existing != nil {
		action.Action = model.ProjectAlreadyExists
		action.ProjectID = store.ID(existing)
		return action, nil
	}

	if dryRun {
		// No-op signal, not a literal existence claim.
		action.Action = model.ProjectAlreadyExists
		return action, nil
	}

	slug := common.Slugify(title)
	created, err := g.Store.Create(ctx, store.CollContentProjects, store.Document{
		"title":            title,
		"slug":             slug,
		"contentType":      contentType,
		"stage":            "idea",
		"targetCollection": targetCollection,
		"targetRecordId":   targetRecordID,
	})
	if err == nil {
		action.Action = model.ProjectCreated
		action.ProjectID = store.ID(created)
		return action, nil
	}

	if store.IsDuplicateKey(err) {
		adopted, qerr := g.Store.FindOne(ctx, store.CollContentProjects, store.Filter{"slug": slug})
		if qerr == nil && adopted != nil {
			action.Action = model.ProjectAlreadyExists
			action.ProjectID = store.ID(adopted)
			return action, nil
		}
		g.Log.Warn("project slug conflict requery failed", zap.String("slug", slug), zap.Error(qerr))
	}

	return action, err
}
