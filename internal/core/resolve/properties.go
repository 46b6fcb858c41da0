package resolve

import (
	"context"

	"go.uber.org/zap"

	"github.com/atlastrail/cascade/internal/core/common"
	"github.com/atlastrail/cascade/internal/core/model"
	"github.com/atlastrail/cascade/internal/store"
)

// PropertyResolver maps extracted property entities to content records,
// attaching each to a parent destination resolved earlier in the same run.
type PropertyResolver struct {
	Store store.Store
	Log   *zap.Logger
}

func NewPropertyResolver(s store.Store, log *zap.Logger) *PropertyResolver {
	return &PropertyResolver{Store: s, Log: log}
}

// Resolve matches each property to a parent destination by normalized
// location name, falling back to country name, against this run's destination
// resolutions. Record-level failures are contained per property.
func (r *PropertyResolver) Resolve(ctx context.Context, properties []model.PropertyEntity, destinationResolutions, countryResolutions []model.ResolutionResult, dryRun bool) ([]model.ResolutionResult, error) {
	destParents := map[string]string{}
	for _, dr := range destinationResolutions {
		if dr.ResolvedID != "" {
			destParents[common.Normalize(dr.EntityName)] = dr.ResolvedID
		}
	}
	// Countries live in the same collection as destinations, so a country
	// record is a valid (if coarse) parent when no destination matched.
	countryParents := map[string]string{}
	for _, cr := range countryResolutions {
		if cr.ResolvedID != "" {
			countryParents[common.Normalize(cr.EntityName)] = cr.ResolvedID
		}
	}

	results := make([]model.ResolutionResult, 0, len(properties))
	for _, p := range properties {
		results = append(results, r.resolveProperty(ctx, p, destParents, countryParents, dryRun))
	}
	return results, nil
}

func (r *PropertyResolver) resolveProperty(ctx context.Context, p model.PropertyEntity, destParents, countryParents map[string]string, dryRun bool) model.ResolutionResult {
	res := model.ResolutionResult{EntityName: p.Name, EntityType: model.EntityProperty}

	// A ref carried on the itinerary segment short-circuits name matching.
	if p.ExistingRefID != "" {
		doc, err := r.Store.FindByID(ctx, store.CollProperties, p.ExistingRefID)
		if err != nil {
			r.Log.Warn("property ref lookup failed", zap.String("property", p.Name), zap.String("ref", p.ExistingRefID), zap.Error(err))
		} else if doc != nil {
			res.Action = model.ActionFound
			res.ResolvedID = store.ID(doc)
			res.Note = "found (via itinerary ref)"
			return res
		}
	}

	doc, err := r.Store.FindOne(ctx, store.CollProperties, store.Filter{"name": p.Name})
	if err != nil {
		r.Log.Warn("property lookup failed", zap.String("property", p.Name), zap.Error(err))
		res.Action = model.ActionSkipped
		res.Note = "lookup failed: " + err.Error()
		return res
	}
	if doc != nil {
		res.Action = model.ActionFound
		res.ResolvedID = store.ID(doc)
		return res
	}

	if dryRun {
		res.Action = model.ActionSkipped
		res.Note = "dry run: would create property"
		return res
	}

	parentID := destParents[common.Normalize(p.LocationName)]
	if parentID == "" {
		parentID = destParents[common.Normalize(p.CountryName)]
	}
	if parentID == "" {
		parentID = countryParents[common.Normalize(p.CountryName)]
	}

	slug := common.Slugify(p.Name)
	data := store.Document{
		"name":   p.Name,
		"slug":   slug,
		"status": "draft",
	}
	if parentID != "" {
		data["destination"] = parentID
	}

	created, err := r.Store.Create(ctx, store.CollProperties, data)
	if err == nil {
		res.Action = model.ActionCreated
		res.ResolvedID = store.ID(created)
		return res
	}

	if store.IsDuplicateKey(err) {
		existing, qerr := r.Store.FindOne(ctx, store.CollProperties, store.Filter{"slug": slug})
		if qerr == nil && existing != nil {
			res.Action = model.ActionFound
			res.ResolvedID = store.ID(existing)
			res.Note = "adopted existing record after slug conflict"
			return res
		}
		r.Log.Warn("slug conflict requery failed", zap.String("slug", slug), zap.Error(qerr))
	}

	r.Log.Warn("property create failed", zap.String("property", p.Name), zap.Error(err))
	res.Action = model.ActionSkipped
	res.Note = "create failed: " + err.Error()
	return res
}
