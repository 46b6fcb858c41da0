package resolve

import (
	"context"

	"go.uber.org/zap"

	"github.com/atlastrail/cascade/internal/core/common"
	"github.com/atlastrail/cascade/internal/core/model"
	"github.com/atlastrail/cascade/internal/store"
)

// DestinationResolver maps extracted country and location entities to content
// records. Countries are never auto-created; locations may be, unless the run
// is a dry run.
type DestinationResolver struct {
	Store store.Store
	Log   *zap.Logger
}

func NewDestinationResolver(s store.Store, log *zap.Logger) *DestinationResolver {
	return &DestinationResolver{Store: s, Log: log}
}

// Resolve processes countries first so the accumulated country→id map is
// available when locations are created with a parent-country reference.
func (r *DestinationResolver) Resolve(ctx context.Context, countries []model.CountryEntity, locations []model.LocationEntity, dryRun bool) ([]model.ResolutionResult, error) {
	aliases, err := LoadAliasMap(ctx, r.Store)
	if err != nil {
		return nil, err
	}

	results := make([]model.ResolutionResult, 0, len(countries)+len(locations))
	countryIDs := map[string]string{}

	for _, c := range countries {
		res := r.resolveCountry(ctx, c)
		if res.ResolvedID != "" {
			countryIDs[c.NormalizedKey] = res.ResolvedID
		}
		results = append(results, res)
	}

	for _, loc := range locations {
		results = append(results, r.resolveLocation(ctx, loc, aliases, countryIDs, dryRun))
	}

	return results, nil
}

func (r *DestinationResolver) resolveCountry(ctx context.Context, c model.CountryEntity) model.ResolutionResult {
	res := model.ResolutionResult{EntityName: c.Name, EntityType: model.EntityCountry}

	doc, err := r.Store.FindOne(ctx, store.CollDestinations, store.Filter{"name": c.Name, "type": "country"})
	if err != nil {
		r.Log.Warn("country lookup failed", zap.String("country", c.Name), zap.Error(err))
		res.Action = model.ActionSkipped
		res.Note = "lookup failed: " + err.Error()
		return res
	}
	if doc == nil {
		res.Action = model.ActionSkipped
		res.Note = "country not found; countries are expected to pre-exist and are never auto-created"
		return res
	}

	res.Action = model.ActionFound
	res.ResolvedID = store.ID(doc)
	return res
}

func (r *DestinationResolver) resolveLocation(ctx context.Context, loc model.LocationEntity, aliases AliasMap, countryIDs map[string]string, dryRun bool) model.ResolutionResult {
	res := model.ResolutionResult{EntityName: loc.Name, EntityType: model.EntityDestination}

	// Alias mapping wins over any exact-name record.
	if id, ok := aliases[loc.NormalizedKey]; ok {
		res.Action = model.ActionFound
		res.ResolvedID = id
		res.Note = "found (via alias)"
		return res
	}

	doc, err := r.Store.FindOne(ctx, store.CollDestinations, store.Filter{"name": loc.Name, "type": "destination"})
	if err != nil {
		r.Log.Warn("destination lookup failed", zap.String("location", loc.Name), zap.Error(err))
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
		res.Note = "dry run: would create destination"
		return res
	}

	slug := common.Slugify(loc.Name)
	data := store.Document{
		"name":   loc.Name,
		"slug":   slug,
		"type":   "destination",
		"status": "draft",
	}
	if parentID := countryIDs[common.Normalize(loc.CountryName)]; parentID != "" {
		data["country"] = parentID
	}

	created, err := r.Store.Create(ctx, store.CollDestinations, data)
	if err == nil {
		res.Action = model.ActionCreated
		res.ResolvedID = store.ID(created)
		return res
	}

	if store.IsDuplicateKey(err) {
		// A concurrent run won the check-then-create race; adopt its record.
		existing, qerr := r.Store.FindOne(ctx, store.CollDestinations, store.Filter{"slug": slug, "type": "destination"})
		if qerr == nil && existing != nil {
			res.Action = model.ActionFound
			res.ResolvedID = store.ID(existing)
			res.Note = "adopted existing record after slug conflict"
			return res
		}
		r.Log.Warn("slug conflict requery failed", zap.String("slug", slug), zap.Error(qerr))
	}

	r.Log.Warn("destination create failed", zap.String("location", loc.Name), zap.Error(err))
	res.Action = model.ActionSkipped
	res.Note = "create failed: " + err.Error()
	return res
}
