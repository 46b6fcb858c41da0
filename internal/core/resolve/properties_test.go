package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/atlastrail/cascade/internal/core/model"
	"github.com/atlastrail/cascade/internal/store"
	"github.com/atlastrail/cascade/internal/store/storetest"
)

func angama() model.PropertyEntity {
	return model.PropertyEntity{
		Name:          "Angama Mara",
		NormalizedKey: "angama mara",
		LocationName:  "Masai Mara",
		CountryName:   "Kenya",
	}
}

func TestResolvePropertyViaExistingRef(t *testing.T) {
	mem := storetest.NewMemory()
	seeded := mem.Seed(store.CollProperties, store.Document{"name": "Angama Mara"})

	p := angama()
	p.ExistingRefID = store.ID(seeded)

	r := NewPropertyResolver(mem, zap.NewNop())
	results, err := r.Resolve(context.Background(), []model.PropertyEntity{p}, nil, nil, false)

	assert.NoError(t, err)
	assert.Equal(t, model.ActionFound, results[0].Action)
	assert.Equal(t, store.ID(seeded), results[0].ResolvedID)
	assert.Empty(t, mem.Creates)
}

func TestResolvePropertyParentMatchByLocation(t *testing.T) {
	mem := storetest.NewMemory()
	destRes := []model.ResolutionResult{
		{EntityName: "Masai Mara", EntityType: model.EntityDestination, Action: model.ActionCreated, ResolvedID: "dest-1"},
	}

	r := NewPropertyResolver(mem, zap.NewNop())
	results, err := r.Resolve(context.Background(), []model.PropertyEntity{angama()}, destRes, nil, false)

	assert.NoError(t, err)
	assert.Equal(t, model.ActionCreated, results[0].Action)
	assert.Len(t, mem.Creates, 1)
	assert.Equal(t, "dest-1", mem.Creates[0].Data["destination"])
	assert.Equal(t, "angama-mara", mem.Creates[0].Data["slug"])
}

func TestResolvePropertyParentFallsBackToCountry(t *testing.T) {
	mem := storetest.NewMemory()
	countryRes := []model.ResolutionResult{
		{EntityName: "Kenya", EntityType: model.EntityCountry, Action: model.ActionFound, ResolvedID: "country-1"},
	}

	r := NewPropertyResolver(mem, zap.NewNop())
	results, err := r.Resolve(context.Background(), []model.PropertyEntity{angama()}, nil, countryRes, false)

	assert.NoError(t, err)
	assert.Equal(t, model.ActionCreated, results[0].Action)
	assert.Equal(t, "country-1", mem.Creates[0].Data["destination"])
}

func TestResolvePropertyDryRun(t *testing.T) {
	mem := storetest.NewMemory()

	r := NewPropertyResolver(mem, zap.NewNop())
	results, err := r.Resolve(context.Background(), []model.PropertyEntity{angama()}, nil, nil, true)

	assert.NoError(t, err)
	assert.Equal(t, model.ActionSkipped, results[0].Action)
	assert.Zero(t, mem.WriteCount())
}

func TestResolvePropertySlugConflictAdoptsExisting(t *testing.T) {
	mem := storetest.NewMemory()
	existing := mem.Seed(store.CollProperties, store.Document{"name": "Angama Mara Camp", "slug": "angama-mara"})
	mem.Fail["create:properties"] = store.ErrDuplicateKey

	r := NewPropertyResolver(mem, zap.NewNop())
	results, err := r.Resolve(context.Background(), []model.PropertyEntity{angama()}, nil, nil, false)

	assert.NoError(t, err)
	assert.Equal(t, model.ActionFound, results[0].Action)
	assert.Equal(t, store.ID(existing), results[0].ResolvedID)
}
