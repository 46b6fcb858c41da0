package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/atlastrail/cascade/internal/core/model"
	"github.com/atlastrail/cascade/internal/store"
	"github.com/atlastrail/cascade/internal/store/storetest"
)

func kenya() model.CountryEntity {
	return model.CountryEntity{Name: "Kenya", NormalizedKey: "kenya"}
}

func masaiMara() model.LocationEntity {
	return model.LocationEntity{Name: "Masai Mara", NormalizedKey: "masai mara", CountryName: "Kenya"}
}

func TestResolveCountryFound(t *testing.T) {
	mem := storetest.NewMemory()
	mem.Seed(store.CollDestinations, store.Document{"name": "Kenya", "type": "country"})

	r := NewDestinationResolver(mem, zap.NewNop())
	results, err := r.Resolve(context.Background(), []model.CountryEntity{kenya()}, nil, false)

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, model.ActionFound, results[0].Action)
	assert.NotEmpty(t, results[0].ResolvedID)
}

func TestResolveCountryNeverCreated(t *testing.T) {
	mem := storetest.NewMemory()

	r := NewDestinationResolver(mem, zap.NewNop())
	results, err := r.Resolve(context.Background(), []model.CountryEntity{kenya()}, nil, false)

	assert.NoError(t, err)
	assert.Equal(t, model.ActionSkipped, results[0].Action)
	assert.Contains(t, results[0].Note, "pre-exist")
	assert.Empty(t, mem.Creates)
}

func TestResolveLocationAliasPrecedence(t *testing.T) {
	mem := storetest.NewMemory()
	// An exact-name record with a different id also exists; the alias wins.
	exact := mem.Seed(store.CollDestinations, store.Document{"name": "Masai Mara", "type": "destination"})
	mem.Seed(store.CollAliases, store.Document{
		"canonical":   "Maasai Mara",
		"aliases":     []string{"Masai Mara", "The Mara"},
		"destination": "dest-canonical",
	})

	r := NewDestinationResolver(mem, zap.NewNop())
	results, err := r.Resolve(context.Background(), nil, []model.LocationEntity{masaiMara()}, false)

	assert.NoError(t, err)
	assert.Equal(t, model.ActionFound, results[0].Action)
	assert.Equal(t, "dest-canonical", results[0].ResolvedID)
	assert.NotEqual(t, store.ID(exact), results[0].ResolvedID)
	assert.Contains(t, results[0].Note, "alias")
}

func TestResolveLocationCreatesDraft(t *testing.T) {
	mem := storetest.NewMemory()
	kenyaDoc := mem.Seed(store.CollDestinations, store.Document{"name": "Kenya", "type": "country"})

	r := NewDestinationResolver(mem, zap.NewNop())
	results, err := r.Resolve(context.Background(), []model.CountryEntity{kenya()}, []model.LocationEntity{masaiMara()}, false)

	assert.NoError(t, err)
	assert.Len(t, results, 2)
	loc := results[1]
	assert.Equal(t, model.ActionCreated, loc.Action)
	assert.NotEmpty(t, loc.ResolvedID)

	assert.Len(t, mem.Creates, 1)
	created := mem.Creates[0]
	assert.Equal(t, store.CollDestinations, created.Collection)
	assert.Equal(t, "Masai Mara", created.Data["name"])
	assert.Equal(t, "masai-mara", created.Data["slug"])
	assert.Equal(t, "destination", created.Data["type"])
	assert.Equal(t, store.ID(kenyaDoc), created.Data["country"])
}

func TestResolveLocationDryRunSkips(t *testing.T) {
	mem := storetest.NewMemory()

	r := NewDestinationResolver(mem, zap.NewNop())
	results, err := r.Resolve(context.Background(), nil, []model.LocationEntity{masaiMara()}, true)

	assert.NoError(t, err)
	assert.Equal(t, model.ActionSkipped, results[0].Action)
	assert.Contains(t, results[0].Note, "would create")
	assert.Zero(t, mem.WriteCount())
}

func TestResolveLocationSlugConflictAdoptsExisting(t *testing.T) {
	mem := storetest.NewMemory()
	existing := mem.Seed(store.CollDestinations, store.Document{
		"name": "Maasai Mara", "slug": "masai-mara", "type": "destination",
	})
	mem.Fail["create:destinations"] = store.ErrDuplicateKey

	r := NewDestinationResolver(mem, zap.NewNop())
	results, err := r.Resolve(context.Background(), nil, []model.LocationEntity{masaiMara()}, false)

	assert.NoError(t, err)
	assert.Equal(t, model.ActionFound, results[0].Action)
	assert.Equal(t, store.ID(existing), results[0].ResolvedID)
	assert.Contains(t, results[0].Note, "slug conflict")
}

func TestResolveLocationCreateFailureIsLocal(t *testing.T) {
	mem := storetest.NewMemory()
	mem.Fail["create:destinations"] = errors.New("store unavailable")

	r := NewDestinationResolver(mem, zap.NewNop())
	results, err := r.Resolve(context.Background(), nil, []model.LocationEntity{masaiMara()}, false)

	assert.NoError(t, err) // record-level failure never fails the step
	assert.Equal(t, model.ActionSkipped, results[0].Action)
	assert.Contains(t, results[0].Note, "create failed")
}

func TestResolveAliasLoadFailureIsFatal(t *testing.T) {
	mem := storetest.NewMemory()
	mem.Fail["findMany:destination_aliases"] = errors.New("store unavailable")

	r := NewDestinationResolver(mem, zap.NewNop())
	_, err := r.Resolve(context.Background(), nil, []model.LocationEntity{masaiMara()}, false)

	assert.Error(t, err)
}
