package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/atlastrail/cascade/internal/core/model"
	"github.com/atlastrail/cascade/internal/semantic"
	"github.com/atlastrail/cascade/internal/store"
	"github.com/atlastrail/cascade/internal/store/storetest"
)

func maraCandidate() model.RawCandidate {
	return model.RawCandidate{
		Title:              "Mara in May",
		ContentType:        "seasonal_roundup",
		BriefSummary:       "Why the green season in the Masai Mara is underrated.",
		TargetDestinations: []string{"Masai Mara"},
	}
}

func newEngine(mem *storetest.Memory, search semantic.Searcher) *Engine {
	return NewEngine(mem, search, 0.85, 5, zap.NewNop())
}

func TestFilterDirectiveANDSemantics(t *testing.T) {
	mem := storetest.NewMemory()
	mem.Seed(store.CollDirectives, store.Document{
		"rule":            "no more mara seasonal pieces",
		"active":          true,
		"destinationTags": []string{"mara"},
		"topicTags":       []string{"green season"},
	})
	e := newEngine(mem, &MockSearcher{})

	// Both declared dimensions match: filtered.
	both, err := e.Filter(context.Background(), []model.RawCandidate{maraCandidate()})
	assert.NoError(t, err)
	assert.False(t, both[0].Passed)
	assert.Equal(t, "no more mara seasonal pieces", both[0].FilterReason)
	assert.Len(t, both[0].MatchedDirectives, 1)

	// Only the destination dimension matches: must not filter.
	c := maraCandidate()
	c.Title = "Mara Big Cats"
	c.BriefSummary = "Tracking lion prides."
	one, err := e.Filter(context.Background(), []model.RawCandidate{c})
	assert.NoError(t, err)
	assert.True(t, one[0].Passed)
}

func TestFilterDirectiveWithNoDeclaredDimensionsNeverMatches(t *testing.T) {
	mem := storetest.NewMemory()
	mem.Seed(store.CollDirectives, store.Document{
		"rule":   "empty directive",
		"active": true,
	})
	e := newEngine(mem, &MockSearcher{})

	out, err := e.Filter(context.Background(), []model.RawCandidate{maraCandidate()})
	assert.NoError(t, err)
	assert.True(t, out[0].Passed)
}

func TestFilterDirectiveHitCounterIncremented(t *testing.T) {
	mem := storetest.NewMemory()
	mem.Seed(store.CollDirectives, store.Document{
		"rule":      "no mara",
		"active":    true,
		"topicTags": []string{"mara"},
	})
	e := newEngine(mem, &MockSearcher{})

	_, err := e.Filter(context.Background(), []model.RawCandidate{maraCandidate()})
	assert.NoError(t, err)
	assert.Len(t, mem.Updates, 1)
	assert.Equal(t, store.CollDirectives, mem.Updates[0].Collection)
	hits, _ := mem.Updates[0].Data["recentHits"].([]string)
	assert.Len(t, hits, 1)
}

func TestFilterHitCounterFailureDoesNotAffectVerdict(t *testing.T) {
	mem := storetest.NewMemory()
	mem.Seed(store.CollDirectives, store.Document{
		"rule":      "no mara",
		"active":    true,
		"topicTags": []string{"mara"},
	})
	mem.Fail["update:directives"] = errors.New("write refused")
	e := newEngine(mem, &MockSearcher{})

	out, err := e.Filter(context.Background(), []model.RawCandidate{maraCandidate()})
	assert.NoError(t, err)
	assert.False(t, out[0].Passed)
}

func TestFilterDuplicateThresholdBoundary(t *testing.T) {
	mem := storetest.NewMemory()

	// Exactly at the threshold: strictly-greater-than, so it passes.
	at := newEngine(mem, &MockSearcher{Matches: []semantic.Match{{Text: "existing piece", Score: 0.85}}})
	out, err := at.Filter(context.Background(), []model.RawCandidate{maraCandidate()})
	assert.NoError(t, err)
	assert.True(t, out[0].Passed)
	assert.Equal(t, 0.85, out[0].DuplicateScore)

	// A hair above: rejected.
	above := newEngine(mem, &MockSearcher{Matches: []semantic.Match{{Text: "existing piece", Score: 0.850001}}})
	out, err = above.Filter(context.Background(), []model.RawCandidate{maraCandidate()})
	assert.NoError(t, err)
	assert.False(t, out[0].Passed)
	assert.Contains(t, out[0].FilterReason, "near-duplicate")
	assert.Contains(t, out[0].FilterReason, "existing piece")
}

func TestFilterSearchFailureSkipsDuplicateCheck(t *testing.T) {
	mem := storetest.NewMemory()
	e := newEngine(mem, &MockSearcher{Err: errors.New("search service down")})

	out, err := e.Filter(context.Background(), []model.RawCandidate{maraCandidate()})
	assert.NoError(t, err)
	assert.True(t, out[0].Passed)
	assert.Zero(t, out[0].DuplicateScore)
}

func TestFilterExistingTitleRejects(t *testing.T) {
	mem := storetest.NewMemory()
	mem.Seed(store.CollContentProjects, store.Document{"title": "Mara in May", "stage": "brief"})
	e := newEngine(mem, &MockSearcher{})

	out, err := e.Filter(context.Background(), []model.RawCandidate{maraCandidate()})
	assert.NoError(t, err)
	assert.False(t, out[0].Passed)
	assert.Contains(t, out[0].FilterReason, "already exists")
}

func TestFilterExistingFilteredTitleDoesNotReject(t *testing.T) {
	mem := storetest.NewMemory()
	mem.Seed(store.CollContentProjects, store.Document{"title": "Mara in May", "stage": "filtered"})
	e := newEngine(mem, &MockSearcher{})

	out, err := e.Filter(context.Background(), []model.RawCandidate{maraCandidate()})
	assert.NoError(t, err)
	assert.True(t, out[0].Passed)
}

func TestFilterRecordsSoftDuplicateScoreOnPass(t *testing.T) {
	mem := storetest.NewMemory()
	e := newEngine(mem, &MockSearcher{Matches: []semantic.Match{{Text: "loosely related", Score: 0.61}}})

	out, err := e.Filter(context.Background(), []model.RawCandidate{maraCandidate()})
	assert.NoError(t, err)
	assert.True(t, out[0].Passed)
	assert.Equal(t, 0.61, out[0].DuplicateScore)
}

func TestFilterDirectiveLoadFailureIsFatal(t *testing.T) {
	mem := storetest.NewMemory()
	mem.Fail["findMany:directives"] = errors.New("store unavailable")
	e := newEngine(mem, &MockSearcher{})

	_, err := e.Filter(context.Background(), []model.RawCandidate{maraCandidate()})
	assert.Error(t, err)
}
