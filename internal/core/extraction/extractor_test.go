package extraction

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atlastrail/cascade/internal/core/model"
)

func kenyaItinerary() *model.Itinerary {
	return &model.Itinerary{
		ID: "itin-1",
		Overview: model.Overview{
			Countries: []model.OverviewCountry{{Country: "Kenya"}},
		},
		Days: []model.Day{
			{
				DayNumber: 1,
				Segments: []model.Segment{
					{
						BlockType:         "stay",
						AccommodationName: "Angama Mara",
						Location:          "Masai Mara",
						Country:           "Kenya",
					},
					{
						BlockType: "activity",
						Title:     "Check-in",
					},
				},
			},
		},
	}
}

func TestExtractKenyaScenario(t *testing.T) {
	entities := Extract(kenyaItinerary())

	assert.Len(t, entities.Countries, 1)
	assert.Equal(t, "Kenya", entities.Countries[0].Name)
	assert.Len(t, entities.Locations, 1)
	assert.Equal(t, "Masai Mara", entities.Locations[0].Name)
	assert.Equal(t, "Kenya", entities.Locations[0].CountryName)
	assert.Len(t, entities.Properties, 1)
	assert.Equal(t, "Angama Mara", entities.Properties[0].Name)
	// Check-in is a generic operational activity and is filtered out.
	assert.Empty(t, entities.Activities)
}

func TestExtractIsIdempotent(t *testing.T) {
	it := kenyaItinerary()
	first := Extract(it)
	second := Extract(it)
	assert.True(t, reflect.DeepEqual(first, second))
}

func TestExtractDedupesFirstOccurrenceWins(t *testing.T) {
	it := &model.Itinerary{
		Overview: model.Overview{Countries: []model.OverviewCountry{{Country: "Kenya"}}},
		Days: []model.Day{
			{Segments: []model.Segment{
				{BlockType: "stay", Location: "Masai Mara", Country: "Kenya"},
				{BlockType: "stay", Location: " masai mara ", Country: "Kenya"},
			}},
		},
	}
	entities := Extract(it)
	assert.Len(t, entities.Locations, 1)
	assert.Equal(t, "Masai Mara", entities.Locations[0].Name)
}

func TestExtractRemovesCountryShadowedLocations(t *testing.T) {
	it := &model.Itinerary{
		Overview: model.Overview{Countries: []model.OverviewCountry{{Country: "Kenya"}}},
		Days: []model.Day{
			{Location: "Kenya", Segments: []model.Segment{
				{BlockType: "stay"}, // location falls back to the day's
				{BlockType: "stay", Location: "Amboseli"},
			}},
		},
	}
	entities := Extract(it)
	assert.Len(t, entities.Locations, 1)
	assert.Equal(t, "Amboseli", entities.Locations[0].Name)
}

func TestExtractCountryFallsBackToOverview(t *testing.T) {
	it := &model.Itinerary{
		Overview: model.Overview{Countries: []model.OverviewCountry{{Country: "Botswana"}, {Country: "Zambia"}}},
		Days: []model.Day{
			{Segments: []model.Segment{
				{BlockType: "stay", Location: "Okavango Delta"},
			}},
		},
	}
	entities := Extract(it)
	assert.Equal(t, "Botswana", entities.Locations[0].CountryName)
}

func TestExtractIgnoresUnknownBlockTypes(t *testing.T) {
	it := &model.Itinerary{
		Days: []model.Day{
			{Segments: []model.Segment{
				{BlockType: "voucher", Title: "Gorilla Trek Permit"},
				{BlockType: "transfer"},
				{BlockType: "activity", Title: "Night Game Drive"},
			}},
		},
	}
	entities := Extract(it)
	assert.Equal(t, []string{"Night Game Drive"}, entities.Activities)
}

func TestExtractKeepsPropertyRefID(t *testing.T) {
	it := &model.Itinerary{
		Days: []model.Day{
			{Segments: []model.Segment{
				{
					BlockType:         "stay",
					AccommodationName: "Sossusvlei Lodge",
					Accommodation:     map[string]interface{}{"id": float64(912)},
				},
			}},
		},
	}
	entities := Extract(it)
	assert.Equal(t, "912", entities.Properties[0].ExistingRefID)
}

func TestExtractActivitiesDedupedByRawTitle(t *testing.T) {
	it := &model.Itinerary{
		Days: []model.Day{
			{Segments: []model.Segment{
				{BlockType: "activity", Title: "Game Drive"},
				{BlockType: "activity", Title: "Game Drive"},
				{BlockType: "activity", Title: "game drive"},
			}},
		},
	}
	entities := Extract(it)
	// Raw-title set: the lowercase variant is a distinct member.
	assert.Equal(t, []string{"Game Drive", "game drive"}, entities.Activities)
}
