package extraction

import (
	"strings"

	"github.com/atlastrail/cascade/internal/core/common"
	"github.com/atlastrail/cascade/internal/core/model"
)

// genericActivities are operational itinerary lines that never become
// content entities. Matched case-insensitively against the trimmed title.
var genericActivities = map[string]struct{}{
	"arrival":           {},
	"arrive":            {},
	"departure":         {},
	"depart":            {},
	"transfer":          {},
	"airport transfer":  {},
	"road transfer":     {},
	"boat transfer":     {},
	"check-in":          {},
	"check in":          {},
	"check-out":         {},
	"check out":         {},
	"checkout":          {},
	"free day":          {},
	"day at leisure":    {},
	"at leisure":        {},
	"leisure day":       {},
	"rest day":          {},
	"breakfast":         {},
	"lunch":             {},
	"dinner":            {},
	"flight":            {},
	"internal flight":   {},
	"scheduled flight":  {},
	"meet and greet":    {},
	"orientation":       {},
	"welcome briefing":  {},
	"hotel day room":    {},
	"overnight":         {},
	"own arrangements":  {},
	"travel day":        {},
	"drive to next camp": {},
}

// Extract walks an itinerary document once and produces the deduplicated
// candidate entity sets. It is a pure function of its input: no I/O, no
// errors — absent optional fields are treated as empty.
func Extract(it *model.Itinerary) *model.ExtractedEntities {
	out := &model.ExtractedEntities{
		Countries:  []model.CountryEntity{},
		Locations:  []model.LocationEntity{},
		Properties: []model.PropertyEntity{},
		Activities: []string{},
	}
	if it == nil {
		return out
	}

	countrySeen := map[string]struct{}{}
	locationSeen := map[string]struct{}{}
	propertySeen := map[string]struct{}{}
	activitySeen := map[string]struct{}{}

	addCountry := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := common.Normalize(name)
		if _, dup := countrySeen[key]; dup {
			return
		}
		countrySeen[key] = struct{}{}
		out.Countries = append(out.Countries, model.CountryEntity{Name: name, NormalizedKey: key})
	}

	// Seed the country set from the overview.
	firstCountry := ""
	for _, oc := range it.Overview.Countries {
		name := strings.TrimSpace(oc.Country)
		if name == "" {
			continue
		}
		if firstCountry == "" {
			firstCountry = name
		}
		addCountry(name)
	}

	for _, day := range it.Days {
		for _, seg := range day.Segments {
			switch seg.Kind() {
			case model.SegmentStay:
				country := strings.TrimSpace(seg.Country)
				if country == "" {
					country = firstCountry
				}
				addCountry(country)

				location := strings.TrimSpace(seg.Location)
				if location == "" {
					location = strings.TrimSpace(day.Location)
				}
				if location != "" {
					key := common.Normalize(location)
					if _, dup := locationSeen[key]; !dup {
						locationSeen[key] = struct{}{}
						out.Locations = append(out.Locations, model.LocationEntity{
							Name:          location,
							NormalizedKey: key,
							CountryName:   country,
						})
					}
				}

				property := strings.TrimSpace(seg.AccommodationName)
				if property != "" {
					key := common.Normalize(property)
					if _, dup := propertySeen[key]; !dup {
						propertySeen[key] = struct{}{}
						out.Properties = append(out.Properties, model.PropertyEntity{
							Name:          property,
							NormalizedKey: key,
							LocationName:  location,
							CountryName:   country,
							ExistingRefID: common.RefID(seg.Accommodation),
						})
					}
				}

			case model.SegmentActivity:
				title := strings.TrimSpace(seg.Title)
				if title == "" || isGenericActivity(title) {
					continue
				}
				if _, dup := activitySeen[title]; dup {
					continue
				}
				activitySeen[title] = struct{}{}
				out.Activities = append(out.Activities, title)

			case model.SegmentTransfer:
				// no content entities in transfers

			default:
				// unknown block types are ignored, never an error
			}
		}
	}

	// An itinerary may list a country name as a day's location; it must
	// resolve as a country, not a destination, or the same place would get
	// two records.
	locations := out.Locations[:0]
	for _, loc := range out.Locations {
		if _, isCountry := countrySeen[loc.NormalizedKey]; isCountry {
			continue
		}
		locations = append(locations, loc)
	}
	out.Locations = locations

	return out
}

func isGenericActivity(title string) bool {
	_, generic := genericActivities[common.Normalize(title)]
	return generic
}
