package model

// Entities are extracted, not-yet-resolved facts. They are value objects
// deduplicated by NormalizedKey within a single extraction run and carry no
// identity beyond that run.

type CountryEntity struct {
	Name          string `json:"name"`
	NormalizedKey string `json:"normalized_key"`
}

type LocationEntity struct {
	Name          string `json:"name"`
	NormalizedKey string `json:"normalized_key"`
	CountryName   string `json:"country_name,omitempty"`
}

type PropertyEntity struct {
	Name          string `json:"name"`
	NormalizedKey string `json:"normalized_key"`
	LocationName  string `json:"location_name,omitempty"`
	CountryName   string `json:"country_name,omitempty"`
	ExistingRefID string `json:"existing_ref_id,omitempty"`
}

// ExtractedEntities is the full output of one extraction run.
type ExtractedEntities struct {
	Countries  []CountryEntity  `json:"countries"`
	Locations  []LocationEntity `json:"locations"`
	Properties []PropertyEntity `json:"properties"`
	Activities []string         `json:"activities"`
}
