package model

import "time"

// RawCandidate is a proposed content idea as the language model emits it.
// Candidates are immutable once generated; filtering produces a derived copy.
type RawCandidate struct {
	Title              string   `json:"title"`
	ContentType        string   `json:"content_type"`
	BriefSummary       string   `json:"brief_summary"`
	TargetDestinations []string `json:"target_destinations,omitempty"`
	TargetProperties   []string `json:"target_properties,omitempty"`
	TargetSpecies      []string `json:"target_species,omitempty"`
	Freshness          string   `json:"freshness,omitempty"`
}

// FilteredCandidate extends a RawCandidate with the filter verdict. The
// DuplicateScore is the top similarity score seen even when the candidate
// passed, as a soft duplicate-risk signal for downstream consumers.
type FilteredCandidate struct {
	RawCandidate
	Passed            bool     `json:"passed"`
	FilterReason      string   `json:"filter_reason,omitempty"`
	MatchedDirectives []string `json:"matched_directives,omitempty"`
	DuplicateScore    float64  `json:"duplicate_score"`
}

// Directive is an active editorial policy rule. A dimension with no tags is
// undeclared and ignored during matching; a directive filters a candidate
// only when every declared dimension matches.
type Directive struct {
	ID              string      `json:"id"`
	Rule            string      `json:"rule"`
	Active          bool        `json:"active"`
	DestinationTags []string    `json:"destination_tags,omitempty"`
	ContentTypeTags []string    `json:"content_type_tags,omitempty"`
	TopicTags       []string    `json:"topic_tags,omitempty"`
	RecentHits      []time.Time `json:"recent_hits,omitempty"` // rolling 30-day filter-hit window
}
