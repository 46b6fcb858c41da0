package model

type ResolutionAction string

const (
	ActionFound   ResolutionAction = "found"
	ActionCreated ResolutionAction = "created"
	ActionSkipped ResolutionAction = "skipped"
)

type EntityType string

const (
	EntityCountry     EntityType = "country"
	EntityDestination EntityType = "destination"
	EntityProperty    EntityType = "property"
)

// ResolutionResult is the outcome of resolving one entity against the content
// store. Produced once per entity per run and never mutated afterwards.
type ResolutionResult struct {
	EntityName string           `json:"entity_name"`
	EntityType EntityType       `json:"entity_type"`
	Action     ResolutionAction `json:"action"`
	ResolvedID string           `json:"resolved_id,omitempty"`
	Note       string           `json:"note,omitempty"`
}

// RelationshipAction records one graph edge considered by the relationship
// manager: confirmed, created, skipped (dry run), or failed.
type RelationshipAction struct {
	Relation string `json:"relation"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Action   string `json:"action"`
	Note     string `json:"note,omitempty"`
}

const (
	RelExisted = "existed"
	RelCreated = "created"
	RelSkipped = "skipped"
	RelFailed  = "failed"
)

// ContentProjectAction records the idempotent ensure of one content project.
type ContentProjectAction struct {
	TargetCollection string `json:"target_collection"`
	TargetRecordID   string `json:"target_record_id"`
	Action           string `json:"action"` // created | already_exists
	ProjectID        string `json:"project_id,omitempty"`
}

const (
	ProjectCreated       = "created"
	ProjectAlreadyExists = "already_exists"
)
