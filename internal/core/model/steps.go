package model

type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// StepResult is one entry of the per-run step trail. The trail is always
// attached to the result, including on fatal failure, so a caller can see
// exactly where a run stopped.
type StepResult struct {
	Step       int        `json:"step"`
	Name       string     `json:"name"`
	Status     StepStatus `json:"status"`
	DurationMs int64      `json:"duration_ms"`
	Detail     string     `json:"detail,omitempty"`
}

// CascadeResult is the produced surface of the five-step cascade.
type CascadeResult struct {
	ItineraryID     string                 `json:"itinerary_id"`
	DryRun          bool                   `json:"dry_run"`
	Steps           []StepResult           `json:"steps"`
	Entities        *ExtractedEntities     `json:"entities,omitempty"`
	Resolutions     []ResolutionResult     `json:"resolutions"`
	Relationships   []RelationshipAction   `json:"relationships"`
	ContentProjects []ContentProjectAction `json:"content_projects"`
	Error           string                 `json:"error,omitempty"`
}

// DecompositionResult is the produced surface of the three-step ideation run.
type DecompositionResult struct {
	ItineraryID        string       `json:"itinerary_id"`
	DryRun             bool         `json:"dry_run"`
	Steps              []StepResult `json:"steps"`
	TotalCandidates    int          `json:"total_candidates"`
	Passed             int          `json:"passed"`
	Filtered           int          `json:"filtered"`
	ProjectsCreated    []string     `json:"projects_created"`
	FilteredProjectIDs []string     `json:"filtered_project_ids"`
	Error              string       `json:"error,omitempty"`
}
