package semantic

import "context"

// Match is one ranked result of a similarity search. Score is in [0,1].
type Match struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type Options struct {
	TopK      int
	MinScore  float64
	ExcludeID string
}

// Searcher returns matches sorted by descending score.
type Searcher interface {
	Search(ctx context.Context, text string, opts Options) ([]Match, error)
}
