package filter

import (
	"context"

	"github.com/atlastrail/cascade/internal/semantic"
)

type MockSearcher struct {
	Matches []semantic.Match
	Err     error
	Queries []string
}

func (m *MockSearcher) Search(ctx context.Context, text string, opts semantic.Options) ([]semantic.Match, error) {
	m.Queries = append(m.Queries, text)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Matches, nil
}
