package relate

import (
	"context"
	"errors"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
)

var errDriver = errors.New("bolt connection reset")

// MockDriver records executed queries and answers existence checks from a
// scripted edge set keyed "source->target".
type MockDriver struct {
	Queries       []string
	Params        []map[string]interface{}
	ExistingEdges map[string]bool
	Err           error
	FailOnCreate  bool
}

func countResult(n int64) neo4j.EagerResult {
	return neo4j.EagerResult{
		Records: []*db.Record{
			{Keys: []string{"count"}, Values: []interface{}{n}},
		},
	}
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Queries = append(m.Queries, query)
	m.Params = append(m.Params, params)

	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}

	if strings.Contains(query, "count(r)") {
		key, _ := params["source"].(string)
		target, _ := params["target"].(string)
		if m.ExistingEdges[key+"->"+target] {
			return countResult(1), nil
		}
		return countResult(0), nil
	}

	if m.FailOnCreate {
		return neo4j.EagerResult{}, errDriver
	}
	return neo4j.EagerResult{}, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error { return nil }

func (m *MockDriver) Close(ctx context.Context) error { return nil }

// CreateCount is the number of non-check queries executed.
func (m *MockDriver) CreateCount() int {
	n := 0
	for _, q := range m.Queries {
		if !strings.Contains(q, "count(r)") {
			n++
		}
	}
	return n
}
