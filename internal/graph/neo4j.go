package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Neo4jDriver talks to a Neo4j or Memgraph instance over Bolt.
type Neo4jDriver struct {
	Driver neo4j.DriverWithContext
	log    *zap.Logger
}

func NewNeo4jDriver(uri, username, password string, log *zap.Logger) (*Neo4jDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(context.Background()); err != nil {
		return nil, err
	}

	log.Info("connected to graph store", zap.String("uri", uri))
	return &Neo4jDriver{Driver: driver, log: log}, nil
}

func (d *Neo4jDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *Neo4jDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

func (d *Neo4jDriver) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX ON :Itinerary(ref_id);",
		"CREATE INDEX ON :Destination(ref_id);",
		"CREATE INDEX ON :Property(ref_id);",
	}

	for _, q := range queries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			// Index may already exist.
			d.log.Warn("failed to create index", zap.String("query", q), zap.Error(err))
		}
	}

	return nil
}
