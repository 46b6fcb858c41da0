package semantic

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/atlastrail/cascade/internal/llm"
)

// VectorSearcher embeds the query text and runs an Atlas $vectorSearch
// aggregation over the content embedding index.
type VectorSearcher struct {
	Embedder   llm.EmbedderClient
	Collection *mongo.Collection
	Index      string
	log        *zap.Logger
}

func NewVectorSearcher(embedder llm.EmbedderClient, collection *mongo.Collection, index string, log *zap.Logger) *VectorSearcher {
	return &VectorSearcher{
		Embedder:   embedder,
		Collection: collection,
		Index:      index,
		log:        log,
	}
}

func (s *VectorSearcher) Search(ctx context.Context, text string, opts Options) ([]Match, error) {
	if s.Embedder == nil {
		return nil, fmt.Errorf("no embedder configured for similarity search")
	}

	vec, err := s.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}

	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: s.Index},
			{Key: "path", Value: "embedding"},
			{Key: "queryVector", Value: vec},
			{Key: "numCandidates", Value: topK * 10},
			{Key: "limit", Value: topK},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "text", Value: 1},
			{Key: "metadata", Value: 1},
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}

	cur, err := s.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer cur.Close(ctx)

	var matches []Match
	for cur.Next(ctx) {
		var row struct {
			ID       interface{}            `bson:"_id"`
			Text     string                 `bson:"text"`
			Score    float64                `bson:"score"`
			Metadata map[string]interface{} `bson:"metadata"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode match: %w", err)
		}
		var id string
		switch v := row.ID.(type) {
		case primitive.ObjectID:
			id = v.Hex()
		case string:
			id = v
		default:
			id = fmt.Sprintf("%v", v)
		}
		if opts.ExcludeID != "" && id == opts.ExcludeID {
			continue
		}
		if row.Score < opts.MinScore {
			continue
		}
		matches = append(matches, Match{
			ID:       id,
			Text:     row.Text,
			Score:    row.Score,
			Metadata: row.Metadata,
		})
	}
	return matches, cur.Err()
}
