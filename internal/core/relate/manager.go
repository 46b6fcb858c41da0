package relate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atlastrail/cascade/internal/core/model"
	"github.com/atlastrail/cascade/internal/graph"
)

// Manager establishes and verifies the graph edges that cross-link an
// itinerary with its resolved destinations and properties. Every edge is an
// idempotent check-then-create; a single edge's failure is recorded on its
// action and never aborts the batch.
type Manager struct {
	Graph graph.Driver
	Log   *zap.Logger
}

func NewManager(d graph.Driver, log *zap.Logger) *Manager {
	return &Manager{Graph: d, Log: log}
}

type edgeSpec struct {
	relation    string
	existsQuery string
	createQuery string
	sourceID    string
	targetID    string
}

// Manage considers one edge per (itinerary, destination), (itinerary,
// property), and (property, destination) pair and returns one action per
// edge considered.
func (m *Manager) Manage(ctx context.Context, itineraryID string, destinationIDs, propertyIDs []string, propertyToDestination map[string]string, dryRun bool) []model.RelationshipAction {
	var specs []edgeSpec

	for _, destID := range destinationIDs {
		specs = append(specs, edgeSpec{
			relation:    "VISITS",
			existsQuery: graph.ItineraryVisitsExistsQuery,
			createQuery: graph.ItineraryVisitsCreateQuery,
			sourceID:    itineraryID,
			targetID:    destID,
		})
	}
	for _, propID := range propertyIDs {
		specs = append(specs, edgeSpec{
			relation:    "STAYS_AT",
			existsQuery: graph.ItineraryStaysAtExistsQuery,
			createQuery: graph.ItineraryStaysAtCreateQuery,
			sourceID:    itineraryID,
			targetID:    propID,
		})
	}
	for propID, destID := range propertyToDestination {
		if propID == "" || destID == "" {
			continue
		}
		specs = append(specs, edgeSpec{
			relation:    "LOCATED_IN",
			existsQuery: graph.PropertyLocatedInExistsQuery,
			createQuery: graph.PropertyLocatedInCreateQuery,
			sourceID:    propID,
			targetID:    destID,
		})
	}

	actions := make([]model.RelationshipAction, 0, len(specs))
	for _, spec := range specs {
		actions = append(actions, m.ensureEdge(ctx, spec, dryRun))
	}
	return actions
}

func (m *Manager) ensureEdge(ctx context.Context, spec edgeSpec, dryRun bool) model.RelationshipAction {
	action := model.RelationshipAction{
		Relation: spec.relation,
		SourceID: spec.sourceID,
		TargetID: spec.targetID,
	}

	exists, err := m.edgeExists(ctx, spec)
	if err != nil {
		m.Log.Warn("edge existence check failed",
			zap.String("relation", spec.relation),
			zap.String("source", spec.sourceID),
			zap.String("target", spec.targetID),
			zap.Error(err))
		action.Action = model.RelFailed
		action.Note = err.Error()
		return action
	}

	if exists {
		action.Action = model.RelExisted
		return action
	}

	if dryRun {
		action.Action = model.RelSkipped
		action.Note = "dry run: would create edge"
		return action
	}

	params := map[string]interface{}{
		"source":     spec.sourceID,
		"target":     spec.targetID,
		"uuid":       uuid.New().String(),
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := m.Graph.ExecuteQuery(ctx, spec.createQuery, params); err != nil {
		m.Log.Warn("edge create failed",
			zap.String("relation", spec.relation),
			zap.String("source", spec.sourceID),
			zap.String("target", spec.targetID),
			zap.Error(err))
		action.Action = model.RelFailed
		action.Note = err.Error()
		return action
	}

	action.Action = model.RelCreated
	return action
}

func (m *Manager) edgeExists(ctx context.Context, spec edgeSpec) (bool, error) {
	res, err := m.Graph.ExecuteQuery(ctx, spec.existsQuery, map[string]interface{}{
		"source": spec.sourceID,
		"target": spec.targetID,
	})
	if err != nil {
		return false, err
	}
	if len(res.Records) == 0 {
		return false, nil
	}
	count, _ := res.Records[0].Get("count")
	n, _ := count.(int64)
	return n > 0, nil
}
