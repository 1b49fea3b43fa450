package resolve

import (
	"fmt"
	"strings"
	"sync"

	"github.com/caseworks/entitygraph/internal/metrics"
	"github.com/caseworks/entitygraph/pkg/common"
	"github.com/caseworks/entitygraph/pkg/graphstore"
	"github.com/caseworks/entitygraph/pkg/logger"
	"github.com/caseworks/entitygraph/pkg/match"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Resolver ties the comparator to the graph store: it decides whether an
// incoming name refers to an entity the investigation already knows, or
// creates a new one. It also owns the store's mutex and is the sanctioned
// entry point for relationship creation, where the validation the raw
// store defers actually happens.
type Resolver struct {
	mu    sync.Mutex
	store *graphstore.Store
	cmp   *match.Comparator
}

// Resolution is the outcome of ResolveOrCreate. Exactly one of Matched
// and Created is true; Score and MatchType are populated only for
// matches.
type Resolution struct {
	Matched   bool             `json:"matched"`
	Created   bool             `json:"created"`
	EntityID  string           `json:"entity_id"`
	Score     float64          `json:"score,omitempty"`
	MatchType common.MatchType `json:"match_type,omitempty"`
}

// RelationshipResult is the structured outcome of a relationship request.
// Rejections carry a human-readable reason instead of an error.
type RelationshipResult struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// NewResolver creates a resolver over the given store and comparator.
func NewResolver(store *graphstore.Store, cmp *match.Comparator) *Resolver {
	return &Resolver{store: store, cmp: cmp}
}

// ResolveOrCreate compares the name against every entity in the
// investigation and returns a match when the best score reaches the
// probable tier (0.80). Otherwise it creates a new entity carrying the
// investigation id and the optional source record id.
//
// The scan is linear in the investigation's entity count and does not
// use blocking. Only a strictly greater score replaces the current best,
// so resolution is deterministic regardless of scan order.
func (r *Resolver) ResolveOrCreate(name string, entityType common.EntityType, investigationID, sourceRecordID string) (Resolution, error) {
	if strings.TrimSpace(name) == "" {
		return Resolution{}, fmt.Errorf("entity name must not be blank")
	}
	if strings.TrimSpace(investigationID) == "" {
		return Resolution{}, fmt.Errorf("investigation id must not be blank")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var best common.MatchResult
	bestID := ""
	for _, existing := range r.store.AllEntities(investigationID) {
		result := r.cmp.Compare(name, existing.Name, entityType)
		if result.Score > best.Score {
			best = result
			bestID = existing.ID
		}
	}

	if bestID != "" && best.Score >= common.ThresholdProbable {
		logger.Debug("[Resolve] Matched existing entity",
			"name", name, "entity_id", bestID, "score", best.Score, "match_type", best.MatchType)
		metrics.Default().IncResolutionTotal("matched")
		return Resolution{
			Matched:   true,
			EntityID:  bestID,
			Score:     best.Score,
			MatchType: best.MatchType,
		}, nil
	}

	id, err := gonanoid.New()
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to generate entity id: %w", err)
	}

	properties := map[string]any{
		"investigation_id": investigationID,
	}
	if sourceRecordID != "" {
		properties["source_record_ids"] = []string{sourceRecordID}
	}

	r.store.UpsertEntity(id, entityType, name, properties)
	logger.Debug("[Resolve] Created entity", "name", name, "entity_id", id)
	metrics.Default().IncResolutionTotal("created")
	return Resolution{Created: true, EntityID: id}, nil
}

// AddRelationship validates the relationship type against the closed set
// and checks that both endpoints exist before writing through the store's
// trusted API. Failures are structured rejections, not errors.
func (r *Resolver) AddRelationship(sourceID, targetID string, relType common.RelType, properties map[string]any) RelationshipResult {
	if !common.ValidRelType(relType) {
		return RelationshipResult{Reason: fmt.Sprintf("unknown relationship type %q", relType)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store.GetEntity(sourceID); !ok {
		return RelationshipResult{Reason: fmt.Sprintf("source entity %q does not exist", sourceID)}
	}
	if _, ok := r.store.GetEntity(targetID); !ok {
		return RelationshipResult{Reason: fmt.Sprintf("target entity %q does not exist", targetID)}
	}

	r.store.AddRelationship(sourceID, targetID, relType, properties)
	return RelationshipResult{Accepted: true}
}

// UpsertEntity writes an entity directly, for callers that manage their
// own ids. The write is serialized with resolution.
func (r *Resolver) UpsertEntity(id string, entityType common.EntityType, name string, properties map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store.UpsertEntity(id, entityType, name, properties)
}

// Entity returns one entity by id.
func (r *Resolver) Entity(id string) (common.Entity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.GetEntity(id)
}

// Entities returns the entities scoped to an investigation.
func (r *Resolver) Entities(investigationID string) []common.Entity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.AllEntities(investigationID)
}

// Relationships returns the edges fully inside an investigation.
func (r *Resolver) Relationships(investigationID string) []common.Relationship {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.AllRelationships(investigationID)
}

// EntityRelationships returns every edge touching an entity.
func (r *Resolver) EntityRelationships(id string) []common.Relationship {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.GetRelationships(id)
}

// FindPath returns the shortest undirected path between two entities.
func (r *Resolver) FindPath(sourceID, targetID string) []common.Entity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.FindPath(sourceID, targetID)
}

// Persist flushes the store's full state to its backing document.
func (r *Resolver) Persist() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Persist()
}
