package graphstore

import (
	"github.com/caseworks/entitygraph/pkg/common"
)

// Store is a mutable, directed, multi-edge identity graph held in memory
// and persisted as a single JSON document. Entities are scoped to an
// investigation through their "investigation_id" property.
//
// The store is a trusted-caller API: AddRelationship does not validate
// that its endpoints exist or that the relationship type is allowed.
// That policy lives one layer up, in the resolver, which is the only
// sanctioned entry point for relationship creation. A dangling edge
// written through the raw API is tolerated and never surfaced by
// entity-scoped queries.
//
// The store does not synchronize concurrent mutation; callers serialize
// access (the resolver and the HTTP layer share one mutex per store).
type Store struct {
	path string

	entities map[string]common.Entity
	// order preserves first-insertion order so scans and persisted
	// documents are deterministic. Upserts keep the original position.
	order []string
	edges []common.Relationship
}

// New creates an empty store backed by the document at path. Call Load to
// read prior state and Persist to flush; there is no incremental
// durability in between.
func New(path string) *Store {
	return &Store{
		path:     path,
		entities: make(map[string]common.Entity),
	}
}

// UpsertEntity inserts the entity if absent, otherwise fully replaces its
// type, name, and properties. Both paths succeed; last write wins.
func (s *Store) UpsertEntity(id string, entityType common.EntityType, name string, properties map[string]any) {
	if properties == nil {
		properties = make(map[string]any)
	}
	if _, exists := s.entities[id]; !exists {
		s.order = append(s.order, id)
	}
	s.entities[id] = common.Entity{
		ID:         id,
		Type:       entityType,
		Name:       name,
		Properties: properties,
	}
}

// GetEntity returns the entity with the given id, if present.
func (s *Store) GetEntity(id string) (common.Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// AddRelationship appends a directed edge. Endpoint existence and type
// membership are the caller's contract, not re-checked here.
func (s *Store) AddRelationship(sourceID, targetID string, relType common.RelType, properties map[string]any) {
	if properties == nil {
		properties = make(map[string]any)
	}
	s.edges = append(s.edges, common.Relationship{
		SourceID:   sourceID,
		TargetID:   targetID,
		Type:       relType,
		Properties: properties,
	})
}

// GetRelationships returns every edge touching the entity, outgoing and
// incoming, unfiltered by investigation.
func (s *Store) GetRelationships(id string) []common.Relationship {
	result := make([]common.Relationship, 0)
	for _, edge := range s.edges {
		if edge.SourceID == id || edge.TargetID == id {
			result = append(result, edge)
		}
	}
	return result
}

// AllEntities returns the entities scoped to an investigation, in
// insertion order. This is a linear scan over the whole store.
func (s *Store) AllEntities(investigationID string) []common.Entity {
	result := make([]common.Entity, 0)
	for _, id := range s.order {
		e := s.entities[id]
		if e.InvestigationID() == investigationID {
			result = append(result, e)
		}
	}
	return result
}

// AllRelationships returns the edges whose endpoints both belong to the
// investigation. An edge with one endpoint outside the scope is excluded
// even if its own properties reference the investigation.
func (s *Store) AllRelationships(investigationID string) []common.Relationship {
	result := make([]common.Relationship, 0)
	for _, edge := range s.edges {
		src, okSrc := s.entities[edge.SourceID]
		tgt, okTgt := s.entities[edge.TargetID]
		if !okSrc || !okTgt {
			continue
		}
		if src.InvestigationID() == investigationID && tgt.InvestigationID() == investigationID {
			result = append(result, edge)
		}
	}
	return result
}

// EntityCount returns the total number of entities across all
// investigations.
func (s *Store) EntityCount() int {
	return len(s.entities)
}

// RelationshipCount returns the total number of edges.
func (s *Store) RelationshipCount() int {
	return len(s.edges)
}
