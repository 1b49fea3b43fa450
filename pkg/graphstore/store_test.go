package graphstore

import (
	"testing"

	"github.com/caseworks/entitygraph/pkg/common"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(t.TempDir() + "/graph.json")
}

func upsertInvestigationEntity(s *Store, id, investigationID, name string) {
	s.UpsertEntity(id, common.EntityPerson, name, map[string]any{
		"investigation_id": investigationID,
	})
}

func TestUpsertEntityReplacesInPlace(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	upsertInvestigationEntity(s, "e1", "inv-1", "John Smith")
	s.UpsertEntity("e1", common.EntityOrganization, "Acme", map[string]any{
		"investigation_id": "inv-1",
		"country":          "DE",
	})

	e, ok := s.GetEntity("e1")
	if !ok {
		t.Fatal("entity e1 not found after upsert")
	}
	if e.Type != common.EntityOrganization || e.Name != "Acme" {
		t.Fatalf("entity not replaced: %+v", e)
	}
	if e.Properties["country"] != "DE" {
		t.Fatalf("properties not replaced: %+v", e.Properties)
	}
	if s.EntityCount() != 1 {
		t.Fatalf("EntityCount = %d, want 1", s.EntityCount())
	}
}

func TestGetEntityMissing(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	if _, ok := s.GetEntity("nope"); ok {
		t.Fatal("GetEntity returned ok for missing id")
	}
}

func TestAllEntitiesScopedAndOrdered(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	upsertInvestigationEntity(s, "e1", "inv-1", "Alpha")
	upsertInvestigationEntity(s, "e2", "inv-2", "Beta")
	upsertInvestigationEntity(s, "e3", "inv-1", "Gamma")
	// Re-upserting must not move e1 behind e3.
	upsertInvestigationEntity(s, "e1", "inv-1", "Alpha Renamed")

	got := s.AllEntities("inv-1")
	if len(got) != 2 {
		t.Fatalf("AllEntities returned %d entities, want 2", len(got))
	}
	if got[0].ID != "e1" || got[1].ID != "e3" {
		t.Fatalf("order = [%s %s], want [e1 e3]", got[0].ID, got[1].ID)
	}
	if got[0].Name != "Alpha Renamed" {
		t.Fatalf("name = %q, want updated name", got[0].Name)
	}

	if empty := s.AllEntities("inv-unknown"); len(empty) != 0 {
		t.Fatalf("unknown investigation returned %d entities", len(empty))
	}
}

func TestRelationshipsTouchingAnEntity(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	upsertInvestigationEntity(s, "a", "inv-1", "A")
	upsertInvestigationEntity(s, "b", "inv-1", "B")
	upsertInvestigationEntity(s, "c", "inv-1", "C")
	s.AddRelationship("a", "b", common.RelRelatesTo, nil)
	s.AddRelationship("c", "a", common.RelTransactedWith, nil)
	s.AddRelationship("b", "c", common.RelRelatesTo, nil)
	// Multigraph: a second edge of the same type between the same pair.
	s.AddRelationship("a", "b", common.RelRelatesTo, map[string]any{"note": "second"})

	got := s.GetRelationships("a")
	if len(got) != 3 {
		t.Fatalf("GetRelationships(a) returned %d edges, want 3", len(got))
	}
	if s.RelationshipCount() != 4 {
		t.Fatalf("RelationshipCount = %d, want 4", s.RelationshipCount())
	}
}

func TestAllRelationshipsRequiresBothEndpointsInScope(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	upsertInvestigationEntity(s, "a", "inv-1", "A")
	upsertInvestigationEntity(s, "b", "inv-1", "B")
	upsertInvestigationEntity(s, "x", "inv-2", "X")
	s.AddRelationship("a", "b", common.RelRelatesTo, nil)
	s.AddRelationship("a", "x", common.RelRelatesTo, nil)
	s.AddRelationship("a", "ghost", common.RelRelatesTo, nil)

	got := s.AllRelationships("inv-1")
	if len(got) != 1 {
		t.Fatalf("AllRelationships returned %d edges, want 1", len(got))
	}
	if got[0].SourceID != "a" || got[0].TargetID != "b" {
		t.Fatalf("unexpected edge %+v", got[0])
	}
}
