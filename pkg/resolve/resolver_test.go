package resolve

import (
	"path/filepath"
	"testing"

	"github.com/caseworks/entitygraph/pkg/common"
	"github.com/caseworks/entitygraph/pkg/graphstore"
	"github.com/caseworks/entitygraph/pkg/match"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	store := graphstore.New(filepath.Join(t.TempDir(), "graph.json"))
	return NewResolver(store, match.NewComparator(match.DefaultConfig()))
}

func TestResolveOrCreateMatchesExisting(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)

	created, err := r.ResolveOrCreate("Acme Corporation", common.EntityOrganization, "inv-1", "rec-1")
	if err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	if !created.Created || created.Matched {
		t.Fatalf("first resolve = %+v, want created", created)
	}
	if created.EntityID == "" {
		t.Fatal("created resolution carries no entity id")
	}

	matched, err := r.ResolveOrCreate("ACME Corp.", common.EntityOrganization, "inv-1", "rec-2")
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if !matched.Matched || matched.Created {
		t.Fatalf("second resolve = %+v, want matched", matched)
	}
	if matched.EntityID != created.EntityID {
		t.Fatalf("matched id %q, want %q", matched.EntityID, created.EntityID)
	}
	if matched.Score < common.ThresholdProbable {
		t.Fatalf("match score = %.3f, want >= %.2f", matched.Score, common.ThresholdProbable)
	}

	// Matching must not create a second entity.
	if got := len(r.Entities("inv-1")); got != 1 {
		t.Fatalf("investigation holds %d entities, want 1", got)
	}
}

func TestResolveOrCreateScopedByInvestigation(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)

	first, err := r.ResolveOrCreate("John Smith", common.EntityPerson, "inv-1", "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	second, err := r.ResolveOrCreate("John Smith", common.EntityPerson, "inv-2", "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !second.Created {
		t.Fatalf("same name in another investigation must create, got %+v", second)
	}
	if second.EntityID == first.EntityID {
		t.Fatal("entities from different investigations share an id")
	}
}

func TestResolveOrCreateBelowThresholdCreates(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)

	if _, err := r.ResolveOrCreate("John Smith", common.EntityPerson, "inv-1", ""); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	res, err := r.ResolveOrCreate("Mary Jones", common.EntityPerson, "inv-1", "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !res.Created {
		t.Fatalf("dissimilar name must create, got %+v", res)
	}
	if got := len(r.Entities("inv-1")); got != 2 {
		t.Fatalf("investigation holds %d entities, want 2", got)
	}
}

func TestResolveOrCreateTieBreakIsFirstSeen(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)

	// Two stored entities that score identically against the query.
	r.UpsertEntity("first", common.EntityPerson, "John Smith", map[string]any{"investigation_id": "inv-1"})
	r.UpsertEntity("second", common.EntityPerson, "John Smith", map[string]any{"investigation_id": "inv-1"})

	for i := 0; i < 5; i++ {
		res, err := r.ResolveOrCreate("John Smith", common.EntityPerson, "inv-1", "")
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if res.EntityID != "first" {
			t.Fatalf("run %d resolved to %q, want first-seen entity", i, res.EntityID)
		}
	}
}

func TestResolveOrCreateValidatesInput(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)

	if _, err := r.ResolveOrCreate("", common.EntityPerson, "inv-1", ""); err == nil {
		t.Fatal("blank name must be rejected")
	}
	if _, err := r.ResolveOrCreate("John Smith", common.EntityPerson, "   ", ""); err == nil {
		t.Fatal("blank investigation id must be rejected")
	}
}

func TestResolveOrCreateRecordsSource(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)

	res, err := r.ResolveOrCreate("John Smith", common.EntityPerson, "inv-1", "rec-42")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	entity, ok := r.Entity(res.EntityID)
	if !ok {
		t.Fatal("created entity not found")
	}
	if entity.InvestigationID() != "inv-1" {
		t.Fatalf("investigation_id = %q, want inv-1", entity.InvestigationID())
	}
	ids, ok := entity.Properties["source_record_ids"].([]string)
	if !ok || len(ids) != 1 || ids[0] != "rec-42" {
		t.Fatalf("source_record_ids = %v, want [rec-42]", entity.Properties["source_record_ids"])
	}
}

func TestAddRelationshipValidation(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)
	r.UpsertEntity("a", common.EntityPerson, "A", map[string]any{"investigation_id": "inv-1"})
	r.UpsertEntity("b", common.EntityPerson, "B", map[string]any{"investigation_id": "inv-1"})

	t.Run("accepts_valid_edge", func(t *testing.T) {
		result := r.AddRelationship("a", "b", common.RelTransactedWith, map[string]any{"amount": 100})
		if !result.Accepted {
			t.Fatalf("valid edge rejected: %+v", result)
		}
		if got := len(r.EntityRelationships("a")); got != 1 {
			t.Fatalf("entity a has %d edges, want 1", got)
		}
	})

	t.Run("rejects_unknown_type", func(t *testing.T) {
		result := r.AddRelationship("a", "b", common.RelType("BEST_FRIENDS"), nil)
		if result.Accepted || result.Reason == "" {
			t.Fatalf("unknown type not rejected: %+v", result)
		}
	})

	t.Run("rejects_missing_source", func(t *testing.T) {
		result := r.AddRelationship("ghost", "b", common.RelRelatesTo, nil)
		if result.Accepted || result.Reason == "" {
			t.Fatalf("missing source not rejected: %+v", result)
		}
	})

	t.Run("rejects_missing_target", func(t *testing.T) {
		result := r.AddRelationship("a", "ghost", common.RelRelatesTo, nil)
		if result.Accepted || result.Reason == "" {
			t.Fatalf("missing target not rejected: %+v", result)
		}
	})

	t.Run("rejections_do_not_write", func(t *testing.T) {
		before := len(r.Relationships("inv-1"))
		r.AddRelationship("a", "ghost", common.RelRelatesTo, nil)
		r.AddRelationship("a", "b", common.RelType("NOPE"), nil)
		if after := len(r.Relationships("inv-1")); after != before {
			t.Fatalf("rejected edges were written: %d -> %d", before, after)
		}
	})
}

func TestResolverFindPath(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)
	r.UpsertEntity("a", common.EntityPerson, "A", map[string]any{"investigation_id": "inv-1"})
	r.UpsertEntity("b", common.EntityPerson, "B", map[string]any{"investigation_id": "inv-1"})
	r.UpsertEntity("c", common.EntityOrganization, "C", map[string]any{"investigation_id": "inv-1"})
	r.AddRelationship("a", "b", common.RelRelatesTo, nil)
	r.AddRelationship("b", "c", common.RelAffiliatedWith, nil)

	path := r.FindPath("a", "c")
	if len(path) != 3 || path[0].ID != "a" || path[1].ID != "b" || path[2].ID != "c" {
		ids := make([]string, 0, len(path))
		for _, e := range path {
			ids = append(ids, e.ID)
		}
		t.Fatalf("FindPath(a, c) = %v, want [a b c]", ids)
	}
}
