package graphstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caseworks/entitygraph/pkg/common"
	"github.com/caseworks/entitygraph/pkg/logger"
)

// persistedGraph is the durable document format: two ordered collections
// of nodes and edges. This layout is the compatibility contract between
// store instances across process restarts and must remain stable.
type persistedGraph struct {
	Nodes []common.Entity       `json:"nodes"`
	Edges []common.Relationship `json:"edges"`
}

// Persist serializes the full node and edge set to the backing document.
// The write goes through a temp file and rename so a crash mid-flush
// leaves the previous document intact.
func (s *Store) Persist() error {
	doc := persistedGraph{
		Nodes: make([]common.Entity, 0, len(s.order)),
		Edges: s.edges,
	}
	for _, id := range s.order {
		doc.Nodes = append(doc.Nodes, s.entities[id])
	}
	if doc.Edges == nil {
		doc.Edges = []common.Relationship{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode graph document: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create graph directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write graph document: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace graph document: %w", err)
	}

	logger.Debug("[Graph] Persisted", "path", s.path, "entities", len(doc.Nodes), "edges", len(doc.Edges))
	return nil
}

// Load replaces the in-memory graph with the persisted document. A
// missing file is an empty graph (first boot, no prior data). A document
// that cannot be read or decoded is also recovered as an empty graph so a
// bad file never takes the service down, but that case is reported with
// degraded=true and a warning, since it can mask real data loss.
func (s *Store) Load() (degraded bool, err error) {
	s.entities = make(map[string]common.Entity)
	s.order = nil
	s.edges = nil

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("[Graph] No persisted document, starting empty", "path", s.path)
			return false, nil
		}
		logger.Warn("[Graph] Unreadable persisted document, starting empty", "path", s.path, "err", err)
		return true, nil
	}

	var doc persistedGraph
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn("[Graph] Corrupt persisted document, starting empty", "path", s.path, "err", err)
		return true, nil
	}

	for _, node := range doc.Nodes {
		s.UpsertEntity(node.ID, node.Type, node.Name, node.Properties)
	}
	s.edges = doc.Edges

	logger.Debug("[Graph] Loaded", "path", s.path, "entities", len(s.entities), "edges", len(s.edges))
	return false, nil
}
