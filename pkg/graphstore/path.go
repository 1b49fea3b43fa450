package graphstore

import (
	"github.com/caseworks/entitygraph/pkg/common"
)

// FindPath computes the shortest path between two entities via
// breadth-first search, treating every edge as undirected: relationship
// direction carries meaning for the investigation, not for connectivity.
// The result lists the entities along the path, endpoints included. An
// absent id, an unreachable target, or source == target yields an empty
// slice, never an error.
func (s *Store) FindPath(sourceID, targetID string) []common.Entity {
	if sourceID == targetID {
		return []common.Entity{}
	}
	if _, ok := s.entities[sourceID]; !ok {
		return []common.Entity{}
	}
	if _, ok := s.entities[targetID]; !ok {
		return []common.Entity{}
	}

	neighbors := make(map[string][]string)
	for _, edge := range s.edges {
		neighbors[edge.SourceID] = append(neighbors[edge.SourceID], edge.TargetID)
		neighbors[edge.TargetID] = append(neighbors[edge.TargetID], edge.SourceID)
	}

	parent := map[string]string{sourceID: ""}
	queue := []string{sourceID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == targetID {
			return s.reconstructPath(parent, targetID)
		}

		for _, next := range neighbors[current] {
			if _, visited := parent[next]; visited {
				continue
			}
			// Dangling edges may point at ids that were never upserted;
			// those hops lead nowhere and are skipped.
			if _, ok := s.entities[next]; !ok {
				continue
			}
			parent[next] = current
			queue = append(queue, next)
		}
	}

	return []common.Entity{}
}

func (s *Store) reconstructPath(parent map[string]string, targetID string) []common.Entity {
	var reversed []string
	for id := targetID; id != ""; id = parent[id] {
		reversed = append(reversed, id)
	}

	path := make([]common.Entity, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, s.entities[reversed[i]])
	}
	return path
}
