package screen

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/caseworks/entitygraph/internal/metrics"
	"github.com/caseworks/entitygraph/pkg/common"
	"github.com/caseworks/entitygraph/pkg/logger"
	"github.com/caseworks/entitygraph/pkg/match"
)

// Loader supplies the screening reference list. Acquisition and refresh
// of the underlying data (e.g. a sanctions list download) are external;
// the screener only consumes the loaded collection.
type Loader interface {
	Load() ([]common.ReferenceEntry, error)
}

// Screener checks names against a reference list through the comparator.
// The list is loaded lazily on first use and cached until Reload is
// called explicitly; the cache never auto-expires. The first-load guard
// makes concurrent initial calls safe, and cached reads are shared.
type Screener struct {
	cmp    *match.Comparator
	loader Loader

	mu      sync.Mutex
	loaded  bool
	entries []common.ReferenceEntry
}

// NewScreener creates a screener over the given comparator and loader.
// The cache is owned by this instance, not by package state, so lifetime
// and invalidation stay explicit and testable.
func NewScreener(cmp *match.Comparator, loader Loader) *Screener {
	return &Screener{cmp: cmp, loader: loader}
}

// Screen compares the query name against every reference entry's primary
// name and aliases, keeps entries at or above the possible tier (0.60),
// and returns the top hits sorted by score descending. A blank query
// returns an empty list without touching the cache.
func (s *Screener) Screen(name string, topN int) ([]common.ScreeningHit, error) {
	if strings.TrimSpace(name) == "" {
		return []common.ScreeningHit{}, nil
	}

	entries, err := s.cachedEntries()
	if err != nil {
		return nil, err
	}

	hits := make([]common.ScreeningHit, 0)
	for _, entry := range entries {
		hit, ok := s.screenEntry(name, entry)
		if ok {
			hits = append(hits, hit)
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].MatchScore > hits[j].MatchScore
	})
	if topN > 0 && len(hits) > topN {
		hits = hits[:topN]
	}

	metrics.Default().IncScreeningTotal(len(hits))
	return hits, nil
}

// Reload invalidates the cache and fetches the reference list again.
func (s *Screener) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to reload reference list: %w", err)
	}
	s.entries = entries
	s.loaded = true
	logger.Info("[Screen] Reference list reloaded", "entries", len(entries))
	return nil
}

func (s *Screener) cachedEntries() ([]common.ReferenceEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		entries, err := s.loader.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load reference list: %w", err)
		}
		s.entries = entries
		s.loaded = true
		logger.Info("[Screen] Reference list loaded", "entries", len(entries))
	}
	return s.entries, nil
}

// screenEntry scores one reference entry: the best score across the
// primary name and all aliases wins, remembering which alias produced it.
func (s *Screener) screenEntry(name string, entry common.ReferenceEntry) (common.ScreeningHit, bool) {
	entityType := entryEntityType(entry.EntryType)

	best := s.cmp.Compare(name, entry.Name, entityType)
	matchedAlias := ""
	for _, alias := range entry.Aliases {
		result := s.cmp.Compare(name, alias, entityType)
		if result.Score > best.Score {
			best = result
			matchedAlias = alias
		}
	}

	if best.Score < common.ThresholdPossible {
		return common.ScreeningHit{}, false
	}

	return common.ScreeningHit{
		ReferenceID:   entry.UID,
		ReferenceName: entry.Name,
		MatchScore:    best.Score,
		Confidence:    common.ConfidenceForScore(best.Score),
		MatchedAlias:  matchedAlias,
		EntryType:     entry.EntryType,
		Program:       entry.Program,
	}, true
}

// entryEntityType maps a reference entry's type to a comparator hint.
func entryEntityType(entryType string) common.EntityType {
	switch strings.ToLower(strings.TrimSpace(entryType)) {
	case "individual":
		return common.EntityPerson
	case "entity":
		return common.EntityOrganization
	default:
		return common.EntityUnknown
	}
}
