package match

import (
	"context"
	"runtime"
	"sort"
	"strings"

	"github.com/caseworks/entitygraph/internal/metrics"
	"github.com/caseworks/entitygraph/pkg/common"
	"github.com/caseworks/entitygraph/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// BlockingMinRecords is the record count below which blocking is never
// applied, even when requested. At small scale the false-negative risk of
// blocking outweighs the savings, so all pairs are compared.
const BlockingMinRecords = 1000

// Record is one input row for batch deduplication. Records without a
// usable ID are discarded before pairing.
type Record struct {
	ID         string            `json:"id"`
	EntityType common.EntityType `json:"entity_type,omitempty"`
	Fields     map[string]string `json:"fields"`
}

// BatchOptions controls a batch deduplication pass. The first entry of
// MatchFields is the primary field that drives pair scoring.
type BatchOptions struct {
	MatchFields []string `json:"match_fields"`
	Threshold   float64  `json:"threshold"`
	UseBlocking bool     `json:"use_blocking"`
	// Parallelism bounds concurrent pair scoring; <=0 uses GOMAXPROCS.
	Parallelism int `json:"parallelism,omitempty"`
}

type candidatePair struct {
	a, b int
}

// BatchResolve compares every candidate record pair and returns the pairs
// scoring at or above the threshold, sorted by score descending. Fewer
// than two usable records or an empty match-field list yields an empty
// result with zero comparisons. The only error returned is ctx's, when
// the caller's deadline expires mid-run.
func (c *Comparator) BatchResolve(ctx context.Context, records []Record, opts BatchOptions) (common.BatchMatchResult, error) {
	done := metrics.TimeBatch()

	usable := make([]Record, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.ID) != "" {
			usable = append(usable, r)
		}
	}

	if len(usable) < 2 || len(opts.MatchFields) == 0 {
		done(0, 0)
		return common.BatchMatchResult{Matches: []common.BatchMatch{}}, nil
	}

	pairs := c.candidatePairs(usable, opts)
	logger.Debug("[Batch] Scoring candidate pairs",
		"records", len(usable),
		"pairs", len(pairs),
		"blocking", opts.UseBlocking && len(usable) >= BlockingMinRecords,
	)

	scored := make([]*common.BatchMatch, len(pairs))
	workers := opts.Parallelism
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	chunk := (len(pairs) + workers - 1) / workers
	for start := 0; start < len(pairs); start += chunk {
		end := start + chunk
		if end > len(pairs) {
			end = len(pairs)
		}
		s, e := start, end
		eg.Go(func() error {
			for i := s; i < e; i++ {
				if err := gCtx.Err(); err != nil {
					return err
				}
				scored[i] = c.scorePair(usable[pairs[i].a], usable[pairs[i].b], opts)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		done(0, 0)
		return common.BatchMatchResult{}, err
	}

	matches := make([]common.BatchMatch, 0)
	for _, m := range scored {
		if m != nil {
			matches = append(matches, *m)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	done(len(pairs), len(matches))
	return common.BatchMatchResult{
		Matches:          matches,
		TotalComparisons: len(pairs),
		MatchesFound:     len(matches),
	}, nil
}

// candidatePairs enumerates the unordered record pairs to score. Blocking
// applies only when requested and the record set is large enough; blocked
// records pair only within their block.
func (c *Comparator) candidatePairs(records []Record, opts BatchOptions) []candidatePair {
	if !opts.UseBlocking || len(records) < BlockingMinRecords {
		pairs := make([]candidatePair, 0, len(records)*(len(records)-1)/2)
		for i := 0; i < len(records); i++ {
			for j := i + 1; j < len(records); j++ {
				pairs = append(pairs, candidatePair{a: i, b: j})
			}
		}
		return pairs
	}

	blocks := make(map[string][]int)
	blockOrder := make([]string, 0)
	for i, r := range records {
		key := blockingKey(r, opts.MatchFields)
		if _, seen := blocks[key]; !seen {
			blockOrder = append(blockOrder, key)
		}
		blocks[key] = append(blocks[key], i)
	}

	var pairs []candidatePair
	for _, key := range blockOrder {
		members := blocks[key]
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				pairs = append(pairs, candidatePair{a: members[i], b: members[j]})
			}
		}
	}
	return pairs
}

// blockingKey concatenates the first character of each match field's
// lowercased, trimmed value. Absent or empty fields contribute an empty
// segment, so partially-filled records still land in a block.
func blockingKey(r Record, matchFields []string) string {
	segments := make([]string, len(matchFields))
	for i, field := range matchFields {
		value := strings.ToLower(strings.TrimSpace(r.Fields[field]))
		if value != "" {
			segments[i] = string([]rune(value)[0])
		}
	}
	return strings.Join(segments, "|")
}

// scorePair scores one candidate pair, returning nil when the pair is
// skipped (blank primary field) or falls below the threshold. Skipped
// pairs still count toward total comparisons at the caller.
func (c *Comparator) scorePair(a, b Record, opts BatchOptions) *common.BatchMatch {
	primary := opts.MatchFields[0]
	valueA := strings.TrimSpace(a.Fields[primary])
	valueB := strings.TrimSpace(b.Fields[primary])
	if valueA == "" || valueB == "" {
		return nil
	}

	entityType := pairEntityType(a, b)
	result := c.Compare(valueA, valueB, entityType)
	if result.Score < opts.Threshold {
		return nil
	}

	matchingFields := []string{primary}
	for _, field := range opts.MatchFields[1:] {
		fa := strings.TrimSpace(a.Fields[field])
		fb := strings.TrimSpace(b.Fields[field])
		if fa == "" || fb == "" {
			continue
		}
		if c.Compare(fa, fb, entityType).Score >= opts.Threshold {
			matchingFields = append(matchingFields, field)
		}
	}

	return &common.BatchMatch{
		EntityA:        a.ID,
		EntityB:        b.ID,
		Score:          result.Score,
		Confidence:     common.ConfidenceForScore(result.Score),
		MatchType:      result.MatchType,
		MatchingFields: matchingFields,
	}
}

// pairEntityType picks the first available entity-type hint of the pair.
func pairEntityType(a, b Record) common.EntityType {
	if a.EntityType != "" {
		return a.EntityType
	}
	if b.EntityType != "" {
		return b.EntityType
	}
	return common.EntityUnknown
}
