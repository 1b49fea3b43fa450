package match

import (
	"sort"
	"strings"

	"github.com/caseworks/entitygraph/pkg/common"
)

// Comparator produces a single calibrated similarity score for a pair of
// free-text identity strings. It is stateless and safe for concurrent use.
type Comparator struct {
	cfg Config
}

// NewComparator creates a comparator with the given configuration.
func NewComparator(cfg Config) *Comparator {
	return &Comparator{cfg: cfg}
}

// Compare scores two name strings. A blank input on either side yields a
// zero-score weak result immediately; this is a defined degenerate case,
// not an error.
//
// The pipeline is type-dependent: person names go through "Last, First"
// decomposition before normalization, organization and unknown names
// through legal-suffix stripping after it. The composite score is
// fuzzy*FuzzyWeight plus the phonetic and exact bonuses, clamped to [0,1].
func (c *Comparator) Compare(nameA, nameB string, entityType common.EntityType) common.MatchResult {
	if strings.TrimSpace(nameA) == "" || strings.TrimSpace(nameB) == "" {
		return common.MatchResult{MatchType: common.MatchWeak}
	}

	normA := c.prepare(nameA, entityType)
	normB := c.prepare(nameB, entityType)

	fuzzy := tokenSortRatio(normA, normB)
	phonetic := phoneticMatch(normA, normB)
	exact := normA != "" && normA == normB

	score := fuzzy * c.cfg.FuzzyWeight
	if phonetic {
		score += c.cfg.PhoneticBonus
	}
	if exact {
		score += c.cfg.ExactBonus
	}
	score = clamp01(score)

	return common.MatchResult{
		Score:          score,
		NameSimilarity: fuzzy,
		PhoneticMatch:  phonetic,
		NormalizedA:    normA,
		NormalizedB:    normB,
		MatchType:      classify(score, exact, phonetic, c.cfg),
	}
}

// prepare runs the type-dependent normalization pipeline on a raw name.
func (c *Comparator) prepare(raw string, entityType common.EntityType) string {
	if entityType == common.EntityPerson {
		return Normalize(decomposePersonName(raw))
	}

	normalized := Normalize(raw)
	return stripOrgSuffix(normalized)
}

func classify(score float64, exact, phonetic bool, cfg Config) common.MatchType {
	switch {
	case exact:
		return common.MatchExact
	case score >= cfg.FuzzyThreshold:
		return common.MatchFuzzy
	case phonetic && score >= cfg.PhoneticThreshold:
		return common.MatchPhonetic
	default:
		return common.MatchWeak
	}
}

// tokenSortRatio computes a token-order-insensitive similarity ratio in
// [0,1]: the tokens of each string are sorted before a normalized
// Levenshtein comparison, so "john smith" and "smith john" score 1.0.
func tokenSortRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	sort.Strings(tokensA)
	sort.Strings(tokensB)

	return levenshteinRatio(strings.Join(tokensA, " "), strings.Join(tokensB, " "))
}

func levenshteinRatio(a, b string) float64 {
	if a == b {
		return 1
	}

	ra := []rune(a)
	rb := []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 0
	}

	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// levenshtein computes edit distance with a two-row dynamic program.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
