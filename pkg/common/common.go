package common

// EntityType categorizes a node in the identity graph. The comparator
// selects its normalization pipeline based on this type: person names go
// through "Last, First" decomposition, organization names through legal
// suffix stripping.
type EntityType string

const (
	EntityPerson       EntityType = "person"
	EntityOrganization EntityType = "organization"
	EntityUnknown      EntityType = "unknown"
)

// ParseEntityType maps a free-form type string to an EntityType,
// defaulting to unknown.
func ParseEntityType(s string) EntityType {
	switch EntityType(s) {
	case EntityPerson, EntityOrganization:
		return EntityType(s)
	}
	return EntityUnknown
}

// RelType is the closed set of relationship types allowed between entities.
// Anything outside this set is rejected at the resolver layer.
type RelType string

const (
	RelRelatesTo      RelType = "RELATES_TO"
	RelTransactedWith RelType = "TRANSACTED_WITH"
	RelAffiliatedWith RelType = "AFFILIATED_WITH"
	RelLocatedAt      RelType = "LOCATED_AT"
)

// ValidRelType reports whether t belongs to the closed relationship set.
func ValidRelType(t RelType) bool {
	switch t {
	case RelRelatesTo, RelTransactedWith, RelAffiliatedWith, RelLocatedAt:
		return true
	}
	return false
}

// MatchType classifies the outcome of a name comparison. It is derived
// from the composite score and the phonetic check, never set independently.
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchFuzzy    MatchType = "fuzzy"
	MatchPhonetic MatchType = "phonetic"
	MatchWeak     MatchType = "weak"
)

// Confidence is the tier a numeric score maps into. The thresholds below
// are shared by resolution, batch deduplication, and screening and must
// stay identical across all three.
type Confidence string

const (
	ConfidenceConfirmed  Confidence = "confirmed"
	ConfidenceProbable   Confidence = "probable"
	ConfidencePossible   Confidence = "possible"
	ConfidenceUnresolved Confidence = "unresolved"
)

// Score thresholds for the confidence tiers.
const (
	ThresholdConfirmed = 0.95
	ThresholdProbable  = 0.80
	ThresholdPossible  = 0.60
)

// ConfidenceForScore maps a composite score to its confidence tier.
func ConfidenceForScore(score float64) Confidence {
	switch {
	case score >= ThresholdConfirmed:
		return ConfidenceConfirmed
	case score >= ThresholdProbable:
		return ConfidenceProbable
	case score >= ThresholdPossible:
		return ConfidencePossible
	default:
		return ConfidenceUnresolved
	}
}

// MatchResult is the output of comparing two name strings. Score is the
// composite similarity, always clamped to [0,1]. NameSimilarity is the raw
// fuzzy ratio before phonetic and exact bonuses are applied.
type MatchResult struct {
	Score          float64   `json:"score"`
	NameSimilarity float64   `json:"name_similarity"`
	PhoneticMatch  bool      `json:"phonetic_match"`
	NormalizedA    string    `json:"normalized_a"`
	NormalizedB    string    `json:"normalized_b"`
	MatchType      MatchType `json:"match_type"`
}

// Entity represents a node in the identity graph. Name is the display
// form, not the normalized one. Properties must carry "investigation_id"
// for the entity to be visible to investigation-scoped queries, and may
// carry "source_record_ids" linking back to ingested records.
type Entity struct {
	ID         string         `json:"id"`
	Type       EntityType     `json:"entity_type"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties"`
}

// InvestigationID returns the investigation scope of the entity, or ""
// when the entity carries none.
func (e Entity) InvestigationID() string {
	inv, _ := e.Properties["investigation_id"].(string)
	return inv
}

// Relationship is a directed, typed edge between two entities. Multiple
// relationships may exist between the same ordered pair; each is stored
// and returned independently.
type Relationship struct {
	SourceID   string         `json:"source_id"`
	TargetID   string         `json:"target_id"`
	Type       RelType        `json:"rel_type"`
	Properties map[string]any `json:"properties"`
}

// BatchMatch is one candidate duplicate pair found by a batch
// deduplication pass.
type BatchMatch struct {
	EntityA        string     `json:"entity_a"`
	EntityB        string     `json:"entity_b"`
	Score          float64    `json:"score"`
	Confidence     Confidence `json:"confidence"`
	MatchType      MatchType  `json:"match_type"`
	MatchingFields []string   `json:"matching_fields"`
}

// BatchMatchResult is the output of a bulk deduplication pass: all pairs
// at or above the caller's threshold, sorted by score descending, plus
// counters for observability.
type BatchMatchResult struct {
	Matches          []BatchMatch `json:"matches"`
	TotalComparisons int          `json:"total_comparisons"`
	MatchesFound     int          `json:"matches_found"`
}

// ReferenceEntry is one record of a screening reference list (e.g. a
// sanctions list). Acquisition and refresh of the list are external; the
// screener only consumes a pre-loaded collection of these.
type ReferenceEntry struct {
	UID       string   `json:"uid"`
	Name      string   `json:"name"`
	EntryType string   `json:"entry_type"`
	Program   string   `json:"program"`
	Aliases   []string `json:"aliases"`
}

// ScreeningHit is the outcome of comparing a query name against one
// reference-list entry. MatchedAlias is empty when the primary name
// produced the best score.
type ScreeningHit struct {
	ReferenceID   string     `json:"reference_id"`
	ReferenceName string     `json:"reference_name"`
	MatchScore    float64    `json:"match_score"`
	Confidence    Confidence `json:"confidence"`
	MatchedAlias  string     `json:"matched_alias,omitempty"`
	EntryType     string     `json:"entry_type"`
	Program       string     `json:"program"`
}
