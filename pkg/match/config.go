package match

import (
	"github.com/caseworks/entitygraph/internal/util"
	"github.com/caseworks/entitygraph/pkg/common"
)

// Config holds the comparator's score weighting and classification
// thresholds. The defaults were chosen without labeled ground truth, so
// every value can be overridden through the environment for tuning
// against real investigation data.
type Config struct {
	// FuzzyWeight scales the token-sort similarity ratio.
	FuzzyWeight float64
	// PhoneticBonus is added when all word pairs agree phonetically.
	PhoneticBonus float64
	// ExactBonus is added when the normalized strings are identical.
	ExactBonus float64
	// FuzzyThreshold is the minimum composite score for a "fuzzy"
	// classification.
	FuzzyThreshold float64
	// PhoneticThreshold is the minimum composite score for a "phonetic"
	// classification when the phonetic check passes.
	PhoneticThreshold float64
}

// DefaultConfig returns the standard weighting: 0.70 fuzzy, 0.15 phonetic
// bonus, 0.15 exact bonus, with classification thresholds aligned to the
// shared confidence tiers.
func DefaultConfig() Config {
	return Config{
		FuzzyWeight:       0.70,
		PhoneticBonus:     0.15,
		ExactBonus:        0.15,
		FuzzyThreshold:    common.ThresholdConfirmed,
		PhoneticThreshold: common.ThresholdPossible,
	}
}

// ConfigFromEnv returns DefaultConfig with any MATCH_* environment
// overrides applied.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.FuzzyWeight = util.GetEnvFloat("MATCH_FUZZY_WEIGHT", cfg.FuzzyWeight)
	cfg.PhoneticBonus = util.GetEnvFloat("MATCH_PHONETIC_BONUS", cfg.PhoneticBonus)
	cfg.ExactBonus = util.GetEnvFloat("MATCH_EXACT_BONUS", cfg.ExactBonus)
	cfg.FuzzyThreshold = util.GetEnvFloat("MATCH_FUZZY_THRESHOLD", cfg.FuzzyThreshold)
	cfg.PhoneticThreshold = util.GetEnvFloat("MATCH_PHONETIC_THRESHOLD", cfg.PhoneticThreshold)
	return cfg
}
