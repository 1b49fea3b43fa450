package match

import (
	"strings"
	"unicode"
)

// orgSuffixes is the dictionary of trailing legal-entity suffixes stripped
// from organization names before scoring. Keys are normalized (lowercase,
// no punctuation).
var orgSuffixes = map[string]bool{
	"llc":          true,
	"llp":          true,
	"lp":           true,
	"pllc":         true,
	"pc":           true,
	"inc":          true,
	"incorporated": true,
	"corp":         true,
	"corporation":  true,
	"co":           true,
	"company":      true,
	"ltd":          true,
	"limited":      true,
	"plc":          true,
	"ag":           true,
	"gmbh":         true,
	"sa":           true,
	"nv":           true,
	"bv":           true,
	"ab":           true,
	"oy":           true,
	"spa":          true,
	"srl":          true,
	"pty":          true,
	"kk":           true,
}

// Normalize lowercases the input, replaces "&" with "and", strips all
// punctuation, and collapses internal whitespace to single spaces.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "&", " and ")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// decomposePersonName rewrites "Last, First [Middle]" notation into
// "First [Middle] Last". It must run on the raw string: the comma that
// signals reordering is gone once punctuation is stripped. Names without
// a comma pass through unchanged.
func decomposePersonName(raw string) string {
	idx := strings.Index(raw, ",")
	if idx == -1 {
		return raw
	}

	last := strings.TrimSpace(raw[:idx])
	rest := strings.TrimSpace(strings.ReplaceAll(raw[idx+1:], ",", " "))
	if last == "" || rest == "" {
		return raw
	}

	return rest + " " + last
}

// stripOrgSuffix removes a single trailing legal-entity suffix from an
// already-normalized organization name. If stripping would leave nothing,
// the original normalized form is kept.
func stripOrgSuffix(normalized string) string {
	tokens := strings.Fields(normalized)
	if len(tokens) < 2 {
		return normalized
	}

	if !orgSuffixes[tokens[len(tokens)-1]] {
		return normalized
	}

	stripped := strings.Join(tokens[:len(tokens)-1], " ")
	if stripped == "" {
		return normalized
	}

	return Normalize(stripped)
}
