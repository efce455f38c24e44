// Package match resolves free-text organizational labels to warehouse
// surrogate ids. The matching policy is pluggable so the tie-break and
// ambiguity behavior stays explicit and testable.
package match

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Candidate pairs a dimension label with its surrogate id. Slice order
// is priority order: when several candidates could match, the first
// one wins.
type Candidate struct {
	Label string
	ID    int64
}

// Matcher resolves a label against an ordered candidate set. A miss is
// reported through ok=false, never through an error.
type Matcher interface {
	Match(label string, candidates []Candidate) (id int64, ok bool)
}

// ContainsMatcher matches when the candidate label occurs as a
// case-insensitive substring of the input label. A short dimension
// name embedded in a longer free-text label is a match.
type ContainsMatcher struct{}

func (ContainsMatcher) Match(label string, candidates []Candidate) (int64, bool) {
	lowered := strings.ToLower(label)
	for _, c := range candidates {
		if c.Label == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(c.Label)) {
			return c.ID, true
		}
	}
	return 0, false
}

// ExactMatcher requires case-insensitive equality.
type ExactMatcher struct{}

func (ExactMatcher) Match(label string, candidates []Candidate) (int64, bool) {
	for _, c := range candidates {
		if c.Label != "" && strings.EqualFold(label, c.Label) {
			return c.ID, true
		}
	}
	return 0, false
}

// FuzzyMatcher matches when the candidate label is a normalized,
// case-folded subsequence of the input label. Tolerates diacritics in
// warehouse labels ("Administración" vs "Administracion").
type FuzzyMatcher struct{}

func (FuzzyMatcher) Match(label string, candidates []Candidate) (int64, bool) {
	for _, c := range candidates {
		if c.Label != "" && fuzzy.MatchNormalizedFold(c.Label, label) {
			return c.ID, true
		}
	}
	return 0, false
}
