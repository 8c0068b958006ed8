// Package rules holds the declarative detection catalogue: every
// environment-to-identifier mapping is a row in a static table walked by
// one generic matcher. Adding a new editor or CI vendor means appending
// a rule, not writing detector code.
package rules

import (
	"strings"

	"github.com/envsense/envsense/internal/schema"
	"github.com/envsense/envsense/internal/snapshot"
)

// Indicator is one env-var predicate within a rule. Exactly one match
// mode applies:
//   - Prefix: Key is matched as a prefix over all env-var names
//   - Value: the variable must equal Value exactly
//   - Contains: the variable's value must contain Contains (case-insensitive)
//   - otherwise: presence of Key is enough
type Indicator struct {
	Key      string
	Value    string
	Contains string
	Prefix   bool
	Required bool
	Priority int
}

// Hit records the concrete env entry an indicator matched, carrying a
// copy of the value for evidence records.
type Hit struct {
	Key   string
	Value string
}

// Match evaluates the indicator against the snapshot.
func (i Indicator) Match(snap *snapshot.Snapshot) (Hit, bool) {
	if i.Prefix {
		entries := snap.MatchPrefix(i.Key)
		if len(entries) == 0 {
			return Hit{}, false
		}
		// First entry in sorted order keeps prefix evidence stable.
		return Hit{Key: entries[0].Key, Value: entries[0].Value}, true
	}

	v, ok := snap.Get(i.Key)
	if !ok {
		return Hit{}, false
	}
	switch {
	case i.Value != "":
		if v != i.Value {
			return Hit{}, false
		}
	case i.Contains != "":
		if !strings.Contains(strings.ToLower(v), strings.ToLower(i.Contains)) {
			return Hit{}, false
		}
	}
	return Hit{Key: i.Key, Value: v}, true
}

// Rule is one row in the detection catalogue.
type Rule struct {
	// ID is the identifier the rule produces when it matches.
	ID string
	// Confidence to record if the rule fires.
	Confidence float64
	// Indicators over env vars; must be non-empty.
	Indicators []Indicator
	// Facets are supplementary detector-level fields (e.g. host).
	Facets map[string]string
	// Contexts the rule asserts.
	Contexts []schema.Context
}

// Match reports whether the rule fires: every required indicator must
// match, and at least one non-required indicator must match if any
// exist. Hits are returned in indicator order.
func (r Rule) Match(snap *snapshot.Snapshot) ([]Hit, bool) {
	var hits []Hit
	optional := 0
	optionalHit := false
	for _, ind := range r.Indicators {
		hit, ok := ind.Match(snap)
		if ind.Required {
			if !ok {
				return nil, false
			}
			hits = append(hits, hit)
			continue
		}
		optional++
		if ok {
			optionalHit = true
			hits = append(hits, hit)
		}
	}
	if optional > 0 && !optionalHit {
		return nil, false
	}
	return hits, true
}

// Priority is the maximum priority of the rule's indicators.
func (r Rule) Priority() int {
	max := 0
	for _, ind := range r.Indicators {
		if ind.Priority > max {
			max = ind.Priority
		}
	}
	return max
}
