package detect

import (
	"github.com/envsense/envsense/internal/rules"
	"github.com/envsense/envsense/internal/schema"
	"github.com/envsense/envsense/internal/snapshot"
)

// AgentDetector walks the agent rule group with confidence-based
// selection; equal-confidence ties keep the first rule in table order.
// Host inference runs only when no agent rule matched: first matching
// host rule wins, otherwise host is recorded as "unknown". The host
// facet stays in the Detection; it is not part of the report traits.
type AgentDetector struct{}

func (AgentDetector) Name() string { return "agent" }

func (AgentDetector) Detect(snap *snapshot.Snapshot) Detection {
	o := snap.Overrides()
	if o.AssumeHuman {
		// Also suppresses host inference.
		return Detection{}
	}
	if o.Agent != "" {
		return Detection{
			Contexts:   []schema.Context{schema.ContextAgent},
			Traits:     map[string]any{"agent.id": o.Agent},
			Evidence:   []schema.Evidence{envEvidence("ENVSENSE_AGENT", o.Agent, schema.ConfidenceDirect, "agent.id")},
			Confidence: schema.ConfidenceDirect,
		}
	}

	var best *rules.Rule
	var bestHits []rules.Hit
	for i := range rules.Agents {
		r := &rules.Agents[i]
		hits, ok := r.Match(snap)
		if !ok {
			continue
		}
		if best == nil || r.Confidence > best.Confidence {
			best = r
			bestHits = hits
		}
	}

	if best == nil {
		return Detection{Facets: map[string]string{"host": inferHost(snap)}}
	}

	det := Detection{
		Contexts:   append([]schema.Context(nil), best.Contexts...),
		Traits:     map[string]any{"agent.id": best.ID},
		Facets:     map[string]string{},
		Confidence: best.Confidence,
	}
	for k, v := range best.Facets {
		det.Facets[k] = v
	}
	for _, hit := range bestHits {
		det.Evidence = append(det.Evidence, envEvidence(hit.Key, hit.Value, best.Confidence, "agent.id"))
	}
	return det
}

func inferHost(snap *snapshot.Snapshot) string {
	for _, r := range rules.Hosts {
		if _, ok := r.Match(snap); ok {
			return r.ID
		}
	}
	return "unknown"
}
