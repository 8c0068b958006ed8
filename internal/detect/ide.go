package detect

import (
	"github.com/envsense/envsense/internal/rules"
	"github.com/envsense/envsense/internal/schema"
	"github.com/envsense/envsense/internal/snapshot"
)

// IDEDetector walks the IDE rule group with priority-based selection:
// the highest-priority matching rule wins, which is how the cursor rule
// beats plain vscode when both conditions hold. Ties keep table order.
type IDEDetector struct{}

func (IDEDetector) Name() string { return "ide" }

func (IDEDetector) Detect(snap *snapshot.Snapshot) Detection {
	o := snap.Overrides()
	if o.AssumeTerminal {
		return Detection{}
	}
	if o.IDE != "" {
		return Detection{
			Contexts:   []schema.Context{schema.ContextIDE},
			Traits:     map[string]any{"ide.id": o.IDE},
			Evidence:   []schema.Evidence{envEvidence("ENVSENSE_IDE", o.IDE, schema.ConfidenceDirect, "ide.id")},
			Confidence: schema.ConfidenceDirect,
		}
	}

	var best *rules.Rule
	var bestHits []rules.Hit
	for i := range rules.IDEs {
		r := &rules.IDEs[i]
		hits, ok := r.Match(snap)
		if !ok {
			continue
		}
		if best == nil || r.Priority() > best.Priority() {
			best = r
			bestHits = hits
		}
	}
	if best == nil {
		return Detection{}
	}

	det := Detection{
		Contexts:   append([]schema.Context(nil), best.Contexts...),
		Traits:     map[string]any{"ide.id": best.ID},
		Confidence: best.Confidence,
	}
	for _, hit := range bestHits {
		det.Evidence = append(det.Evidence, envEvidence(hit.Key, hit.Value, best.Confidence, "ide.id"))
	}
	return det
}
