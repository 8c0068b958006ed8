package detect

import (
	"strconv"

	"github.com/envsense/envsense/internal/rules"
	"github.com/envsense/envsense/internal/schema"
	"github.com/envsense/envsense/internal/snapshot"
)

// CIDetector walks the CI rule group with confidence-based selection,
// then probes the snapshot for PR and branch signals in a fixed,
// vendor-agnostic order. The probes run only when a CI rule matched.
type CIDetector struct{}

func (CIDetector) Name() string { return "ci" }

// Search order for the vendor-agnostic probes. First present wins.
var (
	branchVars = []string{"GITHUB_REF_NAME", "CI_COMMIT_REF_NAME", "CIRCLE_BRANCH", "BRANCH_NAME", "GIT_BRANCH"}
	prVars     = []string{"CI_MERGE_REQUEST_ID", "CIRCLE_PR_NUMBER"}
)

func (CIDetector) Detect(snap *snapshot.Snapshot) Detection {
	o := snap.Overrides()
	if o.AssumeLocal {
		return Detection{}
	}
	if o.CI != "" {
		return Detection{
			Contexts:   []schema.Context{schema.ContextCI},
			Traits:     map[string]any{"ci.id": o.CI},
			Evidence:   []schema.Evidence{envEvidence("ENVSENSE_CI", o.CI, schema.ConfidenceDirect, "ci.id")},
			Confidence: schema.ConfidenceDirect,
		}
	}

	var best *rules.Rule
	var bestHits []rules.Hit
	for i := range rules.CIs {
		r := &rules.CIs[i]
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
		return Detection{}
	}

	vendor, ok := rules.CIVendors[best.ID]
	if !ok {
		vendor = rules.CIVendor{Vendor: best.ID, Name: best.ID}
	}

	det := Detection{
		Contexts: append([]schema.Context(nil), best.Contexts...),
		Traits: map[string]any{
			"ci.id":     best.ID,
			"ci.vendor": vendor.Vendor,
			"ci.name":   vendor.Name,
		},
		Confidence: best.Confidence,
	}
	for _, hit := range bestHits {
		det.Evidence = append(det.Evidence, envEvidence(hit.Key, hit.Value, best.Confidence, "ci.id", "ci.vendor", "ci.name"))
	}

	probePR(snap, &det)
	probeBranch(snap, &det)
	return det
}

// probePR resolves ci.is_pr. GITHUB_EVENT_NAME is authoritative when
// present: any value other than pull_request is a definite negative and
// stops the search. The weaker presence signals and the generic
// CI_PULL_REQUEST flag are consulted only after it.
func probePR(snap *snapshot.Snapshot, det *Detection) {
	if v, ok := snap.Get("GITHUB_EVENT_NAME"); ok {
		isPR := v == "pull_request"
		det.Traits["ci.is_pr"] = isPR
		det.Evidence = append(det.Evidence, envEvidence("GITHUB_EVENT_NAME", v, schema.ConfidenceDirect, "ci.is_pr"))
		return
	}
	for _, key := range prVars {
		if v, ok := snap.Get(key); ok {
			det.Traits["ci.is_pr"] = true
			det.Evidence = append(det.Evidence, envEvidence(key, v, schema.ConfidenceDirect, "ci.is_pr"))
			return
		}
	}
	if v, ok := snap.Get("CI_PULL_REQUEST"); ok {
		isPR, err := strconv.ParseBool(v)
		if err != nil {
			isPR = v != ""
		}
		det.Traits["ci.is_pr"] = isPR
		det.Evidence = append(det.Evidence, envEvidence("CI_PULL_REQUEST", v, schema.ConfidenceDirect, "ci.is_pr"))
	}
}

func probeBranch(snap *snapshot.Snapshot, det *Detection) {
	for _, key := range branchVars {
		if v, ok := snap.Get(key); ok && v != "" {
			det.Traits["ci.branch"] = v
			det.Evidence = append(det.Evidence, envEvidence(key, v, schema.ConfidenceDirect, "ci.branch"))
			return
		}
	}
}
