package detect

import (
	"testing"

	"github.com/envsense/envsense/internal/schema"
	"github.com/envsense/envsense/internal/snapshot"
)

func TestCIDetector_GitHubActions(t *testing.T) {
	snap := snapshot.New(map[string]string{
		"GITHUB_ACTIONS":    "true",
		"GITHUB_EVENT_NAME": "pull_request",
		"GITHUB_REF_NAME":   "main",
	})
	det := CIDetector{}.Detect(snap)

	if det.Traits["ci.id"] != "github_actions" {
		t.Errorf("expected ci.id=github_actions, got %v", det.Traits["ci.id"])
	}
	if det.Traits["ci.vendor"] != "github" {
		t.Errorf("expected ci.vendor=github, got %v", det.Traits["ci.vendor"])
	}
	if det.Traits["ci.name"] != "GitHub Actions" {
		t.Errorf("expected ci.name, got %v", det.Traits["ci.name"])
	}
	if det.Traits["ci.is_pr"] != true {
		t.Errorf("expected ci.is_pr=true, got %v", det.Traits["ci.is_pr"])
	}
	if det.Traits["ci.branch"] != "main" {
		t.Errorf("expected ci.branch=main, got %v", det.Traits["ci.branch"])
	}
	if len(det.Contexts) != 1 || det.Contexts[0] != schema.ContextCI {
		t.Errorf("expected ci context, got %v", det.Contexts)
	}
}

func TestCIDetector_PushEventIsDefiniteNegative(t *testing.T) {
	snap := snapshot.New(map[string]string{
		"GITHUB_ACTIONS":      "true",
		"GITHUB_EVENT_NAME":   "push",
		"CI_MERGE_REQUEST_ID": "5", // weaker signal must not override
	})
	det := CIDetector{}.Detect(snap)

	if det.Traits["ci.is_pr"] != false {
		t.Errorf("expected ci.is_pr=false for push event, got %v", det.Traits["ci.is_pr"])
	}
}

func TestCIDetector_PRSearchOrder(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want any
	}{
		{"gitlab merge request", map[string]string{"GITLAB_CI": "true", "CI_MERGE_REQUEST_ID": "5"}, true},
		{"circle pr number", map[string]string{"CIRCLECI": "true", "CIRCLE_PR_NUMBER": "9"}, true},
		{"generic flag true", map[string]string{"CI": "true", "CI_PULL_REQUEST": "true"}, true},
		{"generic flag false", map[string]string{"CI": "true", "CI_PULL_REQUEST": "false"}, false},
		{"no signal leaves is_pr unset", map[string]string{"CI": "true"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := CIDetector{}.Detect(snapshot.New(tt.env))
			got, present := det.Traits["ci.is_pr"]
			if tt.want == nil {
				if present {
					t.Errorf("expected ci.is_pr unset, got %v", got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("expected ci.is_pr=%v, got %v", tt.want, got)
			}
		})
	}
}

func TestCIDetector_BranchSearchOrder(t *testing.T) {
	snap := snapshot.New(map[string]string{
		"GITLAB_CI":          "true",
		"CI_COMMIT_REF_NAME": "feature-x",
		"GIT_BRANCH":         "should-lose",
	})
	det := CIDetector{}.Detect(snap)

	if det.Traits["ci.branch"] != "feature-x" {
		t.Errorf("expected CI_COMMIT_REF_NAME to win, got %v", det.Traits["ci.branch"])
	}
}

func TestCIDetector_VendorBeatsGenericFallback(t *testing.T) {
	snap := snapshot.New(map[string]string{
		"CI":       "true",
		"CIRCLECI": "true",
	})
	det := CIDetector{}.Detect(snap)

	if det.Traits["ci.id"] != "circleci" {
		t.Errorf("expected the vendor rule to outrank generic, got %v", det.Traits["ci.id"])
	}
}

func TestCIDetector_GenericFallback(t *testing.T) {
	det := CIDetector{}.Detect(snapshot.New(map[string]string{"CI": "1"}))

	if det.Traits["ci.id"] != "generic" {
		t.Errorf("expected generic, got %v", det.Traits["ci.id"])
	}
	if det.Traits["ci.name"] != "Generic CI" {
		t.Errorf("expected Generic CI name, got %v", det.Traits["ci.name"])
	}
	if det.Confidence != schema.ConfidenceHeuristic {
		t.Errorf("expected heuristic confidence, got %.1f", det.Confidence)
	}
}

func TestCIDetector_Overrides(t *testing.T) {
	local := CIDetector{}.Detect(snapshot.New(map[string]string{
		"ENVSENSE_ASSUME_LOCAL": "1",
		"GITHUB_ACTIONS":        "true",
	}))
	if local.Traits != nil {
		t.Errorf("expected assume-local to suppress detection, got %v", local.Traits)
	}

	forced := CIDetector{}.Detect(snapshot.New(map[string]string{"ENVSENSE_CI": "my-ci"}))
	if forced.Traits["ci.id"] != "my-ci" {
		t.Errorf("expected forced ci slug, got %v", forced.Traits["ci.id"])
	}
	if len(forced.Evidence) != 1 || forced.Evidence[0].Key != "ENVSENSE_CI" {
		t.Errorf("expected evidence keyed on ENVSENSE_CI, got %v", forced.Evidence)
	}
}

func TestCIDetector_NoSignals(t *testing.T) {
	det := CIDetector{}.Detect(snapshot.New(nil))
	if det.Traits != nil || len(det.Contexts) != 0 || len(det.Evidence) != 0 {
		t.Errorf("expected empty detection, got %+v", det)
	}
}
