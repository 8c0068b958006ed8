package rules

import (
	"testing"

	"github.com/envsense/envsense/internal/snapshot"
)

func snap(env map[string]string) *snapshot.Snapshot {
	return snapshot.New(env)
}

func TestIndicator_Presence(t *testing.T) {
	ind := Indicator{Key: "CURSOR_AGENT", Required: true}

	if _, ok := ind.Match(snap(map[string]string{"CURSOR_AGENT": "1"})); !ok {
		t.Error("expected presence indicator to match")
	}
	if _, ok := ind.Match(snap(map[string]string{"OTHER": "1"})); ok {
		t.Error("expected presence indicator not to match")
	}
}

func TestIndicator_ExactValue(t *testing.T) {
	ind := Indicator{Key: "IS_CODE_AGENT", Value: "1"}

	tests := []struct {
		env     map[string]string
		matched bool
	}{
		{map[string]string{"IS_CODE_AGENT": "1"}, true},
		{map[string]string{"IS_CODE_AGENT": "true"}, false},
		{map[string]string{}, false},
	}
	for _, tt := range tests {
		if _, ok := ind.Match(snap(tt.env)); ok != tt.matched {
			t.Errorf("env %v: expected matched=%t, got %t", tt.env, tt.matched, ok)
		}
	}
}

func TestIndicator_ContainsCaseInsensitive(t *testing.T) {
	ind := Indicator{Key: "TERM_PROGRAM_VERSION", Contains: "insider"}

	tests := []struct {
		value   string
		matched bool
	}{
		{"1.86.0-insider", true},
		{"1.86.0-INSIDER", true},
		{"1.86.0", false},
	}
	for _, tt := range tests {
		_, ok := ind.Match(snap(map[string]string{"TERM_PROGRAM_VERSION": tt.value}))
		if ok != tt.matched {
			t.Errorf("value %q: expected matched=%t, got %t", tt.value, tt.matched, ok)
		}
	}
}

func TestIndicator_PrefixScan(t *testing.T) {
	ind := Indicator{Key: "SANDBOX_", Prefix: true}

	hit, ok := ind.Match(snap(map[string]string{
		"SANDBOX_VOLUMES": "/workspace",
		"SANDBOX_API_KEY": "x",
	}))
	if !ok {
		t.Fatal("expected prefix indicator to match")
	}
	// Sorted scan keeps evidence stable.
	if hit.Key != "SANDBOX_API_KEY" {
		t.Errorf("expected first sorted key SANDBOX_API_KEY, got %s", hit.Key)
	}

	if _, ok := ind.Match(snap(map[string]string{"NOT_SANDBOX": "1"})); ok {
		t.Error("expected prefix indicator not to match")
	}
}

func TestRule_RequiredAndOptional(t *testing.T) {
	rule := Rule{
		ID:         "generic",
		Confidence: 0.6,
		Indicators: []Indicator{
			{Key: "CI", Value: "true"},
			{Key: "CI", Value: "1"},
		},
	}

	tests := []struct {
		env     map[string]string
		matched bool
	}{
		{map[string]string{"CI": "true"}, true},
		{map[string]string{"CI": "1"}, true},
		{map[string]string{"CI": "yes"}, false},
		{map[string]string{}, false},
	}
	for _, tt := range tests {
		if _, ok := rule.Match(snap(tt.env)); ok != tt.matched {
			t.Errorf("env %v: expected matched=%t, got %t", tt.env, tt.matched, ok)
		}
	}
}

func TestRule_AllRequiredMustMatch(t *testing.T) {
	rule := Rule{
		ID: "cursor",
		Indicators: []Indicator{
			{Key: "TERM_PROGRAM", Value: "vscode", Required: true},
			{Key: "CURSOR_TRACE_ID", Required: true},
		},
	}

	if _, ok := rule.Match(snap(map[string]string{"TERM_PROGRAM": "vscode"})); ok {
		t.Error("expected rule not to match with one required indicator missing")
	}
	hits, ok := rule.Match(snap(map[string]string{
		"TERM_PROGRAM":    "vscode",
		"CURSOR_TRACE_ID": "xyz",
	}))
	if !ok {
		t.Fatal("expected rule to match")
	}
	if len(hits) != 2 {
		t.Errorf("expected 2 hits in indicator order, got %d", len(hits))
	}
}

func TestRule_Priority(t *testing.T) {
	rule := Rule{Indicators: []Indicator{{Priority: 1}, {Priority: 3}, {Priority: 2}}}
	if got := rule.Priority(); got != 3 {
		t.Errorf("expected priority 3, got %d", got)
	}
}
