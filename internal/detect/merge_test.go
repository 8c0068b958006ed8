package detect

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/envsense/envsense/internal/schema"
	"github.com/envsense/envsense/internal/snapshot"
)

func report(env map[string]string, opts ...snapshot.Option) schema.Report {
	return Run(snapshot.New(env, opts...), nil)
}

func TestMergeEmptyEnvironment(t *testing.T) {
	r := report(nil)

	if len(r.Contexts) != 0 {
		t.Errorf("expected no contexts, got %v", r.Contexts)
	}
	if r.Traits.Agent.ID != nil || r.Traits.IDE.ID != nil || r.Traits.CI.ID != nil {
		t.Error("expected all optional ids absent")
	}
	if r.Version != schema.Version {
		t.Errorf("expected version %s, got %s", schema.Version, r.Version)
	}
	// The terminal detector always runs, so evidence is present even in
	// an empty environment; the env-derived evidence is what is empty.
	for _, ev := range r.Evidence {
		if ev.Signal == schema.SignalEnv {
			t.Errorf("unexpected env evidence %+v", ev)
		}
	}
}

// P1: piped is the negation of tty for every stream.
// P2: interactive iff stdin.tty and stdout.tty.
func TestMergeStreamInvariants(t *testing.T) {
	tests := []struct {
		stdin, stdout, stderr bool
	}{
		{false, false, false},
		{true, true, true},
		{true, false, true},
		{false, true, false},
	}
	for _, tt := range tests {
		r := report(nil, snapshot.WithTTY(tt.stdin, tt.stdout, tt.stderr))
		term := r.Traits.Terminal

		for name, s := range map[string]schema.StreamTraits{"stdin": term.Stdin, "stdout": term.Stdout, "stderr": term.Stderr} {
			if s.Piped != !s.TTY {
				t.Errorf("%s: piped=%t with tty=%t", name, s.Piped, s.TTY)
			}
		}
		if term.Interactive != (tt.stdin && tt.stdout) {
			t.Errorf("interactive=%t for stdin=%t stdout=%t", term.Interactive, tt.stdin, tt.stdout)
		}
	}
}

// P3: a context tag is present iff the corresponding id is set.
func TestMergeContextIffID(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"empty", nil},
		{"agent", map[string]string{"CURSOR_AGENT": "1"}},
		{"ide", map[string]string{"TERM_PROGRAM": "vscode"}},
		{"ci", map[string]string{"GITHUB_ACTIONS": "true"}},
		{"all", map[string]string{"CURSOR_AGENT": "1", "TERM_PROGRAM": "vscode", "GITHUB_ACTIONS": "true"}},
		{"suppressed agent", map[string]string{"ENVSENSE_ASSUME_HUMAN": "1", "CURSOR_AGENT": "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := report(tt.env)
			if r.HasContext(schema.ContextAgent) != (r.Traits.Agent.ID != nil) {
				t.Error("agent context does not track agent.id")
			}
			if r.HasContext(schema.ContextIDE) != (r.Traits.IDE.ID != nil) {
				t.Error("ide context does not track ide.id")
			}
			if r.HasContext(schema.ContextCI) != (r.Traits.CI.ID != nil) {
				t.Error("ci context does not track ci.id")
			}
		})
	}
}

// P4: every evidence supports entry resolves to a populated field or
// context tag.
func TestMergeEvidenceSupportsResolve(t *testing.T) {
	r := report(map[string]string{
		"CURSOR_AGENT":      "1",
		"TERM_PROGRAM":      "vscode",
		"GITHUB_ACTIONS":    "true",
		"GITHUB_EVENT_NAME": "pull_request",
		"GITHUB_REF_NAME":   "main",
	})

	for _, ev := range r.Evidence {
		for _, path := range ev.Supports {
			v, known := r.Lookup(path)
			if !known {
				t.Errorf("evidence %s: supports unknown path %q", ev.Key, path)
				continue
			}
			if v == nil {
				t.Errorf("evidence %s: supports unset path %q", ev.Key, path)
			}
		}
	}
}

// P6: merging the same Detection list twice equals merging it once.
func TestMergeIdempotent(t *testing.T) {
	snap := snapshot.New(map[string]string{
		"CURSOR_AGENT":   "1",
		"REPL_ID":        "abc",
		"GITHUB_ACTIONS": "true",
	}, snapshot.WithTTY(true, true, true))

	var once, twice []Detection
	for _, d := range Pipeline() {
		det := d.Detect(snap)
		once = append(once, det)
		twice = append(twice, det)
	}
	for _, d := range Pipeline() {
		twice = append(twice, d.Detect(snap))
	}

	a := Merge(once)
	b := Merge(twice)
	b.Evidence = b.Evidence[:len(a.Evidence)] // doubled by construction

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("merge not idempotent (-once +twice):\n%s", diff)
	}
}

func TestMergeLegacyFlatKeys(t *testing.T) {
	r := Merge([]Detection{{
		Traits: map[string]any{
			"is_interactive":      true,
			"is_tty_stdin":        true,
			"is_tty_stdout":       true,
			"is_tty_stderr":       false,
			"color_level":         "ansi256",
			"supports_hyperlinks": true,
		},
		Confidence: 1.0,
	}})

	term := r.Traits.Terminal
	if !term.Stdin.TTY || !term.Stdout.TTY || term.Stderr.TTY {
		t.Errorf("legacy tty keys not routed: %+v", term)
	}
	if term.ColorLevel != schema.ColorANSI256 {
		t.Errorf("expected ansi256, got %s", term.ColorLevel)
	}
	if !term.SupportsHyperlinks {
		t.Error("legacy supports_hyperlinks not routed")
	}
	// Piped recomputed from the merged tty bits.
	if term.Stdin.Piped || !term.Stderr.Piped {
		t.Error("piped bits not recomputed")
	}
}

func TestMergeNestedBeatsLegacyInSameDetection(t *testing.T) {
	r := Merge([]Detection{{
		Traits: map[string]any{
			"color_level":          "ansi16",
			"terminal.color_level": "truecolor",
		},
		Confidence: 1.0,
	}})

	if r.Traits.Terminal.ColorLevel != schema.ColorTruecolor {
		t.Errorf("expected nested path to win, got %s", r.Traits.Terminal.ColorLevel)
	}
}

func TestMergeHighestConfidenceIDWins(t *testing.T) {
	low := Detection{
		Contexts:   []schema.Context{schema.ContextAgent},
		Traits:     map[string]any{"agent.id": "weak"},
		Confidence: 0.6,
	}
	high := Detection{
		Contexts:   []schema.Context{schema.ContextAgent},
		Traits:     map[string]any{"agent.id": "strong"},
		Confidence: 1.0,
	}

	r := Merge([]Detection{low, high})
	if r.Traits.Agent.ID == nil || *r.Traits.Agent.ID != "strong" {
		t.Errorf("expected strong to win, got %v", r.Traits.Agent.ID)
	}

	// Ties keep the first.
	r = Merge([]Detection{low, {Traits: map[string]any{"agent.id": "other"}, Confidence: 0.6}})
	if r.Traits.Agent.ID == nil || *r.Traits.Agent.ID != "weak" {
		t.Errorf("expected first detection to win the tie, got %v", r.Traits.Agent.ID)
	}
}

func TestMergeEvidenceOrderAndDuplicates(t *testing.T) {
	ev := func(key string) schema.Evidence {
		return schema.Evidence{Signal: schema.SignalEnv, Key: key, Supports: []string{"agent.id"}, Confidence: 1.0}
	}
	r := Merge([]Detection{
		{Traits: map[string]any{"agent.id": "a"}, Confidence: 1.0, Evidence: []schema.Evidence{ev("ONE"), ev("TWO")}},
		{Evidence: []schema.Evidence{ev("ONE")}},
	})

	keys := make([]string, len(r.Evidence))
	for i, e := range r.Evidence {
		keys[i] = e.Key
	}
	want := []string{"ONE", "TWO", "ONE"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("evidence order/duplication wrong:\n%s", diff)
	}
}

func TestRunDeterministicJSON(t *testing.T) {
	env := map[string]string{
		"CURSOR_AGENT":    "1",
		"TERM_PROGRAM":    "vscode",
		"CURSOR_TRACE_ID": "xyz",
		"GITHUB_ACTIONS":  "true",
	}

	first := report(env)
	a, err := first.Encode(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	second := report(env)
	b, err := second.Encode(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("expected byte-identical JSON across runs")
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(a, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	for _, key := range []string{"contexts", "traits", "evidence", "version"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}
}

// Literal scenarios from the behaviour contract.
func TestScenarios(t *testing.T) {
	t.Run("cursor agent", func(t *testing.T) {
		r := report(map[string]string{"CURSOR_AGENT": "1"})
		if !r.HasContext(schema.ContextAgent) {
			t.Error("expected agent context")
		}
		if r.Traits.Agent.ID == nil || *r.Traits.Agent.ID != "cursor" {
			t.Fatalf("expected agent.id=cursor, got %v", r.Traits.Agent.ID)
		}
		found := false
		for _, ev := range r.Evidence {
			if ev.Key == "CURSOR_AGENT" && ev.Value != nil && *ev.Value == "1" && ev.Confidence == 1.0 {
				for _, s := range ev.Supports {
					if s == "agent.id" {
						found = true
					}
				}
			}
		}
		if !found {
			t.Error("expected CURSOR_AGENT evidence supporting agent.id")
		}
	})

	t.Run("assume human beats cursor", func(t *testing.T) {
		r := report(map[string]string{"ENVSENSE_ASSUME_HUMAN": "1", "CURSOR_AGENT": "1"})
		if r.HasContext(schema.ContextAgent) {
			t.Error("expected no agent context")
		}
		if r.Traits.Agent.ID != nil {
			t.Errorf("expected agent.id absent, got %v", *r.Traits.Agent.ID)
		}
	})

	t.Run("github actions pull request", func(t *testing.T) {
		r := report(map[string]string{
			"GITHUB_ACTIONS":    "true",
			"GITHUB_EVENT_NAME": "pull_request",
			"GITHUB_REF_NAME":   "main",
		})
		if !r.HasContext(schema.ContextCI) {
			t.Error("expected ci context")
		}
		if r.Traits.CI.ID == nil || *r.Traits.CI.ID != "github_actions" {
			t.Errorf("expected ci.id=github_actions, got %v", r.Traits.CI.ID)
		}
		if r.Traits.CI.Name == nil || *r.Traits.CI.Name != "GitHub Actions" {
			t.Errorf("expected ci.name, got %v", r.Traits.CI.Name)
		}
		if r.Traits.CI.IsPR == nil || !*r.Traits.CI.IsPR {
			t.Error("expected ci.is_pr=true")
		}
		if r.Traits.CI.Branch == nil || *r.Traits.CI.Branch != "main" {
			t.Errorf("expected ci.branch=main, got %v", r.Traits.CI.Branch)
		}
	})

	t.Run("vscode insiders", func(t *testing.T) {
		r := report(map[string]string{
			"TERM_PROGRAM":         "vscode",
			"TERM_PROGRAM_VERSION": "1.86.0-insider",
		})
		if !r.HasContext(schema.ContextIDE) {
			t.Error("expected ide context")
		}
		if r.Traits.IDE.ID == nil || *r.Traits.IDE.ID != "vscode-insiders" {
			t.Errorf("expected ide.id=vscode-insiders, got %v", r.Traits.IDE.ID)
		}
	})

	t.Run("cursor trace wins over insiders", func(t *testing.T) {
		r := report(map[string]string{
			"TERM_PROGRAM":         "vscode",
			"TERM_PROGRAM_VERSION": "1.86.0-insider",
			"CURSOR_TRACE_ID":      "xyz",
		})
		if r.Traits.IDE.ID == nil || *r.Traits.IDE.ID != "cursor" {
			t.Errorf("expected ide.id=cursor, got %v", r.Traits.IDE.ID)
		}
	})
}
