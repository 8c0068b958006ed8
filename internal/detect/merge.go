package detect

import (
	"sort"
	"strings"

	"github.com/envsense/envsense/internal/schema"
)

// Merge composes a sequence of Detections into the canonical report.
// Context tags are unioned; identifier fields are claimed by the
// highest-confidence Detection that set them, ties keeping the first;
// terminal paths are last-writer-wins; evidence is appended in
// detector-invocation order without deduplication. The stream piped bits
// and the interactive flag are recomputed after composition so the
// report invariants hold regardless of what the patches contained.
func Merge(detections []Detection) schema.Report {
	r := schema.NewReport()
	claims := map[string]float64{}

	for _, d := range detections {
		for _, c := range d.Contexts {
			r.AddContext(c)
		}
		applyPatch(&r, d, claims)
		r.Evidence = append(r.Evidence, d.Evidence...)
	}

	t := &r.Traits.Terminal
	t.Stdin.Piped = !t.Stdin.TTY
	t.Stdout.Piped = !t.Stdout.TTY
	t.Stderr.Piped = !t.Stderr.TTY
	t.Interactive = t.Stdin.TTY && t.Stdout.TTY

	return r
}

// applyPatch routes one Detection's trait patch into the report. Legacy
// flat keys are applied before nested paths so that nested paths take
// precedence when both are provided in the same Detection; within each
// class keys are applied in sorted order for determinism.
func applyPatch(r *schema.Report, d Detection, claims map[string]float64) {
	if len(d.Traits) == 0 {
		return
	}
	var legacy, nested []string
	for key := range d.Traits {
		if _, ok := schema.LegacyTraitPath(key); ok {
			legacy = append(legacy, key)
		} else {
			nested = append(nested, key)
		}
	}
	sort.Strings(legacy)
	sort.Strings(nested)

	for _, key := range legacy {
		path, _ := schema.LegacyTraitPath(key)
		applyPath(r, path, d.Traits[key], d.Confidence, claims)
	}
	for _, key := range nested {
		applyPath(r, key, d.Traits[key], d.Confidence, claims)
	}
}

func applyPath(r *schema.Report, path string, v any, confidence float64, claims map[string]float64) {
	switch {
	case path == "agent.id":
		if s, ok := toString(v); ok && claim(claims, path, confidence) {
			r.Traits.Agent.ID = schema.Ptr(s)
		}
	case path == "ide.id":
		if s, ok := toString(v); ok && claim(claims, path, confidence) {
			r.Traits.IDE.ID = schema.Ptr(s)
		}
	case path == "ci.id":
		if s, ok := toString(v); ok && claim(claims, path, confidence) {
			r.Traits.CI.ID = schema.Ptr(s)
		}
	case path == "ci.vendor":
		if s, ok := toString(v); ok {
			r.Traits.CI.Vendor = schema.Ptr(s)
		}
	case path == "ci.name":
		if s, ok := toString(v); ok {
			r.Traits.CI.Name = schema.Ptr(s)
		}
	case path == "ci.is_pr":
		if b, ok := toBool(v); ok {
			r.Traits.CI.IsPR = schema.Ptr(b)
		}
	case path == "ci.branch":
		if s, ok := toString(v); ok {
			r.Traits.CI.Branch = schema.Ptr(s)
		}
	case strings.HasPrefix(path, "terminal."):
		applyTerminal(&r.Traits.Terminal, path, v)
	}
	// Unroutable keys are dropped: the patch dialect is part of the
	// merger contract and unknown prefixes are not errors.
}

func applyTerminal(t *schema.TerminalTraits, path string, v any) {
	switch path {
	case "terminal.interactive":
		if b, ok := toBool(v); ok {
			t.Interactive = b
		}
	case "terminal.color_level":
		if s, ok := toString(v); ok {
			t.ColorLevel = schema.ColorLevel(s)
		}
	case "terminal.stdin.tty":
		if b, ok := toBool(v); ok {
			t.Stdin.TTY = b
		}
	case "terminal.stdin.piped":
		if b, ok := toBool(v); ok {
			t.Stdin.Piped = b
		}
	case "terminal.stdout.tty":
		if b, ok := toBool(v); ok {
			t.Stdout.TTY = b
		}
	case "terminal.stdout.piped":
		if b, ok := toBool(v); ok {
			t.Stdout.Piped = b
		}
	case "terminal.stderr.tty":
		if b, ok := toBool(v); ok {
			t.Stderr.TTY = b
		}
	case "terminal.stderr.piped":
		if b, ok := toBool(v); ok {
			t.Stderr.Piped = b
		}
	case "terminal.supports_hyperlinks":
		if b, ok := toBool(v); ok {
			t.SupportsHyperlinks = b
		}
	}
}

// claim records the winning confidence for an identifier path. The
// first setter wins ties, so merging the same Detection list twice is
// equivalent to merging it once.
func claim(claims map[string]float64, path string, confidence float64) bool {
	prev, held := claims[path]
	if held && confidence <= prev {
		return false
	}
	claims[path] = confidence
	return true
}

func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case schema.ColorLevel:
		return string(s), true
	}
	return "", false
}

func toBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}
