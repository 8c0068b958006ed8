package schema

// FieldDoc pairs a dotted trait path with its one-line description for
// `check --list --descriptions`.
type FieldDoc struct {
	Path        string
	Description string
}

// ContextDocs describes the context tags themselves.
var ContextDocs = map[Context]string{
	ContextAgent:     "an AI coding agent is driving the session",
	ContextIDE:       "an editor or IDE hosts the terminal",
	ContextCI:        "a continuous-integration system is executing the process",
	ContextContainer: "the process runs inside a container",
	ContextRemote:    "the session is attached to a remote machine",
}

// ContextFields lists the known trait paths per context, in display
// order. Contexts with no trait branch (container, remote) map to an
// empty list. Read-only.
var ContextFields = map[string][]FieldDoc{
	"agent": {
		{"agent.id", "identifier of the detected agent"},
	},
	"ide": {
		{"ide.id", "identifier of the detected editor or IDE"},
	},
	"terminal": {
		{"terminal.interactive", "stdin and stdout are both TTYs"},
		{"terminal.color_level", "colour depth of stdout (none|ansi16|ansi256|truecolor)"},
		{"terminal.stdin.tty", "stdin is a TTY"},
		{"terminal.stdin.piped", "stdin is piped (negation of tty)"},
		{"terminal.stdout.tty", "stdout is a TTY"},
		{"terminal.stdout.piped", "stdout is piped (negation of tty)"},
		{"terminal.stderr.tty", "stderr is a TTY"},
		{"terminal.stderr.piped", "stderr is piped (negation of tty)"},
		{"terminal.supports_hyperlinks", "stdout supports OSC 8 hyperlinks"},
	},
	"ci": {
		{"ci.id", "identifier of the detected CI system"},
		{"ci.vendor", "CI vendor slug"},
		{"ci.name", "human-readable CI system name"},
		{"ci.is_pr", "the build runs for a pull/merge request"},
		{"ci.branch", "branch name reported by the CI system"},
	},
	"container": {},
	"remote":    {},
}

// FieldPaths returns just the known paths for a context, for diagnostics.
func FieldPaths(context string) []string {
	docs, ok := ContextFields[context]
	if !ok {
		return nil
	}
	paths := make([]string, 0, len(docs))
	for _, d := range docs {
		paths = append(paths, d.Path)
	}
	return paths
}

// legacyTraits maps the legacy flat trait keys onto the nested layout.
// Accepted as merger patch keys and as `trait:` predicate forms; the
// detectors themselves only speak the nested dialect.
var legacyTraits = map[string]string{
	"is_interactive":      "terminal.interactive",
	"color_level":         "terminal.color_level",
	"is_tty_stdin":        "terminal.stdin.tty",
	"is_tty_stdout":       "terminal.stdout.tty",
	"is_tty_stderr":       "terminal.stderr.tty",
	"supports_hyperlinks": "terminal.supports_hyperlinks",
}

// LegacyTraitPath resolves a legacy flat trait key to its nested path.
func LegacyTraitPath(key string) (string, bool) {
	path, ok := legacyTraits[key]
	return path, ok
}

// legacyFacets maps the deprecated facet identifiers onto trait paths.
var legacyFacets = map[string]string{
	"agent_id":  "agent.id",
	"ide_id":    "ide.id",
	"ci_id":     "ci.id",
	"ci_vendor": "ci.vendor",
}

// LegacyFacetPath resolves a deprecated `facet:` key to its trait path.
func LegacyFacetPath(key string) (string, bool) {
	path, ok := legacyFacets[key]
	return path, ok
}

// Lookup resolves a dotted trait path against the report. The second
// return is false when the path is not part of the schema at all; a nil
// value with true means the path is known but unset. Context tag names
// are also accepted and resolve to their membership boolean, which lets
// evidence `supports` entries be checked uniformly.
func (r *Report) Lookup(path string) (any, bool) {
	if KnownContext(path) {
		return r.HasContext(Context(path)), true
	}
	switch path {
	case "agent.id":
		return deref(r.Traits.Agent.ID), true
	case "ide.id":
		return deref(r.Traits.IDE.ID), true
	case "ci.id":
		return deref(r.Traits.CI.ID), true
	case "ci.vendor":
		return deref(r.Traits.CI.Vendor), true
	case "ci.name":
		return deref(r.Traits.CI.Name), true
	case "ci.is_pr":
		return deref(r.Traits.CI.IsPR), true
	case "ci.branch":
		return deref(r.Traits.CI.Branch), true
	case "terminal.interactive":
		return r.Traits.Terminal.Interactive, true
	case "terminal.color_level":
		return string(r.Traits.Terminal.ColorLevel), true
	case "terminal.stdin.tty":
		return r.Traits.Terminal.Stdin.TTY, true
	case "terminal.stdin.piped":
		return r.Traits.Terminal.Stdin.Piped, true
	case "terminal.stdout.tty":
		return r.Traits.Terminal.Stdout.TTY, true
	case "terminal.stdout.piped":
		return r.Traits.Terminal.Stdout.Piped, true
	case "terminal.stderr.tty":
		return r.Traits.Terminal.Stderr.TTY, true
	case "terminal.stderr.piped":
		return r.Traits.Terminal.Stderr.Piped, true
	case "terminal.supports_hyperlinks":
		return r.Traits.Terminal.SupportsHyperlinks, true
	}
	return nil, false
}

// deref unwraps an optional trait field to a JSON scalar, mapping an
// absent pointer to nil.
func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
