package predicate

import (
	"fmt"
	"strings"

	"github.com/envsense/envsense/internal/schema"
)

// listContexts is the order contexts appear in --list output. terminal
// is listed last: it is a legal context test but never a member of the
// report's context set.
var listContexts = []string{"agent", "ide", "ci", "container", "remote", "terminal"}

// contextDescription covers the bare-terminal special case on top of
// the schema docs.
func contextDescription(name string) string {
	if name == "terminal" {
		return "stdin and stdout are both TTYs (alias for terminal.interactive)"
	}
	return schema.ContextDocs[schema.Context(name)]
}

// FormatList enumerates every legal predicate for `check --list`.
func FormatList(withDescriptions bool) string {
	var b strings.Builder

	b.WriteString("Contexts:\n")
	for _, name := range listContexts {
		if withDescriptions {
			fmt.Fprintf(&b, "  %-12s %s\n", name, contextDescription(name))
		} else {
			fmt.Fprintf(&b, "  %s\n", name)
		}
	}

	b.WriteString("\nFields:\n")
	for _, context := range []string{"agent", "ide", "terminal", "ci"} {
		for _, doc := range schema.ContextFields[context] {
			if withDescriptions {
				fmt.Fprintf(&b, "  %-30s %s\n", doc.Path, doc.Description)
			} else {
				fmt.Fprintf(&b, "  %s\n", doc.Path)
			}
		}
	}

	return b.String()
}
