// Package predicate implements the query surface of the check
// subcommand: a small expression language over the report's context
// tags and trait tree, with deprecated facet:/trait: forms accepted for
// compatibility.
package predicate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/envsense/envsense/internal/schema"
)

// Kind is the shape of a parsed expression.
type Kind int

const (
	// KindContext tests membership of a context tag.
	KindContext Kind = iota
	// KindField extracts a scalar from the trait tree.
	KindField
	// KindCompare compares the scalar at a path against a literal.
	KindCompare
)

// Expr is one parsed check expression.
type Expr struct {
	Raw     string
	Negated bool
	Kind    Kind
	// Path is the context name (KindContext) or dotted trait path.
	Path    string
	Literal string
	// Warning is a deprecation notice for legacy forms, empty otherwise.
	Warning string
}

// SyntaxError is a malformed expression: empty input, invalid
// characters, or a broken legacy form. Exit code 2.
type SyntaxError struct {
	Input  string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid predicate syntax: %q: %s", e.Input, e.Reason)
}

// FieldError is a structurally valid expression naming an unknown
// context or field. Exit code 2.
type FieldError struct {
	Input     string
	Reason    string
	Available []string
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("invalid field path: %q: %s", e.Input, e.Reason)
	if len(e.Available) > 0 {
		msg += "\navailable fields: " + strings.Join(e.Available, ", ")
	}
	return msg
}

// First path segments accepted by the grammar. container and remote
// carry no fields but are legal context tests.
var firstSegments = []string{"agent", "ide", "ci", "container", "remote", "terminal"}

var pathPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+)*$`)

// Parse parses a single check expression.
func Parse(input string) (Expr, error) {
	e := Expr{Raw: input}
	if input == "" {
		return e, &SyntaxError{Input: input, Reason: "empty predicate"}
	}

	body := input
	if strings.HasPrefix(body, "!") {
		e.Negated = true
		body = body[1:]
	}
	if body == "" {
		return e, &SyntaxError{Input: input, Reason: "nothing to negate"}
	}

	switch {
	case strings.HasPrefix(body, "facet:"):
		return parseLegacyFacet(e, input, body[len("facet:"):])
	case strings.HasPrefix(body, "trait:"):
		return parseLegacyTrait(e, input, body[len("trait:"):])
	}

	// The charset restriction covers the path only; comparison literals
	// after '=' are opaque (override slugs may contain any byte).
	path, literal, hasLiteral := strings.Cut(body, "=")
	if strings.Contains(path, ":") {
		return e, &SyntaxError{Input: input, Reason: "unexpected ':' (only facet: and trait: legacy forms use it)"}
	}
	if !pathPattern.MatchString(path) {
		return e, &SyntaxError{Input: input, Reason: "invalid characters in field path (allowed: A-Za-z0-9._- with leading !)"}
	}

	segments := strings.Split(path, ".")
	first := segments[0]
	if !knownFirstSegment(first) {
		return e, &FieldError{
			Input:     input,
			Reason:    fmt.Sprintf("unknown context %q", first),
			Available: firstSegments,
		}
	}

	if len(segments) == 1 {
		if hasLiteral {
			return e, &SyntaxError{Input: input, Reason: "comparison requires a field path, not a bare context"}
		}
		e.Kind = KindContext
		e.Path = first
		return e, nil
	}

	if !knownPath(path) {
		return e, &FieldError{
			Input:     input,
			Reason:    fmt.Sprintf("unknown field %q for context %q", path, first),
			Available: schema.FieldPaths(first),
		}
	}
	e.Path = path
	if hasLiteral {
		e.Kind = KindCompare
		e.Literal = literal
	} else {
		e.Kind = KindField
	}
	return e, nil
}

// parseLegacyFacet handles `facet:key=value`, the deprecated spelling of
// `<context>.<key>=value`.
func parseLegacyFacet(e Expr, input, body string) (Expr, error) {
	key, value, ok := strings.Cut(body, "=")
	if !ok || key == "" {
		return e, &SyntaxError{Input: input, Reason: "malformed facet predicate, expected facet:key=value"}
	}
	path, known := schema.LegacyFacetPath(key)
	if !known {
		return e, &SyntaxError{Input: input, Reason: fmt.Sprintf("unknown facet %q", key)}
	}
	e.Kind = KindCompare
	e.Path = path
	e.Literal = value
	e.Warning = fmt.Sprintf("warning: %q is deprecated; use %q", input, fmt.Sprintf("%s=%s", path, value))
	return e, nil
}

// parseLegacyTrait handles `trait:key`, the deprecated spelling of the
// corresponding terminal.* path.
func parseLegacyTrait(e Expr, input, body string) (Expr, error) {
	if body == "" || strings.Contains(body, "=") {
		return e, &SyntaxError{Input: input, Reason: "malformed trait predicate, expected trait:key"}
	}
	path, known := schema.LegacyTraitPath(body)
	if !known {
		return e, &SyntaxError{Input: input, Reason: fmt.Sprintf("unknown trait %q", body)}
	}
	e.Kind = KindField
	e.Path = path
	e.Warning = fmt.Sprintf("warning: %q is deprecated; use %q", input, path)
	return e, nil
}

func knownFirstSegment(name string) bool {
	for _, s := range firstSegments {
		if s == name {
			return true
		}
	}
	return false
}

func knownPath(path string) bool {
	context, _, _ := strings.Cut(path, ".")
	for _, d := range schema.ContextFields[context] {
		if d.Path == path {
			return true
		}
	}
	return false
}
