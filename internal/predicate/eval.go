package predicate

import (
	"fmt"
	"strconv"

	"github.com/envsense/envsense/internal/schema"
)

// Mode selects how multiple predicate results combine into the overall
// boolean.
type Mode string

const (
	// ModeAll requires every predicate to be true. Default.
	ModeAll Mode = "all"
	// ModeAny requires at least one predicate to be true.
	ModeAny Mode = "any"
)

// Result is the evaluation of one expression: the extracted value (a
// JSON scalar for field access, a boolean otherwise), its truthiness
// for combination, and a short human-readable reason.
type Result struct {
	Predicate string
	Value     any
	Bool      bool
	Reason    string
}

// Eval evaluates a parsed expression against a report. Errors are
// predicate errors (exit 2); a false outcome is not an error.
func Eval(r *schema.Report, e Expr) (Result, error) {
	res := Result{Predicate: e.Raw}

	switch e.Kind {
	case KindContext:
		if e.Path == "terminal" {
			// terminal is never a member of the context set; the bare
			// name answers the interactive question instead.
			v := r.Traits.Terminal.Interactive
			res.Value = v
			res.Reason = fmt.Sprintf("terminal.interactive is %t", v)
		} else {
			v := r.HasContext(schema.Context(e.Path))
			res.Value = v
			if v {
				res.Reason = fmt.Sprintf("%q context is active", e.Path)
			} else {
				res.Reason = fmt.Sprintf("%q context is not active", e.Path)
			}
		}

	case KindField:
		v, _ := r.Lookup(e.Path)
		res.Value = v
		if v == nil {
			res.Reason = fmt.Sprintf("%s is not set", e.Path)
		} else {
			res.Reason = fmt.Sprintf("%s = %s", e.Path, ScalarString(v))
		}

	case KindCompare:
		v, _ := r.Lookup(e.Path)
		eq := v != nil && ScalarString(v) == e.Literal
		res.Value = eq
		if v == nil {
			res.Reason = fmt.Sprintf("%s is not set (want %q)", e.Path, e.Literal)
		} else if eq {
			res.Reason = fmt.Sprintf("%s = %q", e.Path, e.Literal)
		} else {
			res.Reason = fmt.Sprintf("%s = %q (want %q)", e.Path, ScalarString(v), e.Literal)
		}
	}

	if e.Negated {
		b, ok := res.Value.(bool)
		if !ok {
			return res, &SyntaxError{Input: e.Raw, Reason: "cannot negate a non-boolean field access"}
		}
		res.Value = !b
		res.Reason = "negated: " + res.Reason
	}

	res.Bool = Truthy(res.Value)
	return res, nil
}

// Overall folds per-predicate booleans under the combination mode.
func Overall(results []Result, mode Mode) bool {
	if mode == ModeAny {
		for _, r := range results {
			if r.Bool {
				return true
			}
		}
		return false
	}
	for _, r := range results {
		if !r.Bool {
			return false
		}
	}
	return true
}

// Truthy maps a JSON scalar to its boolean contribution: nil and false
// are false, empty strings are false, everything else is true.
func Truthy(v any) bool {
	switch s := v.(type) {
	case nil:
		return false
	case bool:
		return s
	case string:
		return s != ""
	case float64:
		return s != 0
	}
	return true
}

// ScalarString renders a JSON scalar the way check prints it.
func ScalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(s)
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}
