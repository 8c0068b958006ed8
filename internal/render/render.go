// Package render pretty-prints a report for humans. It is presentation
// only: nothing here feeds back into detection.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/envsense/envsense/internal/schema"
)

// Theme holds the styles used by the pretty renderer.
type Theme struct {
	Header lipgloss.Style
	Branch lipgloss.Style
	Key    lipgloss.Style
	Value  lipgloss.Style
	True   lipgloss.Style
	False  lipgloss.Style
	Muted  lipgloss.Style
}

// DefaultTheme is the coloured theme.
func DefaultTheme() Theme {
	return Theme{
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Branch: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		Key:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		Value:  lipgloss.NewStyle(),
		True:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		False:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// PlainTheme renders without any styling, for --no-color and NO_COLOR.
func PlainTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{Header: plain, Branch: plain, Key: plain, Value: plain, True: plain, False: plain, Muted: plain}
}

// Options selects the rendering variant.
type Options struct {
	Tree    bool
	Compact bool
	NoColor bool
	// Explain appends the evidence section.
	Explain bool
	// Fields limits which top-level sections appear; empty keeps all.
	Fields []string
}

func (o Options) theme() Theme {
	if o.NoColor {
		return PlainTheme()
	}
	return DefaultTheme()
}

func (o Options) keep(section string) bool {
	if len(o.Fields) == 0 {
		return true
	}
	for _, f := range o.Fields {
		if f == section {
			return true
		}
	}
	return false
}

// Render produces the human-readable report grouped by Contexts/Traits.
func Render(r *schema.Report, opts Options) string {
	if opts.Compact {
		return renderCompact(r, opts)
	}

	th := opts.theme()
	var b strings.Builder

	if opts.keep("contexts") {
		b.WriteString(th.Header.Render("Contexts:"))
		b.WriteByte('\n')
		if len(r.Contexts) == 0 {
			fmt.Fprintf(&b, "  %s\n", th.Muted.Render("(none)"))
		} else {
			for _, c := range r.Contexts {
				fmt.Fprintf(&b, "  %s\n", th.Value.Render(string(c)))
			}
		}
		b.WriteByte('\n')
	}

	if opts.keep("traits") {
		b.WriteString(th.Header.Render("Traits:"))
		b.WriteByte('\n')
		renderTraits(&b, r, opts, th)
		b.WriteByte('\n')
	}

	if opts.Explain && opts.keep("evidence") {
		b.WriteString(th.Header.Render("Evidence:"))
		b.WriteByte('\n')
		renderEvidence(&b, r, th)
		b.WriteByte('\n')
	}

	if opts.keep("version") {
		fmt.Fprintf(&b, "%s %s\n", th.Muted.Render("version:"), r.Version)
	}
	return b.String()
}

type pair struct {
	key   string
	value any
}

func branchPairs(r *schema.Report) []struct {
	name  string
	pairs []pair
} {
	t := r.Traits.Terminal
	return []struct {
		name  string
		pairs []pair
	}{
		{"agent", optionalPairs(pair{"id", deref(r.Traits.Agent.ID)})},
		{"ide", optionalPairs(pair{"id", deref(r.Traits.IDE.ID)})},
		{"terminal", []pair{
			{"interactive", t.Interactive},
			{"color_level", string(t.ColorLevel)},
			{"stdin", streamString(t.Stdin)},
			{"stdout", streamString(t.Stdout)},
			{"stderr", streamString(t.Stderr)},
			{"supports_hyperlinks", t.SupportsHyperlinks},
		}},
		{"ci", optionalPairs(
			pair{"id", deref(r.Traits.CI.ID)},
			pair{"vendor", deref(r.Traits.CI.Vendor)},
			pair{"name", deref(r.Traits.CI.Name)},
			pair{"is_pr", deref(r.Traits.CI.IsPR)},
			pair{"branch", deref(r.Traits.CI.Branch)},
		)},
	}
}

func renderTraits(b *strings.Builder, r *schema.Report, opts Options, th Theme) {
	branches := branchPairs(r)
	for bi, branch := range branches {
		if opts.Tree {
			conn := "├─"
			if bi == len(branches)-1 {
				conn = "└─"
			}
			fmt.Fprintf(b, "  %s %s\n", th.Muted.Render(conn), th.Branch.Render(branch.name))
		} else {
			fmt.Fprintf(b, "  %s\n", th.Branch.Render(branch.name+":"))
		}
		if len(branch.pairs) == 0 {
			indent := "    "
			if opts.Tree {
				indent = "  │    "
				if bi == len(branches)-1 {
					indent = "       "
				}
			}
			fmt.Fprintf(b, "%s%s\n", indent, th.Muted.Render("(not detected)"))
			continue
		}
		for pi, p := range branch.pairs {
			if opts.Tree {
				stem := "  │  "
				if bi == len(branches)-1 {
					stem = "     "
				}
				conn := "├─"
				if pi == len(branch.pairs)-1 {
					conn = "└─"
				}
				fmt.Fprintf(b, "%s%s %s %s\n", stem, th.Muted.Render(conn), th.Key.Render(p.key+":"), renderValue(p.value, th))
			} else {
				fmt.Fprintf(b, "    %s %s\n", th.Key.Render(p.key+":"), renderValue(p.value, th))
			}
		}
	}
}

func renderEvidence(b *strings.Builder, r *schema.Report, th Theme) {
	if len(r.Evidence) == 0 {
		fmt.Fprintf(b, "  %s\n", th.Muted.Render("(none)"))
		return
	}
	for _, ev := range r.Evidence {
		value := ""
		if ev.Value != nil {
			value = "=" + *ev.Value
		}
		fmt.Fprintf(b, "  %s %s%s %s %s\n",
			th.Muted.Render("["+string(ev.Signal)+"]"),
			th.Key.Render(ev.Key),
			th.Value.Render(value),
			th.Muted.Render(fmt.Sprintf("(%.1f)", ev.Confidence)),
			th.Muted.Render("→ "+strings.Join(ev.Supports, ", ")))
	}
}

func renderCompact(r *schema.Report, opts Options) string {
	th := opts.theme()
	var parts []string
	if opts.keep("contexts") {
		parts = append(parts, "contexts="+joinContexts(r.Contexts))
	}
	if opts.keep("traits") {
		for _, branch := range branchPairs(r) {
			for _, p := range branch.pairs {
				parts = append(parts, fmt.Sprintf("%s.%s=%s", branch.name, p.key, plainValue(p.value)))
			}
		}
	}
	if opts.keep("version") {
		parts = append(parts, "version="+r.Version)
	}
	return th.Value.Render(strings.Join(parts, " ")) + "\n"
}

func joinContexts(cs []schema.Context) string {
	if len(cs) == 0 {
		return "-"
	}
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = string(c)
	}
	return strings.Join(names, ",")
}

func optionalPairs(candidates ...pair) []pair {
	var out []pair
	for _, p := range candidates {
		if p.value != nil {
			out = append(out, p)
		}
	}
	return out
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func streamString(s schema.StreamTraits) string {
	if s.TTY {
		return "tty"
	}
	return "piped"
}

func renderValue(v any, th Theme) string {
	switch s := v.(type) {
	case bool:
		if s {
			return th.True.Render("true")
		}
		return th.False.Render("false")
	case string:
		return th.Value.Render(s)
	}
	return th.Value.Render(fmt.Sprintf("%v", v))
}

func plainValue(v any) string {
	return fmt.Sprintf("%v", v)
}
