// Package schema defines the versioned report that envsense emits: the
// context tags, the nested trait record, and the evidence trail that
// justifies every populated field. The report is a pure value — it holds
// no references back to the snapshot or the rule table that produced it.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Version is the report schema version. Breaking changes to the JSON
// shape bump the minor component.
const Version = "0.3.0"

// Confidence scale for evidence records. The values are fixed; detectors
// never invent intermediate confidences.
const (
	ConfidenceDirect    = 1.0 // direct env-var match
	ConfidenceInferred  = 0.8 // inferred from indirect signals
	ConfidenceHeuristic = 0.6 // heuristic
	ConfidenceTTY       = 1.0 // TTY oracle, always reliable
)

// Context is a top-level tag describing what kind of environment the
// process runs in.
type Context string

const (
	ContextAgent     Context = "agent"
	ContextIDE       Context = "ide"
	ContextCI        Context = "ci"
	ContextContainer Context = "container"
	ContextRemote    Context = "remote"
)

// KnownContexts lists every context tag a report may carry, in the order
// used for --list output. Read-only.
var KnownContexts = []Context{ContextAgent, ContextIDE, ContextCI, ContextContainer, ContextRemote}

// KnownContext reports whether name is a valid context tag.
func KnownContext(name string) bool {
	for _, c := range KnownContexts {
		if string(c) == name {
			return true
		}
	}
	return false
}

// ColorLevel is the colour depth supported by stdout.
type ColorLevel string

const (
	ColorNone      ColorLevel = "none"
	ColorANSI16    ColorLevel = "ansi16"
	ColorANSI256   ColorLevel = "ansi256"
	ColorTruecolor ColorLevel = "truecolor"
)

// Signal classifies where a piece of evidence came from.
type Signal string

const (
	SignalEnv  Signal = "env"
	SignalTTY  Signal = "tty"
	SignalProc Signal = "proc"
	SignalFS   Signal = "fs"
)

// Evidence witnesses why a trait was set. Value is a copy of the observed
// env-var value, never a reference into the snapshot.
type Evidence struct {
	Signal     Signal   `json:"signal"`
	Key        string   `json:"key"`
	Value      *string  `json:"value,omitempty"`
	Supports   []string `json:"supports"`
	Confidence float64  `json:"confidence"`
}

// StreamTraits describes one standard stream. Piped is always the
// negation of TTY; the merger re-enforces that after composition.
type StreamTraits struct {
	TTY   bool `json:"tty"`
	Piped bool `json:"piped"`
}

// AgentTraits describes a detected AI coding agent.
type AgentTraits struct {
	ID *string `json:"id,omitempty"`
}

// IDETraits describes the editor or IDE hosting the terminal.
type IDETraits struct {
	ID *string `json:"id,omitempty"`
}

// TerminalTraits describes the attached streams and their capabilities.
type TerminalTraits struct {
	Interactive        bool         `json:"interactive"`
	ColorLevel         ColorLevel   `json:"color_level"`
	Stdin              StreamTraits `json:"stdin"`
	Stdout             StreamTraits `json:"stdout"`
	Stderr             StreamTraits `json:"stderr"`
	SupportsHyperlinks bool         `json:"supports_hyperlinks"`
}

// CITraits describes a detected continuous-integration environment.
type CITraits struct {
	ID     *string `json:"id,omitempty"`
	Vendor *string `json:"vendor,omitempty"`
	Name   *string `json:"name,omitempty"`
	IsPR   *bool   `json:"is_pr,omitempty"`
	Branch *string `json:"branch,omitempty"`
}

// Traits is the nested trait record. Exactly four branches.
type Traits struct {
	Agent    AgentTraits    `json:"agent"`
	IDE      IDETraits      `json:"ide"`
	Terminal TerminalTraits `json:"terminal"`
	CI       CITraits       `json:"ci"`
}

// Report is the serialisable detection output.
type Report struct {
	Contexts []Context  `json:"contexts"`
	Traits   Traits     `json:"traits"`
	Evidence []Evidence `json:"evidence"`
	Version  string     `json:"version"`
}

// NewReport returns an empty report carrying the current schema version.
func NewReport() Report {
	return Report{
		Contexts: []Context{},
		Evidence: []Evidence{},
		Version:  Version,
	}
}

// HasContext reports whether tag is present in the context set.
func (r *Report) HasContext(tag Context) bool {
	for _, c := range r.Contexts {
		if c == tag {
			return true
		}
	}
	return false
}

// AddContext inserts tag into the context set, keeping it sorted and
// duplicate-free so serialisation is deterministic.
func (r *Report) AddContext(tag Context) {
	if r.HasContext(tag) {
		return
	}
	r.Contexts = append(r.Contexts, tag)
	sort.Slice(r.Contexts, func(i, j int) bool { return r.Contexts[i] < r.Contexts[j] })
}

// Ptr returns a pointer to v. Optional trait fields are pointers so that
// absent values serialise as omitted rather than null.
func Ptr[T any](v T) *T { return &v }

// topLevelFields is the canonical key order of the report document.
var topLevelFields = []string{"contexts", "traits", "evidence", "version"}

// KnownField reports whether name is a top-level report field usable
// with --fields.
func KnownField(name string) bool {
	for _, f := range topLevelFields {
		if f == name {
			return true
		}
	}
	return false
}

// Encode serialises the report as a single JSON document. fields, when
// non-empty, selects which top-level keys to retain; key order is fixed
// regardless of the order given. indent selects pretty-printing.
func (r *Report) Encode(fields []string, indent bool) ([]byte, error) {
	keep := func(name string) bool {
		if len(fields) == 0 {
			return true
		}
		for _, f := range fields {
			if f == name {
				return true
			}
		}
		return false
	}

	values := map[string]any{
		"contexts": r.Contexts,
		"traits":   r.Traits,
		"evidence": r.Evidence,
		"version":  r.Version,
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, name := range topLevelFields {
		if !keep(name) {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&buf, "%q:", name)
		data, err := json.Marshal(values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte('}')

	if !indent {
		return buf.Bytes(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
