// Package snapshot captures the ambient process environment at one
// instant: the full env-var map, the TTY state of the three standard
// streams, and the colour/hyperlink capabilities of stdout. Detectors
// are pure functions of a Snapshot and must never mutate it.
package snapshot

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/envsense/envsense/internal/schema"
)

// Stream describes one standard stream.
type Stream struct {
	TTY bool
}

// Piped is the negation of TTY.
func (s Stream) Piped() bool { return !s.TTY }

// Overrides is the process-wide implicit state read from ENVSENSE_*
// variables, computed once during snapshot construction and handed to
// the detectors. The sentinel slug "none" is equivalent to the
// corresponding assume-variant.
type Overrides struct {
	Agent string
	IDE   string
	CI    string

	AssumeHuman    bool
	AssumeTerminal bool
	AssumeLocal    bool
}

// Snapshot freezes all detection inputs. Immutable after construction.
type Snapshot struct {
	env       map[string]string
	stdin     Stream
	stdout    Stream
	stderr    Stream
	colors    schema.ColorLevel
	hyperlink bool
	overrides Overrides
}

// Option tweaks snapshot construction; used to inject stream and
// capability oracles in tests and by Capture for the real probes.
type Option func(*Snapshot)

// WithTTY sets the three stream descriptors.
func WithTTY(stdin, stdout, stderr bool) Option {
	return func(s *Snapshot) {
		s.stdin = Stream{TTY: stdin}
		s.stdout = Stream{TTY: stdout}
		s.stderr = Stream{TTY: stderr}
	}
}

// WithColorLevel sets the stdout colour depth oracle.
func WithColorLevel(level schema.ColorLevel) Option {
	return func(s *Snapshot) { s.colors = level }
}

// WithHyperlinks sets the hyperlink support oracle.
func WithHyperlinks(ok bool) Option {
	return func(s *Snapshot) { s.hyperlink = ok }
}

// New builds a snapshot over the given env map. Options supply the
// stream facts; the ENVSENSE_TTY_* seam, when all three variables are
// present and parse as booleans, overrides them. Callers keep ownership
// of nothing: the map is copied.
func New(env map[string]string, opts ...Option) *Snapshot {
	s := &Snapshot{
		env:    make(map[string]string, len(env)),
		colors: schema.ColorNone,
	}
	for k, v := range env {
		s.env[k] = v
	}
	for _, opt := range opts {
		opt(s)
	}
	if stdin, stdout, stderr, ok := ttyOracle(s.env); ok {
		s.stdin = Stream{TTY: stdin}
		s.stdout = Stream{TTY: stdout}
		s.stderr = Stream{TTY: stderr}
	}
	s.overrides = parseOverrides(s.env)
	return s
}

// Capture reads the real process environment and probes the standard
// streams. This is the single production entry point; everything after
// it operates on the frozen value.
func Capture() *Snapshot {
	env := make(map[string]string, len(os.Environ()))
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}

	stdin, stdout, stderr := probeTTY()
	snap := New(env,
		WithTTY(stdin, stdout, stderr),
		WithHyperlinks(hyperlinksFromEnv(env)),
	)
	// Colour depth depends on the post-oracle stdout state: a stream
	// forced non-TTY reports no colour support.
	if snap.stdout.TTY {
		snap.colors = probeColorLevel()
	}
	return snap
}

// Get returns the value of key and whether it is set.
func (s *Snapshot) Get(key string) (string, bool) {
	v, ok := s.env[key]
	return v, ok
}

// KV is one environment entry.
type KV struct {
	Key   string
	Value string
}

// MatchPrefix returns every env entry whose name starts with prefix,
// sorted by name so prefix scans are deterministic.
func (s *Snapshot) MatchPrefix(prefix string) []KV {
	var out []KV
	for k, v := range s.env {
		if strings.HasPrefix(k, prefix) {
			out = append(out, KV{Key: k, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Stdin returns the stdin descriptor.
func (s *Snapshot) Stdin() Stream { return s.stdin }

// Stdout returns the stdout descriptor.
func (s *Snapshot) Stdout() Stream { return s.stdout }

// Stderr returns the stderr descriptor.
func (s *Snapshot) Stderr() Stream { return s.stderr }

// ColorLevel returns the stdout colour depth.
func (s *Snapshot) ColorLevel() schema.ColorLevel { return s.colors }

// SupportsHyperlinks reports whether stdout understands OSC 8.
func (s *Snapshot) SupportsHyperlinks() bool { return s.hyperlink }

// Overrides returns the ENVSENSE_* override state.
func (s *Snapshot) Overrides() Overrides { return s.overrides }

// ttyOracle reads the documented test seam. It only takes effect when
// all three variables are present and parse as booleans.
func ttyOracle(env map[string]string) (stdin, stdout, stderr, ok bool) {
	parse := func(key string) (bool, bool) {
		raw, present := env[key]
		if !present {
			return false, false
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return false, false
		}
		return b, true
	}
	var okIn, okOut, okErr bool
	stdin, okIn = parse("ENVSENSE_TTY_STDIN")
	stdout, okOut = parse("ENVSENSE_TTY_STDOUT")
	stderr, okErr = parse("ENVSENSE_TTY_STDERR")
	return stdin, stdout, stderr, okIn && okOut && okErr
}

func parseOverrides(env map[string]string) Overrides {
	var o Overrides
	o.AssumeHuman = boolish(env["ENVSENSE_ASSUME_HUMAN"])
	o.AssumeTerminal = boolish(env["ENVSENSE_ASSUME_TERMINAL"])
	o.AssumeLocal = boolish(env["ENVSENSE_ASSUME_LOCAL"])

	// Malformed slugs are accepted as opaque identifiers; only the
	// sentinel "none" is interpreted.
	if slug := env["ENVSENSE_AGENT"]; slug != "" {
		if slug == "none" {
			o.AssumeHuman = true
		} else {
			o.Agent = slug
		}
	}
	if slug := env["ENVSENSE_IDE"]; slug != "" {
		if slug == "none" {
			o.AssumeTerminal = true
		} else {
			o.IDE = slug
		}
	}
	if slug := env["ENVSENSE_CI"]; slug != "" {
		if slug == "none" {
			o.AssumeLocal = true
		} else {
			o.CI = slug
		}
	}
	return o
}

func boolish(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
