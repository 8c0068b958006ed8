package detect

import (
	"strconv"

	"github.com/envsense/envsense/internal/schema"
	"github.com/envsense/envsense/internal/snapshot"
)

// TerminalDetector has no rules: it reads the stream descriptors and the
// colour/hyperlink oracles straight off the snapshot. It never adds
// contexts and always reports full confidence.
type TerminalDetector struct{}

func (TerminalDetector) Name() string { return "terminal" }

func (TerminalDetector) Detect(snap *snapshot.Snapshot) Detection {
	stdin := snap.Stdin()
	stdout := snap.Stdout()
	stderr := snap.Stderr()

	traits := map[string]any{
		"terminal.interactive":         stdin.TTY && stdout.TTY,
		"terminal.color_level":         string(snap.ColorLevel()),
		"terminal.stdin.tty":           stdin.TTY,
		"terminal.stdin.piped":         stdin.Piped(),
		"terminal.stdout.tty":          stdout.TTY,
		"terminal.stdout.piped":        stdout.Piped(),
		"terminal.stderr.tty":          stderr.TTY,
		"terminal.stderr.piped":        stderr.Piped(),
		"terminal.supports_hyperlinks": snap.SupportsHyperlinks(),
	}

	evidence := []schema.Evidence{
		ttyEvidence("stdin", stdin.TTY, "terminal.stdin.tty", "terminal.stdin.piped"),
		ttyEvidence("stdout", stdout.TTY, "terminal.stdout.tty", "terminal.stdout.piped"),
		ttyEvidence("stderr", stderr.TTY, "terminal.stderr.tty", "terminal.stderr.piped"),
		{
			Signal:     schema.SignalTTY,
			Key:        "color_level",
			Value:      schema.Ptr(string(snap.ColorLevel())),
			Supports:   []string{"terminal.color_level"},
			Confidence: schema.ConfidenceTTY,
		},
		{
			Signal:     schema.SignalTTY,
			Key:        "supports_hyperlinks",
			Value:      schema.Ptr(strconv.FormatBool(snap.SupportsHyperlinks())),
			Supports:   []string{"terminal.supports_hyperlinks"},
			Confidence: schema.ConfidenceTTY,
		},
	}

	return Detection{
		Traits:     traits,
		Evidence:   evidence,
		Confidence: schema.ConfidenceTTY,
	}
}

func ttyEvidence(stream string, tty bool, supports ...string) schema.Evidence {
	return schema.Evidence{
		Signal:     schema.SignalTTY,
		Key:        stream,
		Value:      schema.Ptr(strconv.FormatBool(tty)),
		Supports:   supports,
		Confidence: schema.ConfidenceTTY,
	}
}
