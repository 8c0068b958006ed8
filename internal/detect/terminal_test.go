package detect

import (
	"testing"

	"github.com/envsense/envsense/internal/schema"
	"github.com/envsense/envsense/internal/snapshot"
)

func TestTerminalDetector(t *testing.T) {
	snap := snapshot.New(nil,
		snapshot.WithTTY(true, true, false),
		snapshot.WithColorLevel(schema.ColorTruecolor),
		snapshot.WithHyperlinks(true),
	)

	det := TerminalDetector{}.Detect(snap)

	if len(det.Contexts) != 0 {
		t.Errorf("terminal detector must not add contexts, got %v", det.Contexts)
	}
	if det.Confidence != 1.0 {
		t.Errorf("terminal detector must report confidence 1.0, got %.1f", det.Confidence)
	}

	want := map[string]any{
		"terminal.interactive":         true,
		"terminal.color_level":         "truecolor",
		"terminal.stdin.tty":           true,
		"terminal.stdin.piped":         false,
		"terminal.stdout.tty":          true,
		"terminal.stdout.piped":        false,
		"terminal.stderr.tty":          false,
		"terminal.stderr.piped":        true,
		"terminal.supports_hyperlinks": true,
	}
	for path, v := range want {
		if det.Traits[path] != v {
			t.Errorf("%s: expected %v, got %v", path, v, det.Traits[path])
		}
	}
}

func TestTerminalDetectorNonInteractive(t *testing.T) {
	// stdout TTY without stdin TTY is not interactive.
	snap := snapshot.New(nil, snapshot.WithTTY(false, true, true))
	det := TerminalDetector{}.Detect(snap)

	if det.Traits["terminal.interactive"] != false {
		t.Error("expected interactive=false when stdin is piped")
	}
}

func TestTerminalEvidence(t *testing.T) {
	snap := snapshot.New(nil, snapshot.WithTTY(true, false, true))
	det := TerminalDetector{}.Detect(snap)

	if len(det.Evidence) != 5 {
		t.Fatalf("expected 5 evidence records, got %d", len(det.Evidence))
	}
	for _, ev := range det.Evidence {
		if ev.Signal != schema.SignalTTY {
			t.Errorf("evidence %s: expected tty signal, got %s", ev.Key, ev.Signal)
		}
		if ev.Confidence != schema.ConfidenceTTY {
			t.Errorf("evidence %s: expected confidence 1.0, got %.1f", ev.Key, ev.Confidence)
		}
		if len(ev.Supports) == 0 {
			t.Errorf("evidence %s: empty supports", ev.Key)
		}
	}
	// Stream evidence order is stdin, stdout, stderr.
	if det.Evidence[0].Key != "stdin" || det.Evidence[1].Key != "stdout" || det.Evidence[2].Key != "stderr" {
		t.Errorf("unexpected evidence order: %s, %s, %s", det.Evidence[0].Key, det.Evidence[1].Key, det.Evidence[2].Key)
	}
}
