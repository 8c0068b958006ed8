package snapshot

import (
	"os"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/envsense/envsense/internal/schema"
)

// probeTTY stats the three standard streams.
func probeTTY() (stdin, stdout, stderr bool) {
	stdin = term.IsTerminal(int(os.Stdin.Fd()))
	stdout = term.IsTerminal(int(os.Stdout.Fd()))
	stderr = term.IsTerminal(int(os.Stderr.Fd()))
	return stdin, stdout, stderr
}

// probeColorLevel asks termenv for the stdout colour profile. termenv
// already honours NO_COLOR and CLICOLOR_FORCE.
func probeColorLevel() schema.ColorLevel {
	switch termenv.NewOutput(os.Stdout).Profile {
	case termenv.TrueColor:
		return schema.ColorTruecolor
	case termenv.ANSI256:
		return schema.ColorANSI256
	case termenv.ANSI:
		return schema.ColorANSI16
	default:
		return schema.ColorNone
	}
}

// hyperlinksFromEnv decides OSC 8 hyperlink support from direct env
// signals only; there is no reliable terminfo capability for it.
func hyperlinksFromEnv(env map[string]string) bool {
	if boolish(env["FORCE_HYPERLINK"]) {
		return true
	}
	if env["DOMTERM"] != "" {
		return true
	}
	if v := env["VTE_VERSION"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 5000 {
			return true
		}
	}
	switch env["TERM_PROGRAM"] {
	case "iTerm.app", "WezTerm", "vscode", "ghostty", "Hyper":
		return true
	}
	if env["WT_SESSION"] != "" { // Windows Terminal
		return true
	}
	if env["KITTY_WINDOW_ID"] != "" {
		return true
	}
	if strings.HasPrefix(env["TERM"], "xterm-kitty") {
		return true
	}
	return false
}
