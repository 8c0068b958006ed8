package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/envsense/envsense/internal/detect"
	"github.com/envsense/envsense/internal/render"
	"github.com/envsense/envsense/internal/schema"
	"github.com/envsense/envsense/internal/snapshot"
)

var (
	infoJSON    bool
	infoFields  string
	infoTree    bool
	infoCompact bool
	infoExplain bool
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the detected execution context",
	Long: `Run the detection pipeline and print the report, either as a pretty
human-readable rendering grouped by Contexts/Traits or as a single JSON
document.

  envsense info
  envsense info --json --fields contexts,traits`,
	RunE: infoCommand,
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Emit the report as JSON")
	infoCmd.Flags().StringVar(&infoFields, "fields", "", "Comma-separated top-level fields to retain (contexts,traits,evidence,version)")
	infoCmd.Flags().BoolVar(&infoTree, "tree", false, "Tree rendering of the pretty output")
	infoCmd.Flags().BoolVar(&infoCompact, "compact", false, "Single-line rendering of the pretty output")
	infoCmd.Flags().BoolVar(&infoExplain, "explain", false, "Include evidence; pretty-print JSON output")
	rootCmd.AddCommand(infoCmd)
}

func infoCommand(cmd *cobra.Command, args []string) error {
	if infoTree && infoCompact {
		return usageErr(cmd, "--tree and --compact are mutually exclusive")
	}
	fields, err := parseFields(infoFields)
	if err != nil {
		return usageErr(cmd, "%s", err)
	}

	snap := snapshot.Capture()
	report := detect.Run(snap, log)

	if infoJSON {
		indent := infoExplain || snap.Stdout().TTY
		data, err := report.Encode(fields, indent)
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	opts := render.Options{
		Tree:    infoTree || (cfg.Tree && !infoCompact),
		Compact: infoCompact || (cfg.Compact && !infoTree),
		NoColor: colorDisabled(snap),
		Explain: infoExplain,
		Fields:  fields,
	}
	fmt.Fprint(cmd.OutOrStdout(), render.Render(&report, opts))
	return nil
}

func parseFields(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if !schema.KnownField(f) {
			return nil, fmt.Errorf("unknown field %q (valid: contexts, traits, evidence, version)", f)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// colorDisabled applies the presentation precedence: explicit flag and
// NO_COLOR beat the config file; "auto" follows the stdout TTY state.
func colorDisabled(snap *snapshot.Snapshot) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return true
	}
	switch cfg.Color {
	case "never":
		return true
	case "always":
		return false
	}
	return !snap.Stdout().TTY
}
