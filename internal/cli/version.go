package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/envsense/envsense/internal/schema"
)

// Populated via -ldflags at release time.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and report-schema information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), versionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// versionString pairs the binary version with the report schema version,
// which is what JSON consumers actually need to match against. Build
// provenance is appended only when the release process stamped it.
func versionString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "envsense %s (schema %s)\n", Version, schema.Version)
	if GitCommit != "unknown" || BuildDate != "unknown" {
		fmt.Fprintf(&b, "commit %s, built %s\n", GitCommit, BuildDate)
	}
	return b.String()
}
