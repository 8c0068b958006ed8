package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/envsense/envsense/internal/detect"
	"github.com/envsense/envsense/internal/predicate"
	"github.com/envsense/envsense/internal/schema"
	"github.com/envsense/envsense/internal/snapshot"
)

var (
	checkAny          bool
	checkAll          bool
	checkQuiet        bool
	checkExplain      bool
	checkJSON         bool
	checkList         bool
	checkLenient      bool
	checkDescriptions bool
)

var checkCmd = &cobra.Command{
	Use:   "check [predicate...]",
	Short: "Evaluate predicates against the detected context",
	Long: `Evaluate one or more predicates against the detection report and exit 0
when the overall result is true, 1 when it is false, and 2 on syntax or
field-path errors.

  envsense check agent
  envsense check agent.id=cursor
  envsense check --any ci agent
  envsense check '!ci'`,
	RunE: checkCommand,
}

func init() {
	checkCmd.Flags().BoolVar(&checkAny, "any", false, "Overall result is true when at least one predicate is true")
	checkCmd.Flags().BoolVar(&checkAll, "all", false, "Overall result is true only when every predicate is true (default)")
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "Suppress stdout, keep the exit code")
	checkCmd.Flags().BoolVar(&checkExplain, "explain", false, "Append # reason: <text> to each result")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Emit results as JSON")
	checkCmd.Flags().BoolVar(&checkList, "list", false, "List available contexts and fields")
	checkCmd.Flags().BoolVar(&checkLenient, "lenient", false, "Treat unknown fields as false instead of erroring")
	checkCmd.Flags().BoolVar(&checkDescriptions, "descriptions", false, "Annotate --list output with descriptions")
	rootCmd.AddCommand(checkCmd)
}

type checkOptions struct {
	mode    predicate.Mode
	quiet   bool
	explain bool
	json    bool
	lenient bool
}

// checkOutcome is everything checkCommand prints: the stdout payload,
// deprecation warnings for stderr, and the process exit code. errMsg is
// the predicate-error text when code is 2.
type checkOutcome struct {
	stdout   string
	warnings []string
	code     int
	errMsg   string
}

func checkCommand(cmd *cobra.Command, args []string) error {
	if checkAny && checkAll {
		return usageErr(cmd, "--any and --all are mutually exclusive")
	}
	if checkList {
		if len(args) > 0 || checkAny || checkAll || checkQuiet {
			return usageErr(cmd, "--list cannot be combined with predicates, --any, --all, or --quiet")
		}
		fmt.Fprint(cmd.OutOrStdout(), predicate.FormatList(checkDescriptions || cfg.Descriptions))
		return nil
	}
	if checkDescriptions {
		return usageErr(cmd, "--descriptions requires --list")
	}
	if len(args) == 0 {
		return usageErr(cmd, "missing predicates (try `envsense check --list`)")
	}

	mode := predicate.ModeAll
	if checkAny {
		mode = predicate.ModeAny
	}

	snap := snapshot.Capture()
	report := detect.Run(snap, log)

	outcome := runChecks(&report, args, checkOptions{
		mode:    mode,
		quiet:   checkQuiet,
		explain: checkExplain,
		json:    checkJSON,
		lenient: checkLenient,
	})

	// Deprecation warnings go to stderr regardless of --quiet and never
	// affect the exit code.
	for _, w := range outcome.warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), w)
	}
	if outcome.stdout != "" {
		fmt.Fprint(cmd.OutOrStdout(), outcome.stdout)
	}
	if outcome.code == 0 {
		return nil
	}
	return &exitError{code: outcome.code, msg: outcome.errMsg}
}

// runChecks parses and evaluates every predicate against the report.
// Pure with respect to the process: all I/O decisions live in the
// returned outcome.
func runChecks(report *schema.Report, args []string, opts checkOptions) checkOutcome {
	var outcome checkOutcome
	results := make([]predicate.Result, 0, len(args))

	for _, arg := range args {
		expr, err := predicate.Parse(arg)
		if err == nil {
			if expr.Warning != "" {
				outcome.warnings = append(outcome.warnings, expr.Warning)
			}
			var res predicate.Result
			res, err = predicate.Eval(report, expr)
			if err == nil {
				results = append(results, res)
				continue
			}
		}

		var fieldErr *predicate.FieldError
		if opts.lenient && errors.As(err, &fieldErr) {
			results = append(results, predicate.Result{
				Predicate: arg,
				Value:     false,
				Reason:    fieldErr.Reason,
			})
			continue
		}
		outcome.code = 2
		outcome.errMsg = err.Error()
		return outcome
	}

	overall := predicate.Overall(results, opts.mode)
	if !opts.quiet {
		if opts.json {
			outcome.stdout = renderChecksJSON(results, overall, opts)
		} else {
			outcome.stdout = renderChecksText(results, opts)
		}
	}
	if !overall {
		outcome.code = 1
	}
	return outcome
}

func renderChecksText(results []predicate.Result, opts checkOptions) string {
	var b strings.Builder
	for _, res := range results {
		if len(results) == 1 {
			b.WriteString(predicate.ScalarString(res.Value))
		} else {
			fmt.Fprintf(&b, "%s: %s", res.Predicate, predicate.ScalarString(res.Value))
		}
		if opts.explain {
			fmt.Fprintf(&b, "  # reason: %s", res.Reason)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

type checkJSONEntry struct {
	Predicate string `json:"predicate"`
	Result    any    `json:"result"`
	Reason    string `json:"reason,omitempty"`
}

type checkJSONDoc struct {
	Overall bool             `json:"overall"`
	Mode    string           `json:"mode"`
	Checks  []checkJSONEntry `json:"checks"`
}

func renderChecksJSON(results []predicate.Result, overall bool, opts checkOptions) string {
	doc := checkJSONDoc{
		Overall: overall,
		Mode:    string(opts.mode),
		Checks:  make([]checkJSONEntry, 0, len(results)),
	}
	for _, res := range results {
		entry := checkJSONEntry{Predicate: res.Predicate, Result: res.Value}
		if opts.explain {
			entry.Reason = res.Reason
		}
		doc.Checks = append(doc.Checks, entry)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if opts.explain {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return ""
	}
	return buf.String()
}
