package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/envsense/envsense/internal/config"
	"github.com/envsense/envsense/internal/logger"
)

var (
	configPath string
	noColor    bool
	debugFlag  bool

	cfg config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "envsense",
	Short: "envsense - detect the execution context of a terminal session",
	Long: `envsense inspects the ambient process environment and reports what kind
of execution context it is running in: whether an AI coding agent is
driving the session, which editor or IDE hosts the terminal, whether a
CI system is executing the process, and the capabilities of the
attached standard streams.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		debug := debugFlag
		if v, err := strconv.ParseBool(os.Getenv("ENVSENSE_DEBUG")); err == nil {
			debug = debug || v
		}
		log, err = logger.New(debug)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML file (default: <user-config-dir>/envsense/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colour in pretty output")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging to stderr")
}

// exitError carries an explicit process exit code through cobra. check
// uses it to distinguish a false result (1) from predicate errors (2).
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// usageErr builds an exit-1 usage error with the command's help text
// appended.
func usageErr(cmd *cobra.Command, format string, args ...any) error {
	return &exitError{
		code: 1,
		msg:  fmt.Sprintf(format, args...) + "\n\n" + cmd.UsageString(),
	}
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			fmt.Fprintln(os.Stderr, ee.msg)
		}
		return ee.code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}
