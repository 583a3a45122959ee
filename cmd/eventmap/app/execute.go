package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/culturalmap/eventmap/internal/cmd/constants"
)

// Execute runs the eventmap CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "eventmap",
		Short:   "Cultural event to asset reconciliation",
		Version: a.version,
		Long: `Eventmap reconciles event records gathered from many independent
calendars against a catalog of cultural assets. It matches every event
to the asset it takes place at, merges records that describe the same
occurrence, and assigns categories and activity tags deterministically.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    constants.GroupPipeline,
		Title: "Pipeline Commands:",
	})

	rootCmd.AddGroup(&cobra.Group{
		ID:    constants.GroupInspect,
		Title: "Inspection Commands:",
	})

	// Add global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default is ./eventmap.yaml or $HOME/eventmap.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringP("format", "o", "", "output format: table, json, yaml, wide")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().String("now", "", "pin the clock (RFC3339 or unix seconds; default SOURCE_DATE_EPOCH, then wall time)")

	rootCmd.SetVersionTemplate("eventmap {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs. It reloads the config
// when --config names a file, applies the root flags, rebuilds the logger
// and tags the command context with a run id.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// These flags are defined as persistent flags in createRootCommand, so errors indicate programming errors
	if cmd.Flags().Changed("config") {
		cfg, err := LoadConfig(mustGetString(cmd, "config"))
		if err != nil {
			return err
		}
		a.config = cfg
	}

	UpdateFromFlags(a.config,
		mustGetBool(cmd, "verbose"),
		mustGetBool(cmd, "quiet"),
		mustGetBool(cmd, "no-color"),
		mustGetString(cmd, "format"),
		mustGetString(cmd, "log-level"),
		mustGetString(cmd, "now"),
	)
	if err := a.config.Check(); err != nil {
		return err
	}

	logger := NewLogger(a.config)
	ctx, runLogger := withRun(cmd.Context(), &logger)
	a.logger = runLogger
	cmd.SetContext(ctx)

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Pipeline commands
	rootCmd.AddCommand(a.CreateBuildCommand())
	rootCmd.AddCommand(a.CreateMergeCommand())
	rootCmd.AddCommand(a.CreateRunCommand())
	rootCmd.AddCommand(a.CreateValidateCommand())

	// Inspection commands
	rootCmd.AddCommand(a.CreateAuditCommand())
	rootCmd.AddCommand(a.CreateMatchCommand())

	// Utility commands
	rootCmd.AddCommand(a.CreateVersionCommand())
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
