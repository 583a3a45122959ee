package app

import (
	"github.com/spf13/cobra"

	"github.com/culturalmap/eventmap/cmd/eventmap/cmd/audit"
	"github.com/culturalmap/eventmap/cmd/eventmap/cmd/build"
	"github.com/culturalmap/eventmap/cmd/eventmap/cmd/match"
	"github.com/culturalmap/eventmap/cmd/eventmap/cmd/merge"
	"github.com/culturalmap/eventmap/cmd/eventmap/cmd/run"
	"github.com/culturalmap/eventmap/cmd/eventmap/cmd/validate"
)

// CreateBuildCommand creates the build command with app dependencies.
func (a *App) CreateBuildCommand() *cobra.Command {
	return build.NewCommand(a)
}

// CreateMergeCommand creates the merge command with app dependencies.
func (a *App) CreateMergeCommand() *cobra.Command {
	return merge.NewCommand(a)
}

// CreateRunCommand creates the run command with app dependencies.
func (a *App) CreateRunCommand() *cobra.Command {
	return run.NewCommand(a)
}

// CreateValidateCommand creates the validate command with app dependencies.
func (a *App) CreateValidateCommand() *cobra.Command {
	return validate.NewCommand(a)
}

// CreateAuditCommand creates the audit command with app dependencies.
func (a *App) CreateAuditCommand() *cobra.Command {
	return audit.NewCommand(a)
}

// CreateMatchCommand creates the match command with app dependencies.
func (a *App) CreateMatchCommand() *cobra.Command {
	return match.NewCommand(a)
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("eventmap %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
