// Package validate provides the validate command: the publishing gates
// run against a built event index.
package validate

import (
	"context"
	stderrors "errors"

	"github.com/spf13/cobra"

	"github.com/culturalmap/eventmap/internal/cmd/application"
	"github.com/culturalmap/eventmap/internal/cmd/cmdutil"
	"github.com/culturalmap/eventmap/internal/cmd/constants"
	"github.com/culturalmap/eventmap/internal/config"
	"github.com/culturalmap/eventmap/internal/persistence"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/errors"
	"github.com/culturalmap/eventmap/pkg/save"
	"github.com/culturalmap/eventmap/pkg/validate"
)

// NewCommand creates the validate command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		inputs       *cmdutil.InputFlags
		index        string
		reportPath   string
		maxUnmatched float64
		maxUpcoming  float64
	)

	cmd := &cobra.Command{
		Use:     "validate",
		GroupID: constants.GroupPipeline,
		Short:   "Check a built event index against the publishing gates",
		Long: `Validate checks that every event has an id, title and valid times, that
ids are unique, that every event is indexed with a category from the
asset catalog, and that the unmatched ratios stay within their limits.

The validation report is written even when a gate fails; the command then
exits non-zero.`,
		Example: `  eventmap validate
  eventmap validate --index out/events.index.json --max-unmatched-ratio 0.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.Config()
			inputs.Apply(cfg)
			if index != "" {
				cfg.OutputFile = index
			}
			if reportPath != "" {
				cfg.ValidationFile = reportPath
			}
			if cmd.Flags().Changed("max-unmatched-ratio") {
				cfg.Validate.MaxUnmatchedRatio = maxUnmatched
			}
			if cmd.Flags().Changed("max-upcoming-unmatched-ratio") {
				cfg.Validate.MaxUpcomingUnmatchedRatio = maxUpcoming
			}

			events, err := persistence.LoadEvents(cfg.EventsFile, true)
			if err != nil {
				return err
			}
			indexed, err := persistence.LoadIndexedEvents(cfg.OutputFile)
			if err != nil {
				return err
			}
			assets, err := persistence.LoadAssets(cfg.AssetsFile)
			if err != nil {
				return err
			}

			report, err := Run(cmd.Context(), app, cfg, events, indexed, assets)
			if report != nil {
				if perr := printReport(cmd.OutOrStdout(), app.OutputFormat(), report); perr != nil {
					return perr
				}
			}
			return err
		},
	}

	inputs = cmdutil.AddInputFlags(cmd)
	cmd.Flags().StringVar(&index, "index", "", "Event index to validate (overrides output_file)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Validation report path (overrides validation_file)")
	cmd.Flags().Float64Var(&maxUnmatched, "max-unmatched-ratio", 0, "Maximum unmatched/total ratio")
	cmd.Flags().Float64Var(&maxUpcoming, "max-upcoming-unmatched-ratio", 0, "Maximum unmatched/upcoming ratio")

	return cmd
}

// Run checks events against their indexed form and writes the validation
// report. A failed gate still returns the report along with a GateError.
func Run(ctx context.Context, app application.Application, cfg *config.Config, events, indexed []*catalogs.Event, assets []catalogs.Asset) (*validate.Report, error) {
	now, err := app.Clock()
	if err != nil {
		return nil, err
	}

	gate := validate.New(
		validate.WithThresholds(cfg.Thresholds()),
		validate.WithWindowDays(cfg.WindowDays),
		validate.WithClock(now),
		validate.WithFiles(validate.Files{
			Events: cfg.EventsFile,
			Index:  cfg.OutputFile,
			Data:   cfg.AssetsFile,
		}),
	)

	report, checkErr := gate.Check(ctx, events, indexed, catalogs.NewIndex(assets).Allowed())
	var gateErr *errors.GateError
	if checkErr != nil && !stderrors.As(checkErr, &gateErr) {
		return nil, checkErr
	}

	if err := save.Save(report, save.WithPath(cfg.ValidationFile)); err != nil {
		return nil, err
	}
	app.Logger().Info().
		Str("report", cfg.ValidationFile).
		Bool("passed", report.Passed).
		Msg("Wrote validation report")

	return report, checkErr
}
