// Package audit provides the audit command: a coverage review of a built
// event index against the asset catalog.
package audit

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/culturalmap/eventmap/internal/cmd/application"
	"github.com/culturalmap/eventmap/internal/cmd/constants"
	"github.com/culturalmap/eventmap/internal/config"
	"github.com/culturalmap/eventmap/internal/persistence"
	"github.com/culturalmap/eventmap/pkg/audit"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/save"
)

// NewCommand creates the audit command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		assets      string
		index       string
		reportPath  string
		maxExamples int
	)

	cmd := &cobra.Command{
		Use:     "audit",
		GroupID: constants.GroupInspect,
		Short:   "Audit event coverage against the asset catalog",
		Long: `Audit lists upcoming events that matched no asset, events carrying
categories outside the catalog's set, and festival assets whose text only
mentions past years, flagging those with no probable upcoming event.`,
		Example: `  eventmap audit
  eventmap audit --index out/events.index.json --max-examples 100 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.Config()
			if assets != "" {
				cfg.AssetsFile = assets
			}
			if index != "" {
				cfg.OutputFile = index
			}
			if reportPath != "" {
				cfg.AuditFile = reportPath
			}

			catalog, err := persistence.LoadAssets(cfg.AssetsFile)
			if err != nil {
				return err
			}
			events, err := persistence.LoadIndexedEvents(cfg.OutputFile)
			if err != nil {
				return err
			}

			report, err := Run(cmd.Context(), app, cfg, catalog, events, maxExamples)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), app.OutputFormat(), report)
		},
	}

	cmd.Flags().StringVar(&assets, "assets", "", "Asset catalog JSON (overrides assets_file)")
	cmd.Flags().StringVar(&index, "index", "", "Event index to audit (overrides output_file)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Audit report path (overrides audit_file)")
	cmd.Flags().IntVar(&maxExamples, "max-examples", audit.DefaultMaxExamples, "Maximum examples listed per finding")

	return cmd
}

// Run audits the indexed events and writes the audit report.
func Run(ctx context.Context, app application.Application, cfg *config.Config, assets []catalogs.Asset, events []*catalogs.Event, maxExamples int) (*audit.Report, error) {
	now, err := app.Clock()
	if err != nil {
		return nil, err
	}

	auditor := audit.New(
		audit.WithWindowDays(cfg.WindowDays),
		audit.WithClock(now),
		audit.WithMaxExamples(maxExamples),
		audit.WithSources(audit.Sources{DataFile: cfg.AssetsFile, IndexFile: cfg.OutputFile}),
	)
	report := auditor.Run(ctx, assets, events)

	if err := save.Save(report, save.WithPath(cfg.AuditFile)); err != nil {
		return nil, err
	}
	app.Logger().Info().Str("report", cfg.AuditFile).Msg("Wrote coverage audit")
	return report, nil
}
