// Package build provides the build command: match, deduplicate and
// classify an event batch into the event index and diagnostics report.
package build

import (
	"bytes"
	"context"

	"github.com/spf13/cobra"

	"github.com/culturalmap/eventmap/internal/cmd/application"
	"github.com/culturalmap/eventmap/internal/cmd/catalog"
	"github.com/culturalmap/eventmap/internal/cmd/cmdutil"
	"github.com/culturalmap/eventmap/internal/cmd/constants"
	"github.com/culturalmap/eventmap/internal/config"
	"github.com/culturalmap/eventmap/internal/persistence"
	"github.com/culturalmap/eventmap/internal/report"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/reconciler"
	"github.com/culturalmap/eventmap/pkg/save"
)

// Output is what a build produced, kept for commands that chain on it.
type Output struct {
	Result   *reconciler.Result
	Events   []*catalogs.Event
	Pipeline *catalog.Pipeline
}

// NewCommand creates the build command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		inputs  *cmdutil.InputFlags
		outputs *cmdutil.BuildFlags
	)

	cmd := &cobra.Command{
		Use:     "build",
		GroupID: constants.GroupPipeline,
		Short:   "Build the event index and diagnostics report",
		Long: `Build matches every event to a cultural asset, removes cross-source
duplicates, assigns a category and activity tags, and writes the event
index together with a diagnostics report.

Artifacts are byte-stable for identical inputs when the clock is pinned
with --now or SOURCE_DATE_EPOCH.`,
		Example: `  eventmap build --assets data.json --events events.json
  eventmap build --aliases venue_aliases.yaml --markdown report.md
  eventmap build --baseline previous/events.index.json -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.Config()
			inputs.Apply(cfg)
			outputs.Apply(cfg)

			out, err := Run(cmd.Context(), app, cfg)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), app.OutputFormat(), out.Result)
		},
	}

	inputs = cmdutil.AddInputFlags(cmd)
	outputs = cmdutil.AddBuildFlags(cmd)

	return cmd
}

// Run builds the index from cfg and writes every configured artifact.
func Run(ctx context.Context, app application.Application, cfg *config.Config) (*Output, error) {
	logger := app.Logger()

	now, err := app.Clock()
	if err != nil {
		return nil, err
	}

	var extra []reconciler.Option
	baseline, err := catalog.Baseline(cfg.BaselineFile)
	if err != nil {
		return nil, err
	}
	if baseline != nil {
		extra = append(extra, baseline)
	}

	pipeline, err := catalog.Load(cfg, now, extra...)
	if err != nil {
		return nil, err
	}

	events, err := persistence.LoadEvents(cfg.EventsFile, true)
	if err != nil {
		return nil, err
	}

	result, err := pipeline.Reconciler.Build(ctx, events)
	if err != nil {
		return nil, err
	}

	if err := save.Save(result.Index, save.WithPath(cfg.OutputFile), save.WithFormat(save.FormatCompactJSON)); err != nil {
		return nil, err
	}
	if err := save.Save(result.Report, save.WithPath(cfg.ReportFile)); err != nil {
		return nil, err
	}
	if cfg.MarkdownFile != "" {
		var buf bytes.Buffer
		if err := report.WriteMarkdown(&buf, result.Report); err != nil {
			return nil, err
		}
		if err := save.WriteFile(cfg.MarkdownFile, buf.Bytes()); err != nil {
			return nil, err
		}
	}
	if err := pipeline.WriteMetrics(cfg.MetricsFile); err != nil {
		return nil, err
	}

	logger.Info().
		Str("index", cfg.OutputFile).
		Str("report", cfg.ReportFile).
		Msg(result.Summary())

	return &Output{Result: result, Events: events, Pipeline: pipeline}, nil
}
