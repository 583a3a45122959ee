// Package merge provides the merge command: combine per-source event
// files into one deduplicated, tagged batch.
package merge

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/culturalmap/eventmap/internal/cmd/application"
	"github.com/culturalmap/eventmap/internal/cmd/catalog"
	"github.com/culturalmap/eventmap/internal/cmd/cmdutil"
	"github.com/culturalmap/eventmap/internal/cmd/constants"
	"github.com/culturalmap/eventmap/internal/config"
	"github.com/culturalmap/eventmap/internal/persistence"
	"github.com/culturalmap/eventmap/pkg/errors"
	"github.com/culturalmap/eventmap/pkg/reconciler"
	"github.com/culturalmap/eventmap/pkg/save"
)

// NewCommand creates the merge command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		inputs  *cmdutil.InputFlags
		merged  string
		flat    string
		metrics string
	)

	cmd := &cobra.Command{
		Use:     "merge [source=path ...]",
		GroupID: constants.GroupPipeline,
		Short:   "Merge per-source event files into one batch",
		Long: `Merge loads the event file of every source (a bare array or an object
with an "events" array), fills missing source labels and types from the
source registry, removes cross-source duplicates and tags the survivors.

Sources come from the arguments, or from the "sources" list of the config
file when no arguments are given. A missing source file is skipped with a
warning. The merged batch is written twice: wrapped with run metadata, and
as the flat array the build command reads.`,
		Example: `  eventmap merge trumba=data/trumba.json libcal=data/libcal.json
  eventmap merge --merged out/events.merged.json --flat out/events.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config()
			inputs.Apply(cfg)
			if merged != "" {
				cfg.MergedFile = merged
			}
			if flat != "" {
				cfg.FlatFile = flat
			}
			if metrics != "" {
				cfg.MetricsFile = metrics
			}
			if len(args) > 0 {
				sources, err := ParseSources(args)
				if err != nil {
					return err
				}
				cfg.Sources = sources
			}

			result, err := Run(cmd.Context(), app, cfg)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), app.OutputFormat(), result)
		},
	}

	inputs = cmdutil.AddInputFlags(cmd)
	cmd.Flags().StringVar(&merged, "merged", "", "Wrapped merged output path (overrides merged_file)")
	cmd.Flags().StringVar(&flat, "flat", "", "Flat event array output path (overrides flat_file)")
	cmd.Flags().StringVar(&metrics, "metrics", "", "Write Prometheus textfile metrics to this path")

	return cmd
}

// ParseSources parses source=path arguments.
func ParseSources(args []string) ([]persistence.SourceFile, error) {
	sources := make([]persistence.SourceFile, 0, len(args))
	for _, arg := range args {
		source, path, ok := strings.Cut(arg, "=")
		source, path = strings.TrimSpace(source), strings.TrimSpace(path)
		if !ok || source == "" || path == "" {
			return nil, errors.NewValidationError("source", arg, "must be source=path")
		}
		sources = append(sources, persistence.SourceFile{Source: source, Path: path})
	}
	return sources, nil
}

// Run merges the configured sources and writes the merged and flat files.
func Run(ctx context.Context, app application.Application, cfg *config.Config) (*reconciler.MergeResult, error) {
	logger := app.Logger()

	if len(cfg.Sources) == 0 {
		return nil, errors.NewConfigError("sources", "no source files given", nil)
	}

	now, err := app.Clock()
	if err != nil {
		return nil, err
	}

	batches, warnings, err := persistence.LoadBatches(cfg.Sources)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Warn().Msg(w)
	}

	pipeline, err := catalog.Load(cfg, now)
	if err != nil {
		return nil, err
	}

	result, err := pipeline.Reconciler.Merge(ctx, batches)
	if err != nil {
		return nil, err
	}
	result.Warnings = append(warnings, result.Warnings...)

	if err := save.Save(result.Merged, save.WithPath(cfg.MergedFile)); err != nil {
		return nil, err
	}
	if err := save.Save(result.Merged.Events, save.WithPath(cfg.FlatFile)); err != nil {
		return nil, err
	}
	if err := pipeline.WriteMetrics(cfg.MetricsFile); err != nil {
		return nil, err
	}

	logger.Info().
		Str("merged", cfg.MergedFile).
		Str("flat", cfg.FlatFile).
		Msg(result.Summary())

	return result, nil
}
