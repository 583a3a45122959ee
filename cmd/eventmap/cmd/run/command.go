// Package run provides the run command: merge, build and validate in one
// pass.
package run

import (
	"github.com/spf13/cobra"

	"github.com/culturalmap/eventmap/cmd/eventmap/cmd/build"
	"github.com/culturalmap/eventmap/cmd/eventmap/cmd/merge"
	"github.com/culturalmap/eventmap/cmd/eventmap/cmd/validate"
	"github.com/culturalmap/eventmap/internal/cmd/application"
	"github.com/culturalmap/eventmap/internal/cmd/cmdutil"
	"github.com/culturalmap/eventmap/internal/cmd/constants"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/dedup"
)

// NewCommand creates the run command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		inputs       *cmdutil.InputFlags
		outputs      *cmdutil.BuildFlags
		merged       string
		flat         string
		skipValidate bool
	)

	cmd := &cobra.Command{
		Use:     "run [source=path ...]",
		GroupID: constants.GroupPipeline,
		Short:   "Merge sources, build the index and validate it",
		Long: `Run chains the pipeline. When sources are given (as arguments or in the
config file) they are merged first and the flat merged file becomes the
build input. The built index is then checked against the publishing
gates unless --skip-validate is set.`,
		Example: `  eventmap run trumba=data/trumba.json libcal=data/libcal.json
  eventmap run --events events.json --skip-validate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := app.Config()
			inputs.Apply(cfg)
			outputs.Apply(cfg)
			if merged != "" {
				cfg.MergedFile = merged
			}
			if flat != "" {
				cfg.FlatFile = flat
			}
			if len(args) > 0 {
				sources, err := merge.ParseSources(args)
				if err != nil {
					return err
				}
				cfg.Sources = sources
			}

			if len(cfg.Sources) > 0 {
				metricsFile := cfg.MetricsFile
				cfg.MetricsFile = ""
				if _, err := merge.Run(ctx, app, cfg); err != nil {
					return err
				}
				cfg.MetricsFile = metricsFile
				cfg.EventsFile = cfg.FlatFile
			}

			out, err := build.Run(ctx, app, cfg)
			if err != nil {
				return err
			}
			if skipValidate {
				return nil
			}

			events := published(out.Events, out.Result.Report.Dedup.Decisions)
			_, err = validate.Run(ctx, app, cfg, events, out.Result.Index.Events, out.Pipeline.Assets)
			return err
		},
	}

	inputs = cmdutil.AddInputFlags(cmd)
	outputs = cmdutil.AddBuildFlags(cmd)
	cmd.Flags().StringVar(&merged, "merged", "", "Wrapped merged output path (overrides merged_file)")
	cmd.Flags().StringVar(&flat, "flat", "", "Flat event array output path (overrides flat_file)")
	cmd.Flags().BoolVar(&skipValidate, "skip-validate", false, "Do not run the publishing gates")

	return cmd
}

// published drops the events the build removed as duplicates.
func published(events []*catalogs.Event, decisions []dedup.Decision) []*catalogs.Event {
	if len(decisions) == 0 {
		return events
	}
	removed := make(map[string]struct{}, len(decisions))
	for _, d := range decisions {
		removed[d.LoserID] = struct{}{}
	}
	out := make([]*catalogs.Event, 0, len(events))
	for _, e := range events {
		if _, ok := removed[e.EventID]; !ok {
			out = append(out, e)
		}
	}
	return out
}
