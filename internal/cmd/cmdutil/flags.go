// Package cmdutil provides shared flags for eventmap commands.
package cmdutil

import (
	"github.com/spf13/cobra"

	"github.com/culturalmap/eventmap/internal/config"
)

// InputFlags holds the input paths shared by the pipeline commands.
type InputFlags struct {
	Assets  string
	Events  string
	Aliases string
	Rules   string
}

// AddInputFlags adds input path flags to a command.
func AddInputFlags(cmd *cobra.Command) *InputFlags {
	flags := &InputFlags{}

	cmd.Flags().StringVar(&flags.Assets, "assets", "",
		"Asset catalog JSON (overrides assets_file)")
	cmd.Flags().StringVarP(&flags.Events, "events", "e", "",
		"Event batch JSON (overrides events_file)")
	cmd.Flags().StringVar(&flags.Aliases, "aliases", "",
		"Venue alias config, JSON or YAML (overrides aliases_file)")
	cmd.Flags().StringVar(&flags.Rules, "rules", "",
		"Classification rules YAML (overrides rules_file)")

	return flags
}

// Apply copies the flags that were set onto the configuration.
func (f *InputFlags) Apply(cfg *config.Config) {
	override(&cfg.AssetsFile, f.Assets)
	override(&cfg.EventsFile, f.Events)
	override(&cfg.AliasesFile, f.Aliases)
	override(&cfg.RulesFile, f.Rules)
}

// BuildFlags holds the build command outputs and tuning.
type BuildFlags struct {
	Output     string
	Report     string
	Markdown   string
	Baseline   string
	Metrics    string
	StageOrder string
	WindowDays int
}

// AddBuildFlags adds build output flags to a command.
func AddBuildFlags(cmd *cobra.Command) *BuildFlags {
	flags := &BuildFlags{}

	cmd.Flags().StringVar(&flags.Output, "output", "",
		"Event index path (overrides output_file)")
	cmd.Flags().StringVar(&flags.Report, "report", "",
		"Diagnostics report path (overrides report_file)")
	cmd.Flags().StringVar(&flags.Markdown, "markdown", "",
		"Also render the diagnostics report as Markdown to this path")
	cmd.Flags().StringVar(&flags.Baseline, "baseline", "",
		"Previous event index to compare against")
	cmd.Flags().StringVar(&flags.Metrics, "metrics", "",
		"Write Prometheus textfile metrics to this path")
	cmd.Flags().StringVar(&flags.StageOrder, "stage-order", "",
		"Stage order: match-first or dedup-first")
	cmd.Flags().IntVar(&flags.WindowDays, "window-days", 0,
		"Length of the upcoming window in days")

	return flags
}

// Apply copies the flags that were set onto the configuration.
func (f *BuildFlags) Apply(cfg *config.Config) {
	override(&cfg.OutputFile, f.Output)
	override(&cfg.ReportFile, f.Report)
	override(&cfg.MarkdownFile, f.Markdown)
	override(&cfg.BaselineFile, f.Baseline)
	override(&cfg.MetricsFile, f.Metrics)
	override(&cfg.StageOrder, f.StageOrder)
	if f.WindowDays > 0 {
		cfg.WindowDays = f.WindowDays
	}
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
