// Package match provides the match command: a single venue probe through
// the matching ladder.
package match

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/culturalmap/eventmap/internal/cmd/application"
	"github.com/culturalmap/eventmap/internal/cmd/catalog"
	"github.com/culturalmap/eventmap/internal/cmd/cmdutil"
	"github.com/culturalmap/eventmap/internal/cmd/constants"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/matching"
	"github.com/culturalmap/eventmap/pkg/reconciler"
)

// Probe is the outcome of matching one venue.
type Probe struct {
	Venue      string               `json:"venue" yaml:"venue"`
	City       string               `json:"city" yaml:"city"`
	PID        string               `json:"pid,omitempty" yaml:"pid,omitempty"`
	Matched    bool                 `json:"matched" yaml:"matched"`
	AssetIdx   *int                 `json:"asset_idx" yaml:"asset_idx"`
	AssetName  string               `json:"asset_name,omitempty" yaml:"asset_name,omitempty"`
	Method     string               `json:"method" yaml:"method"`
	Confidence string               `json:"confidence" yaml:"confidence"`
	Score      int                  `json:"score,omitempty" yaml:"score,omitempty"`
	Candidates []matching.Candidate `json:"candidates" yaml:"candidates"`
}

// NewCommand creates the match command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		inputs *cmdutil.InputFlags
		city   string
		pid    string
		limit  int
	)

	cmd := &cobra.Command{
		Use:     "match <venue>",
		GroupID: constants.GroupInspect,
		Short:   "Run one venue through the matching ladder",
		Long: `Match resolves a venue name (and optional city and place id) the same
way the build does, printing the chosen asset, the method and confidence,
and the ranked candidates from the fuzzy pool.`,
		Example: `  eventmap match "Miners Foundry Cultural Center" --city "Nevada City"
  eventmap match "Center for the Arts" --city "Grass Valley" -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config()
			inputs.Apply(cfg)

			now, err := app.Clock()
			if err != nil {
				return err
			}
			pipeline, err := catalog.Load(cfg, now, reconciler.WithCandidateCount(limit))
			if err != nil {
				return err
			}

			venue := strings.Join(args, " ")
			result, candidates := pipeline.Reconciler.Match(venue, city, catalogs.ID(pid))
			probe := &Probe{
				Venue:      venue,
				City:       city,
				PID:        pid,
				Matched:    result.Matched(),
				Method:     result.Method,
				Confidence: result.Confidence,
				Score:      result.Score,
				Candidates: candidates,
			}
			if probe.Candidates == nil {
				probe.Candidates = []matching.Candidate{}
			}
			if result.Matched() {
				pos := result.Pos
				probe.AssetIdx = &pos
				probe.AssetName = pipeline.Index.Asset(pos).Name
			}

			app.Logger().Debug().
				Str("venue", venue).
				Str("method", result.Method).
				Int("candidates", len(candidates)).
				Msg("Venue probed")

			return printProbe(cmd.OutOrStdout(), app.OutputFormat(), probe)
		},
	}

	inputs = cmdutil.AddInputFlags(cmd)
	cmd.Flags().StringVar(&city, "city", "", "Venue city")
	cmd.Flags().StringVar(&pid, "pid", "", "Place id of the venue, if known")
	cmd.Flags().IntVarP(&limit, "limit", "l", 5, "Number of ranked candidates to show")

	return cmd
}
