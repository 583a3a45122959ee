// Package catalog loads the asset catalog and builds the reconciler that
// pipeline commands run against.
package catalog

import (
	"time"

	"github.com/culturalmap/eventmap/internal/config"
	"github.com/culturalmap/eventmap/internal/metrics"
	"github.com/culturalmap/eventmap/internal/persistence"
	"github.com/culturalmap/eventmap/pkg/aliases"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/categories"
	"github.com/culturalmap/eventmap/pkg/errors"
	"github.com/culturalmap/eventmap/pkg/reconciler"
	"github.com/culturalmap/eventmap/pkg/rules"
)

// Pipeline bundles the loaded inputs a command runs against.
type Pipeline struct {
	Assets     []catalogs.Asset
	Index      *catalogs.Index
	Reconciler reconciler.Reconciler
	Metrics    *metrics.Recorder
	Now        func() time.Time
}

// Load reads the asset catalog, rules and aliases named by cfg and builds
// a reconciler with a metrics recorder attached. Extra options are applied
// last.
func Load(cfg *config.Config, now func() time.Time, extra ...reconciler.Option) (*Pipeline, error) {
	assets, index, err := persistence.LoadIndex(cfg.AssetsFile)
	if err != nil {
		return nil, err
	}

	ruleConfig, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return nil, err
	}

	strategy, err := cfg.Strategy()
	if err != nil {
		return nil, errors.NewConfigError("stage_order", err.Error(), err)
	}

	aliasFile, aliasWarnings := aliases.Load(cfg.AliasesFile)
	recorder := metrics.New()

	opts := []reconciler.Option{
		reconciler.WithStrategy(strategy),
		reconciler.WithRules(ruleConfig),
		reconciler.WithAliases(aliasFile, aliasWarnings...),
		reconciler.WithSourceFiles(reconciler.SourceFiles{
			Events:  cfg.EventsFile,
			Data:    cfg.AssetsFile,
			Aliases: cfg.AliasesFile,
		}),
		reconciler.WithThresholds(cfg.Dedup.TitleThreshold, cfg.Dedup.VenueThreshold),
		reconciler.WithWindowDays(cfg.WindowDays),
		reconciler.WithClock(now),
		reconciler.WithObserver(recorder),
	}
	if cfg.FallbackCategory != "" {
		opts = append(opts, reconciler.WithFallbackCategory(categories.Category(cfg.FallbackCategory)))
	}
	opts = append(opts, extra...)

	r, err := reconciler.New(index, opts...)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		Assets:     assets,
		Index:      index,
		Reconciler: r,
		Metrics:    recorder,
		Now:        now,
	}, nil
}

// Baseline returns the option comparing a build against a previous index,
// or nil when no baseline is configured.
func Baseline(path string) (reconciler.Option, error) {
	if path == "" {
		return nil, nil
	}
	events, err := persistence.LoadIndexedEvents(path)
	if err != nil {
		return nil, err
	}
	return reconciler.WithBaseline(events), nil
}

// WriteMetrics writes the recorder as a Prometheus textfile when a path is
// configured.
func (p *Pipeline) WriteMetrics(path string) error {
	if path == "" {
		return nil
	}
	return p.Metrics.WriteTextfile(path)
}
