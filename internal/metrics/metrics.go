// Package metrics records pipeline runs in a Prometheus registry. A batch
// run has no scrape endpoint, so the registry is written as a node
// exporter textfile at exit.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/errors"
	"github.com/culturalmap/eventmap/pkg/reconciler"
)

const namespace = "eventmap"

// Recorder implements reconciler.Observer.
type Recorder struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	events        *prometheus.GaugeVec
	matches       *prometheus.GaugeVec
	sourceEvents  *prometheus.GaugeVec
	dedupRemoved  prometheus.Gauge
	familyTagged  prometheus.Gauge
	runs          *prometheus.CounterVec
	lastRun       prometheus.Gauge
}

var _ reconciler.Observer = (*Recorder)(nil)

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"stage"}),
		events: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "events",
			Help:      "Events in the last built index by state",
		}, []string{"state"}),
		matches: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "matched_events",
			Help:      "Matched events in the last built index by match method",
		}, []string{"method"}),
		sourceEvents: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_events",
			Help:      "Events loaded per source in the last merge",
		}, []string{"source"}),
		dedupRemoved: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dedup_removed",
			Help:      "Duplicates removed in the last run",
		}),
		familyTagged: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "family_tagged",
			Help:      "Family events in the last run",
		}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by operation",
		}, []string{"operation"}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveStage records a stage timing.
func (r *Recorder) ObserveStage(stage reconciler.Stage, d time.Duration) {
	r.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
}

// ObserveBuild records the stats of a built index.
func (r *Recorder) ObserveBuild(res *reconciler.Result) {
	s := res.Index.Stats
	r.events.WithLabelValues("total").Set(float64(s.TotalEvents))
	r.events.WithLabelValues("matched").Set(float64(s.MatchedEvents))
	r.events.WithLabelValues("unmatched").Set(float64(s.UnmatchedEvents))
	r.events.WithLabelValues("upcoming").Set(float64(s.Upcoming))
	r.events.WithLabelValues("upcoming_unmatched").Set(float64(s.UpcomingUnmatched))

	r.matches.WithLabelValues(catalogs.MethodExactIdentifier).Set(float64(s.MatchedByPID))
	r.matches.WithLabelValues(catalogs.MethodAlias).Set(float64(s.MatchedByAlias))
	r.matches.WithLabelValues(catalogs.MethodExactNameCity).Set(float64(s.MatchedByNameCity))
	r.matches.WithLabelValues(catalogs.MethodFuzzyNameCity).Set(float64(s.MatchedByNameCityFuzzy))

	r.dedupRemoved.Set(float64(s.DedupRemoved))
	r.familyTagged.Set(float64(s.FamilyTagged))
	r.finish("build", res.Metadata.EndTime)
}

// ObserveMerge records a merge.
func (r *Recorder) ObserveMerge(res *reconciler.MergeResult) {
	for source, n := range res.Merged.SourceCounts {
		r.sourceEvents.WithLabelValues(source).Set(float64(n))
	}
	r.dedupRemoved.Set(float64(res.Merged.DedupRemoved))
	r.familyTagged.Set(float64(res.Merged.FamilyTagged))
	r.finish("merge", res.Metadata.EndTime)
}

func (r *Recorder) finish(operation string, end time.Time) {
	r.runs.WithLabelValues(operation).Inc()
	if end.IsZero() {
		end = time.Now()
	}
	r.lastRun.Set(float64(end.Unix()))
}

// WriteTextfile writes the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
