package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culturalmap/eventmap/internal/metrics"
	"github.com/culturalmap/eventmap/pkg/reconciler"
)

func buildResult() *reconciler.Result {
	return &reconciler.Result{
		Index: &reconciler.EventIndex{Stats: reconciler.Stats{
			TotalEvents:            4,
			MatchedEvents:          3,
			UnmatchedEvents:        1,
			MatchedByAlias:         2,
			MatchedByNameCityFuzzy: 1,
			DedupRemoved:           1,
		}},
		Metadata: reconciler.ResultMetadata{EndTime: time.Unix(1777593600, 0)},
	}
}

func TestObserveBuild(t *testing.T) {
	rec := metrics.New()
	rec.ObserveBuild(buildResult())

	expected := `
# HELP eventmap_events Events in the last built index by state
# TYPE eventmap_events gauge
eventmap_events{state="matched"} 3
eventmap_events{state="total"} 4
eventmap_events{state="unmatched"} 1
eventmap_events{state="upcoming"} 0
eventmap_events{state="upcoming_unmatched"} 0
`
	require.NoError(t, testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected), "eventmap_events"))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.Registry(), "eventmap_runs_total"))
	assert.Equal(t, float64(1777593600), gaugeValue(t, rec, "eventmap_last_run_timestamp_seconds"))
}

func TestObserveStageAndMerge(t *testing.T) {
	rec := metrics.New()
	rec.ObserveStage(reconciler.StageMatch, 3*time.Millisecond)
	rec.ObserveStage(reconciler.StageDedup, time.Millisecond)
	rec.ObserveMerge(&reconciler.MergeResult{
		Merged: &reconciler.MergedEvents{
			SourceCounts: map[string]int{"trumba": 5, "libcal": 2},
			DedupRemoved: 1,
		},
	})

	assert.Equal(t, 2, testutil.CollectAndCount(rec.Registry(), "eventmap_stage_duration_seconds"))
	assert.Equal(t, 2, testutil.CollectAndCount(rec.Registry(), "eventmap_source_events"))
}

func TestWriteTextfile(t *testing.T) {
	rec := metrics.New()
	rec.ObserveBuild(buildResult())

	path := filepath.Join(t.TempDir(), "eventmap.prom")
	require.NoError(t, rec.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `eventmap_matched_events{method="alias"} 2`)
	assert.Contains(t, string(data), `eventmap_runs_total{operation="build"} 1`)
}

// gaugeValue gathers a single unlabeled gauge through the registry.
func gaugeValue(t *testing.T, rec *metrics.Recorder, name string) float64 {
	t.Helper()
	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
