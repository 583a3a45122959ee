package persistence_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culturalmap/eventmap/internal/persistence"
	"github.com/culturalmap/eventmap/pkg/errors"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const eventJSON = `{"event_id":"trumba-1","title":"Spring Art Walk","start_iso":"2026-05-09T17:00:00-07:00","end_iso":"2026-05-09T19:00:00-07:00"}`

func TestLoadIndex(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "assets.json", `[{"n":"Miners Foundry","c":"Nevada City","l":"Performance Spaces","pid":12}]`)

	assets, idx, err := persistence.LoadIndex(path)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "12", string(assets[0].PID))
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, 1, idx.Allowed().Len())
}

func TestLoadEventsMissingFile(t *testing.T) {
	_, err := persistence.LoadEvents(filepath.Join(t.TempDir(), "nope.json"), false)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestLoadIndexedEvents(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "events.index.json", `{"generated_at":"2026-05-01T00:00:00Z","events":[`+eventJSON+`]}`)

	events, err := persistence.LoadIndexedEvents(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "trumba-1", events[0].EventID)
}

func TestLoadBatches(t *testing.T) {
	dir := t.TempDir()
	bare := write(t, dir, "trumba.json", `[`+eventJSON+`]`)
	wrapped := write(t, dir, "libcal.json", `{"events":[]}`)

	batches, warnings, err := persistence.LoadBatches([]persistence.SourceFile{
		{Source: "trumba", Path: bare},
		{Source: "crazyhorse", Path: filepath.Join(dir, "crazyhorse.json")},
		{Source: "libcal", Path: wrapped},
	})
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "trumba", batches[0].Source)
	assert.Len(t, batches[0].Events, 1)
	assert.Equal(t, "libcal", batches[1].Source)
	assert.Empty(t, batches[1].Events)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "crazyhorse")
}

func TestLoadBatchesMalformed(t *testing.T) {
	dir := t.TempDir()
	bad := write(t, dir, "bad.json", `{"items":[]}`)

	_, _, err := persistence.LoadBatches([]persistence.SourceFile{{Source: "bad", Path: bad}})
	require.Error(t, err)
}
