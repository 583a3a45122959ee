// Package persistence loads pipeline inputs from disk.
package persistence

import (
	"fmt"
	"os"

	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/errors"
	"github.com/culturalmap/eventmap/pkg/reconciler"
)

// SourceFile is one adapter output to merge.
type SourceFile struct {
	Source string `mapstructure:"source" yaml:"source" json:"source" validate:"required"`
	Path   string `mapstructure:"path" yaml:"path" json:"path" validate:"required"`
}

func read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError("read", path, errors.NewNotFoundError("file", path))
		}
		return nil, errors.WrapIO("read", path, err)
	}
	return data, nil
}

// LoadAssets reads the asset catalog.
func LoadAssets(path string) ([]catalogs.Asset, error) {
	data, err := read(path)
	if err != nil {
		return nil, err
	}
	return catalogs.DecodeAssets(data, path)
}

// LoadIndex reads the asset catalog and builds its index.
func LoadIndex(path string) ([]catalogs.Asset, *catalogs.Index, error) {
	assets, err := LoadAssets(path)
	if err != nil {
		return nil, nil, err
	}
	return assets, catalogs.NewIndex(assets), nil
}

// LoadEvents reads an event batch. A bare array is always accepted; wrapped
// also accepts an object with an "events" array.
func LoadEvents(path string, wrapped bool) ([]*catalogs.Event, error) {
	data, err := read(path)
	if err != nil {
		return nil, err
	}
	return catalogs.DecodeEvents(data, path, wrapped)
}

// LoadIndexedEvents reads the events of a built index artifact.
func LoadIndexedEvents(path string) ([]*catalogs.Event, error) {
	return LoadEvents(path, true)
}

// LoadBatches reads per-source event files. A missing file is skipped with
// a warning; any other problem is fatal.
func LoadBatches(files []SourceFile) ([]reconciler.Batch, []string, error) {
	var (
		batches  []reconciler.Batch
		warnings []string
	)
	for _, f := range files {
		if _, err := os.Stat(f.Path); os.IsNotExist(err) {
			warnings = append(warnings, fmt.Sprintf("Source file not found, skipping %s: %s", f.Source, f.Path))
			continue
		}
		events, err := LoadEvents(f.Path, true)
		if err != nil {
			return nil, warnings, err
		}
		batches = append(batches, reconciler.Batch{Source: f.Source, Events: events})
	}
	return batches, warnings, nil
}
