package save_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culturalmap/eventmap/pkg/errors"
	"github.com/culturalmap/eventmap/pkg/save"
)

type artifact struct {
	Name  string         `json:"name" yaml:"name"`
	Count map[string]int `json:"count" yaml:"count"`
}

var sample = artifact{Name: "Eat, Drink & Stay <home>", Count: map[string]int{"b": 2, "a": 1}}

func TestEncode(t *testing.T) {
	tests := []struct {
		format save.Format
		want   string
	}{
		{save.FormatCompactJSON, `{"name":"Eat, Drink & Stay <home>","count":{"a":1,"b":2}}` + "\n"},
		{save.FormatJSON, "{\n  \"name\": \"Eat, Drink & Stay <home>\",\n  \"count\": {\n    \"a\": 1,\n    \"b\": 2\n  }\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			data, err := save.Encode(sample, tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}

	data, err := save.Encode(sample, save.FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name:")
	assert.Contains(t, string(data), "a: 1")
}

func TestSaveToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, save.Save(sample, save.WithPath(path), save.WithFormat(save.FormatCompactJSON)))

	first, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, save.Save(sample, save.WithPath(path), save.WithFormat(save.FormatCompactJSON)))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveToWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, save.Save(sample, save.WithWriter(&buf), save.WithPath("ignored.json")))
	assert.Contains(t, buf.String(), `"name": "Eat, Drink & Stay <home>"`)
}

func TestSaveErrors(t *testing.T) {
	err := save.Save(sample)
	assert.True(t, errors.IsValidationError(err))

	err = save.Save(sample, save.WithPath("x.json"), save.WithFormat(save.Format(9)))
	assert.True(t, errors.IsValidationError(err))
}

func TestParseFormat(t *testing.T) {
	f, err := save.ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, save.FormatYAML, f)

	_, err = save.ParseFormat("xml")
	assert.Error(t, err)
}
