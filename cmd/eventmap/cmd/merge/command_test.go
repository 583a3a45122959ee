package merge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culturalmap/eventmap/internal/cmd/application"
	"github.com/culturalmap/eventmap/internal/config"
	"github.com/culturalmap/eventmap/internal/persistence"
	"github.com/culturalmap/eventmap/pkg/errors"
)

func TestParseSources(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []persistence.SourceFile
		wantErr bool
	}{
		{
			name: "pairs",
			args: []string{"trumba=data/trumba.json", " libcal = data/libcal.json"},
			want: []persistence.SourceFile{
				{Source: "trumba", Path: "data/trumba.json"},
				{Source: "libcal", Path: "data/libcal.json"},
			},
		},
		{name: "missing separator", args: []string{"trumba"}, wantErr: true},
		{name: "missing path", args: []string{"trumba="}, wantErr: true},
		{name: "missing source", args: []string{"=data/x.json"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSources(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunWithoutSources(t *testing.T) {
	app := &application.Mock{
		ConfigFunc: func() *config.Config { return &config.Config{AssetsFile: "data.json"} },
	}
	_, err := Run(context.Background(), app, app.Config())
	require.Error(t, err)
	var cfgErr *errors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
