package run

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/dedup"
)

func TestPublished(t *testing.T) {
	events := []*catalogs.Event{{EventID: "trumba-1"}, {EventID: "libcal-7"}, {EventID: "civic-3"}}

	assert.Len(t, published(events, nil), 3)

	got := published(events, []dedup.Decision{{WinnerID: "trumba-1", LoserID: "libcal-7"}})
	ids := make([]string, 0, len(got))
	for _, e := range got {
		ids = append(ids, e.EventID)
	}
	assert.Equal(t, []string{"trumba-1", "civic-3"}, ids)
}
