package classify

import (
	"strings"

	"github.com/culturalmap/eventmap/internal/matcher"
	"github.com/culturalmap/eventmap/pkg/catalogs"
)

// LegacyFamily reports whether an event looks family-friendly using the
// standalone positive/negative pattern lists. Any negative match wins.
func LegacyFamily(e *catalogs.Event, positive, negative *matcher.MultiMatcher) bool {
	parts := append([]string{e.Title, e.Description}, e.Tags...)
	text := strings.ToLower(strings.Join(parts, " "))
	if strings.TrimSpace(text) == "" {
		return false
	}
	if negative.Match(text) {
		return false
	}
	return positive.Match(text)
}
