// Package htmlsanitize strips markup from free-text fields (names,
// addresses, locations) before they are stored. The API serves JSON that
// dashboards render, so stored text must never carry HTML.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func strict() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text removes every tag from s, decodes entities bluemonday escaped, and
// trims surrounding whitespace. Script and style contents are dropped.
func Text(s string) string {
	if s == "" {
		return ""
	}
	clean := strict().Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(clean))
}

// Fields applies Text to each pointer in place.
func Fields(ps ...*string) {
	for _, p := range ps {
		if p != nil {
			*p = Text(*p)
		}
	}
}

// IsPlainText reports whether s looks free of tags.
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<") || !strings.Contains(s, ">")
}
