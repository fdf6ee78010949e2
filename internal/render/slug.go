package render

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// fallbackSlug names headings whose text has no slug characters at all.
const fallbackSlug = "section"

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s, collapses every run of characters outside
// [a-z0-9] into one hyphen and trims hyphens from both ends.
func Slugify(s string) string {
	lowered := cases.Lower(language.Und).String(s)
	return strings.Trim(nonSlugRun.ReplaceAllString(lowered, "-"), "-")
}

// slugger hands out slugs that are unique within one page. The first
// heading keeps the bare slug; later duplicates get -2, -3, ... skipping
// any candidate already taken.
type slugger struct {
	used map[string]bool
}

func newSlugger() *slugger {
	return &slugger{used: make(map[string]bool)}
}

func (s *slugger) unique(text string) string {
	base := Slugify(text)
	if base == "" {
		base = fallbackSlug
	}
	if !s.used[base] {
		s.used[base] = true
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if !s.used[candidate] {
			s.used[candidate] = true
			return candidate
		}
	}
}
