package kaikki

import (
	"regexp"
	"strings"
)

var (
	htmlTagRe  = regexp.MustCompile(`<[^>]*>`)
	wikiLinkRe = regexp.MustCompile(`\[\[([^|\]]*\|)?([^\]]*)\]\]`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// CleanGloss removes HTML tags and wiki links ([[target|shown]] becomes
// shown), collapses whitespace and trims.
func CleanGloss(s string) string {
	if s == "" {
		return ""
	}
	s = htmlTagRe.ReplaceAllString(s, "")
	s = wikiLinkRe.ReplaceAllString(s, "$2")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
