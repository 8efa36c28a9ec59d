package engine

import (
	"regexp"
	"strings"
)

var (
	capitalizedWordRe = regexp.MustCompile(`\b[A-Z][a-z]+\b`)
	quotedSpanRe      = regexp.MustCompile(`"([^"]+)"`)
	titleCaseRe       = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
)

// ExtractMentions pulls candidate entity names out of a manuscript excerpt:
// capitalized words, the words of quoted spans (dialogue often names people
// and places), and multi-word Title Case phrases. The result is deduplicated
// and keeps first-seen order so downstream scoring is deterministic.
func ExtractMentions(text string) []string {
	var mentions []string
	seen := make(map[string]struct{})
	add := func(m string) {
		if m == "" {
			return
		}
		if _, ok := seen[m]; ok {
			return
		}
		seen[m] = struct{}{}
		mentions = append(mentions, m)
	}

	for _, w := range capitalizedWordRe.FindAllString(text, -1) {
		add(w)
	}
	for _, q := range quotedSpanRe.FindAllStringSubmatch(text, -1) {
		for _, w := range strings.Fields(q[1]) {
			if len(w) > 2 {
				add(strings.Trim(w, ".,!?"))
			}
		}
	}
	for _, p := range titleCaseRe.FindAllString(text, -1) {
		add(p)
	}
	return mentions
}
