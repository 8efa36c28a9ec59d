package engine

import (
	"regexp"
	"strings"

	"github.com/inkwell-mcp/inkwell/internal/memory"
)

var wordRe = regexp.MustCompile(`\b\w+\b`)

// Weights tune the relevance signals. All weights are additive; a zero
// weight disables its signal.
type Weights struct {
	ExactTitle   float64 `json:"exact_title" koanf:"exact_title"`
	Mention      float64 `json:"mention" koanf:"mention"`
	Overlap      float64 `json:"overlap" koanf:"overlap"`
	Importance   float64 `json:"importance" koanf:"importance"`
	Relationship float64 `json:"relationship" koanf:"relationship"`
}

// DefaultWeights returns the tuning used when the configuration does not
// override it.
func DefaultWeights() Weights {
	return Weights{
		ExactTitle:   2.0,
		Mention:      1.5,
		Overlap:      1.0,
		Importance:   1.2,
		Relationship: 0.8,
	}
}

// Candidate is one memory entity flattened for scoring. Content is the
// entity's descriptive text joined into a single string; Importance,
// PlotType, and Relationships carry whichever metadata the entity kind
// actually has and stay zero for the rest.
type Candidate struct {
	ContentType   string
	EntityID      int64
	Title         string
	Content       string
	Importance    string
	PlotType      string
	Relationships map[string]string
}

// Score rates how relevant a candidate is to the excerpt. Signals are
// summed independently:
//
//   - the candidate's title appearing verbatim in the excerpt;
//   - each extracted mention found in the title or content;
//   - lexical word-set overlap (Jaccard) between excerpt and content;
//   - a single boost for main characters and main plot lines;
//   - a boost for characters whose relationship targets the excerpt names.
//
// All comparisons are case-insensitive. Missing metadata simply contributes
// nothing; Score never fails. Identical inputs always produce the identical
// score.
func Score(c Candidate, excerpt string, mentions []string, w Weights) float64 {
	title := strings.ToLower(c.Title)
	content := strings.ToLower(c.Content)
	excerptLower := strings.ToLower(excerpt)

	var score float64

	if title != "" && strings.Contains(excerptLower, title) {
		score += w.ExactTitle
	}

	for _, m := range mentions {
		lower := strings.ToLower(m)
		if strings.Contains(title, lower) || strings.Contains(content, lower) {
			score += w.Mention
		}
	}

	score += jaccard(excerptLower, content) * w.Overlap

	if c.Importance == memory.ImportanceMain || c.PlotType == memory.PlotTypeMain {
		score += w.Importance
	}

	if c.ContentType == memory.ContentTypeCharacter {
		for target := range c.Relationships {
			if strings.Contains(excerptLower, strings.ToLower(target)) {
				score += w.Relationship
				break
			}
		}
	}

	return score
}

// jaccard measures word-set overlap between two already-lowercased texts.
// Empty sets score zero.
func jaccard(a, b string) float64 {
	aw := wordSet(a)
	bw := wordSet(b)
	if len(aw) == 0 || len(bw) == 0 {
		return 0
	}
	shared := 0
	for w := range aw {
		if _, ok := bw[w]; ok {
			shared++
		}
	}
	union := len(aw) + len(bw) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

func wordSet(text string) map[string]struct{} {
	words := wordRe.FindAllString(text, -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
