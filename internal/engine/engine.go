// Package engine selects which memory items belong in the writing context.
//
// Given an excerpt of the manuscript the author is working on, the engine
// extracts candidate entity mentions, scores every character, plot, and
// world element of the active project against the excerpt, and packs the
// highest-value items into a fixed token budget. It is deliberately cheap:
// token counts are a character-ratio approximation and the scoring signals
// are lexical, so a refresh costs a few regex passes over in-memory rows.
package engine

// Defaults for the token budget model. MaxTokens leaves headroom below the
// model's 200K window; the working budget keeps a further 20% safety margin.
const (
	DefaultMaxTokens         = 180000
	DefaultCharsPerToken     = 4
	DefaultMinTruncateTokens = 100
)

// Context item priority levels, derived from entity metadata. These order
// the selection tiers and are distinct from the raw importance values
// stored on characters.
const (
	ImportanceHigh   = "high"
	ImportanceMedium = "medium"
	ImportanceNormal = "normal"
)

// EstimateTokens approximates the token cost of text at a fixed ratio of
// characters per token, rounded up, never below 1. It stands in for a real
// tokenizer; a ratio of 4 is a reasonable fit for English prose.
func EstimateTokens(text string, charsPerToken int) int {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	n := (len(text) + charsPerToken - 1) / charsPerToken
	if n < 1 {
		return 1
	}
	return n
}
