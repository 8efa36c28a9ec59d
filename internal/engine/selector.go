package engine

import (
	"sort"

	"github.com/inkwell-mcp/inkwell/internal/memory"
)

// ContextItem is one selected piece of project memory, sized for the
// context window.
type ContextItem struct {
	ContentType   string  `json:"content_type"`
	EntityID      int64   `json:"entity_id"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	Score         float64 `json:"relevance_score"`
	TokenEstimate int     `json:"token_estimate"`
	Importance    string  `json:"importance"`
	Truncated     bool    `json:"truncated,omitempty"`
}

// SelectorOptions tune how SelectWithinBudget packs and truncates.
type SelectorOptions struct {
	// CharsPerToken converts a token remainder back into a character
	// length when truncating. Zero means DefaultCharsPerToken.
	CharsPerToken int
	// MinTruncateTokens is the smallest leftover budget worth filling
	// with a truncated item. Zero means DefaultMinTruncateTokens.
	MinTruncateTokens int
}

// tierOf maps an item's importance level to its selection tier. Main
// characters and main plots outrank supporting material regardless of raw
// score.
func tierOf(importance string) int {
	switch importance {
	case memory.ImportanceMain, ImportanceHigh:
		return 1
	case ImportanceMedium:
		return 2
	default:
		return 3
	}
}

// SelectWithinBudget packs items into the token budget. Items are walked in
// tier order (high, medium, rest), best score first within a tier, and
// accumulated while they fit whole. The first item that does not fit ends
// the selection: if the leftover budget is still worth filling, that item
// is kept in truncated form priced at exactly the leftover, otherwise it is
// dropped. Nothing is selected past that point, so the summed token
// estimate of the result never exceeds the budget.
func SelectWithinBudget(items []ContextItem, budget int, opts SelectorOptions) []ContextItem {
	charsPerToken := opts.CharsPerToken
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	minTruncate := opts.MinTruncateTokens
	if minTruncate <= 0 {
		minTruncate = DefaultMinTruncateTokens
	}

	ordered := make([]ContextItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		ti, tj := tierOf(ordered[i].Importance), tierOf(ordered[j].Importance)
		if ti != tj {
			return ti < tj
		}
		return ordered[i].Score > ordered[j].Score
	})

	var selected []ContextItem
	used := 0
	for _, item := range ordered {
		if used+item.TokenEstimate <= budget {
			selected = append(selected, item)
			used += item.TokenEstimate
			continue
		}
		if remaining := budget - used; remaining > minTruncate {
			cut := remaining * charsPerToken
			if cut > len(item.Content) {
				cut = len(item.Content)
			}
			item.Content = item.Content[:cut] + "... [truncated]"
			item.TokenEstimate = remaining
			item.Truncated = true
			selected = append(selected, item)
		}
		break
	}
	return selected
}
