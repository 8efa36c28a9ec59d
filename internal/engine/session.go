package engine

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/inkwell-mcp/inkwell/internal/memory"
)

// MemorySource is the slice of the store the session reads during a
// refresh. *memory.Store satisfies it; tests substitute fakes.
type MemorySource interface {
	GetCharacters(projectID int64) ([]memory.Character, error)
	GetPlots(projectID int64) ([]memory.Plot, error)
	GetWorldElements(projectID int64) ([]memory.WorldElement, error)
}

// SessionConfig configures a context session.
type SessionConfig struct {
	// MaxTokens is the absolute context budget. The session only ever
	// fills 80% of it, keeping a safety margin for the conversation
	// around the context.
	MaxTokens         int
	CharsPerToken     int
	MinTruncateTokens int
	Weights           Weights
	AutoRefresh       bool
	Logger            *zap.Logger
}

// DefaultSessionConfig returns a session configuration with the standard
// budget model and scoring weights.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxTokens:         DefaultMaxTokens,
		CharsPerToken:     DefaultCharsPerToken,
		MinTruncateTokens: DefaultMinTruncateTokens,
		Weights:           DefaultWeights(),
		AutoRefresh:       true,
	}
}

// Session holds the context computed for the author's current excerpt. A
// refresh replaces the cached selection wholesale, so the mutex makes
// refreshes single-flight: two overlapping refreshes would otherwise race
// on the cache.
type Session struct {
	mu            sync.Mutex
	maxTokens     int
	workingTokens int
	charsPerToken int
	minTruncate   int
	weights       Weights
	autoRefresh   bool
	items         []ContextItem
	log           *zap.Logger
}

// NewSession builds a session. Zero or negative numeric fields fall back to
// their defaults; a nil logger disables logging.
func NewSession(cfg SessionConfig) *Session {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.CharsPerToken <= 0 {
		cfg.CharsPerToken = DefaultCharsPerToken
	}
	if cfg.MinTruncateTokens <= 0 {
		cfg.MinTruncateTokens = DefaultMinTruncateTokens
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Session{
		maxTokens:     cfg.MaxTokens,
		workingTokens: cfg.MaxTokens * 8 / 10,
		charsPerToken: cfg.CharsPerToken,
		minTruncate:   cfg.MinTruncateTokens,
		weights:       cfg.Weights,
		autoRefresh:   cfg.AutoRefresh,
		log:           cfg.Logger,
	}
}

// Refresh recomputes the cached context from the project's memory and the
// excerpt the author is currently working on. It is a no-op while
// auto-refresh is off, and a blank excerpt clears the context instead of
// scoring against nothing. The session lock is held across the store reads
// so concurrent refreshes serialize rather than interleave.
func (s *Session) Refresh(src MemorySource, projectID int64, excerpt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.autoRefresh {
		return nil
	}
	if strings.TrimSpace(excerpt) == "" {
		s.items = nil
		return nil
	}

	candidates, err := gatherCandidates(src, projectID)
	if err != nil {
		return err
	}
	mentions := ExtractMentions(excerpt)

	scored := make([]ContextItem, 0, len(candidates))
	for _, c := range candidates {
		score := Score(c, excerpt, mentions, s.weights)
		if score <= 0 {
			continue
		}
		content := c.Title + ": " + c.Content
		scored = append(scored, ContextItem{
			ContentType:   c.ContentType,
			EntityID:      c.EntityID,
			Title:         c.Title,
			Content:       content,
			Score:         score,
			TokenEstimate: EstimateTokens(content, s.charsPerToken),
			Importance:    importanceLevel(c),
		})
	}

	s.items = SelectWithinBudget(scored, s.workingTokens, SelectorOptions{
		CharsPerToken:     s.charsPerToken,
		MinTruncateTokens: s.minTruncate,
	})

	total := 0
	for _, item := range s.items {
		total += item.TokenEstimate
	}
	s.log.Debug("context refreshed",
		zap.Int64("project_id", projectID),
		zap.Int("candidates", len(candidates)),
		zap.Int("mentions", len(mentions)),
		zap.Int("selected", len(s.items)),
		zap.Int("tokens", total))
	return nil
}

// gatherCandidates flattens the project's memory into scoring candidates.
// Character text spans description, personality, and backstory; plots
// contribute their description; world elements description plus details.
func gatherCandidates(src MemorySource, projectID int64) ([]Candidate, error) {
	characters, err := src.GetCharacters(projectID)
	if err != nil {
		return nil, fmt.Errorf("gathering characters: %w", err)
	}
	plots, err := src.GetPlots(projectID)
	if err != nil {
		return nil, fmt.Errorf("gathering plots: %w", err)
	}
	elements, err := src.GetWorldElements(projectID)
	if err != nil {
		return nil, fmt.Errorf("gathering world elements: %w", err)
	}

	candidates := make([]Candidate, 0, len(characters)+len(plots)+len(elements))
	for _, c := range characters {
		candidates = append(candidates, Candidate{
			ContentType:   memory.ContentTypeCharacter,
			EntityID:      c.ID,
			Title:         c.Name,
			Content:       c.Description + " " + c.Personality + " " + c.Backstory,
			Importance:    c.Importance,
			Relationships: c.Relationships,
		})
	}
	for _, p := range plots {
		candidates = append(candidates, Candidate{
			ContentType: memory.ContentTypePlot,
			EntityID:    p.ID,
			Title:       p.Title,
			Content:     p.Description,
			PlotType:    p.PlotType,
		})
	}
	for _, w := range elements {
		candidates = append(candidates, Candidate{
			ContentType: memory.ContentTypeWorld,
			EntityID:    w.ID,
			Title:       w.Name,
			Content:     w.Description + " " + w.Details,
		})
	}
	return candidates, nil
}

// importanceLevel derives the selection tier level from entity metadata:
// main characters and main plots are high, supporting cast and subplots
// medium, everything else normal.
func importanceLevel(c Candidate) string {
	switch {
	case c.Importance == memory.ImportanceMain || c.PlotType == memory.PlotTypeMain:
		return ImportanceHigh
	case c.Importance == memory.ImportanceSupporting || c.PlotType == memory.PlotTypeSubplot:
		return ImportanceMedium
	default:
		return ImportanceNormal
	}
}

// Info is a point-in-time snapshot of the session's budget accounting.
type Info struct {
	MaxTokens       int  `json:"max_tokens"`
	WorkingTokens   int  `json:"working_tokens"`
	Items           int  `json:"items"`
	EstimatedTokens int  `json:"estimated_tokens"`
	RemainingTokens int  `json:"remaining_tokens"`
	AutoRefresh     bool `json:"auto_refresh"`
}

// Describe reports the session's current budget usage.
func (s *Session) Describe() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, item := range s.items {
		total += item.TokenEstimate
	}
	return Info{
		MaxTokens:       s.maxTokens,
		WorkingTokens:   s.workingTokens,
		Items:           len(s.items),
		EstimatedTokens: total,
		RemainingTokens: s.workingTokens - total,
		AutoRefresh:     s.autoRefresh,
	}
}

// Current returns a copy of the cached context items.
func (s *Session) Current() []ContextItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]ContextItem, len(s.items))
	copy(items, s.items)
	return items
}

// Clear drops the cached context.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// SetAutoRefresh toggles whether Refresh recomputes the context.
func (s *Session) SetAutoRefresh(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoRefresh = enabled
}

// AutoRefresh reports whether automatic refresh is enabled.
func (s *Session) AutoRefresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoRefresh
}

// Format renders the cached context for display.
func (s *Session) Format() string {
	return FormatItems(s.Current())
}

// FormatItems renders context items as grouped markdown: a token-count
// header, one section per content type, and a star rating per item derived
// from its relevance score. An empty list renders a fixed notice rather
// than an empty string.
func FormatItems(items []ContextItem) string {
	if len(items) == 0 {
		return "No relevant context items found."
	}

	total := 0
	for _, item := range items {
		total += item.TokenEstimate
	}

	byType := make(map[string][]ContextItem)
	for _, item := range items {
		byType[item.ContentType] = append(byType[item.ContentType], item)
	}

	// Known types render in a fixed order; anything else follows in
	// first-seen order.
	order := make([]string, 0, len(byType))
	seen := make(map[string]bool)
	for _, t := range []string{memory.ContentTypeCharacter, memory.ContentTypePlot, memory.ContentTypeWorld} {
		if len(byType[t]) > 0 {
			order = append(order, t)
			seen[t] = true
		}
	}
	for _, item := range items {
		if !seen[item.ContentType] {
			order = append(order, item.ContentType)
			seen[item.ContentType] = true
		}
	}

	lines := []string{
		fmt.Sprintf("📋 **Active Context** (%d items, ~%s tokens)", len(items), comma(total)),
		"",
	}
	for _, t := range order {
		group := byType[t]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Score > group[j].Score })

		lines = append(lines, fmt.Sprintf("## %s %s", typeEmoji(t), typeLabel(t)))
		for _, item := range group {
			lines = append(lines,
				fmt.Sprintf("- **%s** %s", item.Title, stars(item.Score)),
				fmt.Sprintf("  _%d tokens, %s importance_", item.TokenEstimate, item.Importance))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func typeEmoji(contentType string) string {
	switch contentType {
	case memory.ContentTypeCharacter:
		return "👤"
	case memory.ContentTypePlot:
		return "📖"
	case memory.ContentTypeWorld:
		return "🌍"
	default:
		return "📝"
	}
}

// typeLabel renders a content type as a heading: "world_building" becomes
// "World Building".
func typeLabel(contentType string) string {
	words := strings.Split(strings.ReplaceAll(contentType, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// stars renders a relevance score as one to five stars.
func stars(score float64) string {
	n := int(score)
	if n < 1 {
		n = 1
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("⭐", n)
}

// comma formats n with thousands separators, matching the display style of
// the token counts in headers.
func comma(n int) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 || len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
