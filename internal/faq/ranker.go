package faq

import (
	"sort"
	"strings"

	"chatconnect/internal/domain"
	"chatconnect/internal/textnorm"
)

const (
	defaultTopK        = 5
	defaultMinTokenLen = 3
)

// Bonus boosts entries about the product when the user names it generically,
// and the other way around.
type Bonus struct {
	QueryMarker string
	EntryMarker string
	Points      int
}

// DefaultBonus links "aplicativo" and "connect" with two extra points.
func DefaultBonus() *Bonus {
	return &Bonus{QueryMarker: "aplicativo", EntryMarker: "connect", Points: 2}
}

func (b *Bonus) applies(query, question string) bool {
	return (strings.Contains(query, b.QueryMarker) && strings.Contains(question, b.EntryMarker)) ||
		(strings.Contains(query, b.EntryMarker) && strings.Contains(question, b.QueryMarker))
}

// Ranker scores FAQ entries by token overlap with a query.
type Ranker struct {
	normalizer  *textnorm.Normalizer
	bonus       *Bonus
	topK        int
	minTokenLen int
}

// NewRanker creates a ranker. A nil bonus disables the affinity heuristic.
func NewRanker(normalizer *textnorm.Normalizer, bonus *Bonus, topK, minTokenLen int) *Ranker {
	if topK <= 0 {
		topK = defaultTopK
	}
	if minTokenLen <= 0 {
		minTokenLen = defaultMinTokenLen
	}
	if bonus != nil && (bonus.QueryMarker == "" || bonus.EntryMarker == "" || bonus.Points <= 0) {
		bonus = nil
	}
	return &Ranker{normalizer: normalizer, bonus: bonus, topK: topK, minTokenLen: minTokenLen}
}

// Rank returns at most topK entries sorted by score, descending. Ties keep
// corpus order. Zero-score entries are kept; the caller decides on a threshold.
func (r *Ranker) Rank(query string, corpus []domain.FAQEntry) []domain.ScoredFAQEntry {
	text := r.normalizer.Normalize(query)
	if text == "" || len(corpus) == 0 {
		return nil
	}
	tokens := textnorm.Tokens(text, r.minTokenLen)

	scored := make([]domain.ScoredFAQEntry, len(corpus))
	for i, entry := range corpus {
		question := strings.ToLower(entry.Question)
		score := textnorm.CountContained(tokens, question)
		if r.bonus != nil && r.bonus.applies(text, question) {
			score += r.bonus.Points
		}
		scored[i] = domain.ScoredFAQEntry{Entry: entry, Score: score}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > r.topK {
		scored = scored[:r.topK]
	}
	return scored
}
