package doctree

import (
	"sort"
	"strings"

	"chatconnect/internal/domain"
	"chatconnect/internal/textnorm"
)

const (
	defaultTopK = 3
	// Document prose is noisier than FAQ questions, so the cutoff is stricter.
	defaultMinTokenLen = 4
)

// Searcher scores string leaves of a tree by token overlap with a query.
type Searcher struct {
	normalizer  *textnorm.Normalizer
	topK        int
	minTokenLen int
}

// NewSearcher creates a tree searcher.
func NewSearcher(normalizer *textnorm.Normalizer, topK, minTokenLen int) *Searcher {
	if topK <= 0 {
		topK = defaultTopK
	}
	if minTokenLen <= 0 {
		minTokenLen = defaultMinTokenLen
	}
	return &Searcher{normalizer: normalizer, topK: topK, minTokenLen: minTokenLen}
}

// Search returns the highest-scoring leaves, best first. Leaves with no
// overlap are never returned.
func (s *Searcher) Search(query string, root *Node) []domain.Snippet {
	if root == nil {
		return nil
	}
	tokens := textnorm.Tokens(s.normalizer.Normalize(query), s.minTokenLen)
	if len(tokens) == 0 {
		return nil
	}

	var snippets []domain.Snippet
	Walk(root, func(path string, leaf *Node) {
		score := textnorm.CountContained(tokens, strings.ToLower(leaf.Text))
		if score > 0 {
			snippets = append(snippets, domain.Snippet{Path: path, Content: leaf.Text, Score: score})
		}
	})
	sort.SliceStable(snippets, func(i, j int) bool { return snippets[i].Score > snippets[j].Score })
	if len(snippets) > s.topK {
		snippets = snippets[:s.topK]
	}
	return snippets
}
