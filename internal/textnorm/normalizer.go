package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Synonym maps a surface form to its canonical token.
type Synonym struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// DefaultSynonyms is the product vocabulary used when no table is configured.
func DefaultSynonyms() []Synonym {
	return []Synonym{
		{From: "app", To: "aplicativo"},
		{From: "apps", To: "aplicativo"},
		{From: "software", To: "aplicativo"},
		{From: "sistema", To: "aplicativo"},
		{From: "connect+", To: "connect"},
	}
}

// Normalizer lowercases, trims and rewrites synonyms in a query.
// Pairs are applied in declaration order, so overlapping patterns resolve
// deterministically.
type Normalizer struct {
	synonyms   []Synonym
	wholeWords bool
}

// NewNormalizer creates a normalizer. With wholeWords set, a pattern only
// matches when it is not glued to a letter or digit on either side.
func NewNormalizer(synonyms []Synonym, wholeWords bool) *Normalizer {
	table := make([]Synonym, 0, len(synonyms))
	for _, s := range synonyms {
		from := strings.ToLower(strings.TrimSpace(s.From))
		if from == "" {
			continue
		}
		table = append(table, Synonym{From: from, To: strings.ToLower(s.To)})
	}
	return &Normalizer{synonyms: table, wholeWords: wholeWords}
}

// Normalize returns the canonical form of raw. An empty result means "no query".
func (n *Normalizer) Normalize(raw string) string {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return ""
	}
	for _, s := range n.synonyms {
		if n.wholeWords {
			text = replaceWords(text, s.From, s.To)
		} else {
			text = strings.ReplaceAll(text, s.From, s.To)
		}
	}
	return strings.TrimSpace(text)
}

// Tokens splits text on whitespace and keeps tokens of at least minLen runes.
func Tokens(text string, minLen int) []string {
	fields := strings.Fields(text)
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minLen {
			out = append(out, f)
		}
	}
	return out
}

// CountContained returns how many tokens occur as substrings of text.
// Repeated tokens count once per occurrence in the token list.
func CountContained(tokens []string, text string) int {
	n := 0
	for _, t := range tokens {
		if strings.Contains(text, t) {
			n++
		}
	}
	return n
}

func replaceWords(s, old, repl string) string {
	if !strings.Contains(s, old) {
		return s
	}
	var b strings.Builder
	i := 0
	for {
		j := strings.Index(s[i:], old)
		if j < 0 {
			b.WriteString(s[i:])
			break
		}
		start := i + j
		end := start + len(old)
		if boundaryBefore(s, start) && boundaryAfter(s, end) {
			b.WriteString(s[i:start])
			b.WriteString(repl)
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		b.WriteString(s[i : start+size])
		i = start + size
	}
	return b.String()
}

func boundaryBefore(s string, pos int) bool {
	if pos == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:pos])
	return !isWordRune(r)
}

func boundaryAfter(s string, pos int) bool {
	if pos >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[pos:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
