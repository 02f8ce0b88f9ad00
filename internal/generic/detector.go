// Package generic recognizes "what now?" style messages that should get a
// canned answer instead of a FAQ lookup.
package generic

import "strings"

// DefaultAnswer is returned for any generic closing or confusion phrase.
const DefaultAnswer = "Após enviar tudo, confirme se os dados foram recebidos no dashboard técnico Connect+."

// DefaultPhrases lists the trigger substrings in match priority order.
func DefaultPhrases() []string {
	return []string{
		"e agora", "o que faço", "o que eu faço", "pronto",
		"enviei tudo", "já terminei", "terminei", "o que vem depois",
		"o que devo fazer", "depois disso", "finalizei",
	}
}

// Detector matches raw messages against a fixed phrase list.
type Detector struct {
	phrases []string
	answer  string
}

// NewDetector creates a detector. Empty phrases are dropped.
func NewDetector(phrases []string, answer string) *Detector {
	kept := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			kept = append(kept, p)
		}
	}
	if answer == "" {
		answer = DefaultAnswer
	}
	return &Detector{phrases: kept, answer: answer}
}

// Match returns the first phrase contained in the lowercased message.
// The message is not normalized or tokenized.
func (d *Detector) Match(raw string) (string, bool) {
	msg := strings.ToLower(raw)
	for _, p := range d.phrases {
		if strings.Contains(msg, p) {
			return p, true
		}
	}
	return "", false
}

// Answer is the canned reply for a matched message.
func (d *Detector) Answer() string { return d.answer }
