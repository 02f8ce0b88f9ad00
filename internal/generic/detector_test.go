package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetector_Match(t *testing.T) {
	d := NewDetector(DefaultPhrases(), "")

	tests := []struct {
		name   string
		input  string
		phrase string
		ok     bool
	}{
		{"closing phrase", "Já terminei!", "já terminei", true},
		{"first in list order wins", "pronto, e agora?", "e agora", true},
		{"substring inside sentence", "ok, o que vem depois disso?", "o que vem depois", true},
		{"unrelated", "como instalo a antena", "", false},
		{"empty", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			phrase, ok := d.Match(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.phrase, phrase)
		})
	}
}

func TestDetector_MatchesUnnormalizedText(t *testing.T) {
	// Synonyms are not applied: "app" stays as typed.
	d := NewDetector([]string{"o app travou"}, "reinicie")

	_, ok := d.Match("O APP travou de novo")
	assert.True(t, ok)
	assert.Equal(t, "reinicie", d.Answer())
}

func TestNewDetector_Defaults(t *testing.T) {
	d := NewDetector([]string{" ", "Pronto"}, "")

	assert.Equal(t, []string{"pronto"}, d.phrases)
	assert.Equal(t, DefaultAnswer, d.Answer())
}
