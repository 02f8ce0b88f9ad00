package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer(DefaultSynonyms(), true)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t\n", ""},
		{"lowercase and trim", "  Como Uso  ", "como uso"},
		{"app synonym", "como uso o app connect", "como uso o aplicativo connect"},
		{"plural synonym", "quais apps existem", "quais aplicativo existem"},
		{"product alias", "abrir o Connect+ agora", "abrir o connect agora"},
		{"sistema", "o sistema travou", "o aplicativo travou"},
		{"no match inside longer word", "happy application", "happy application"},
		{"adjacent matches", "app app", "aplicativo aplicativo"},
		{"punctuation boundary", "o app, por favor", "o aplicativo, por favor"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, n.Normalize(tc.input))
		})
	}
}

func TestNormalizer_SubstringMode(t *testing.T) {
	n := NewNormalizer(DefaultSynonyms(), false)

	// Raw substring replacement rewrites "app" inside longer words.
	assert.Equal(t, "haplicativoy", n.Normalize("happy"))
	assert.Equal(t, "aplicativos", n.Normalize("apps"))
}

func TestNormalizer_Idempotent(t *testing.T) {
	n := NewNormalizer(DefaultSynonyms(), true)

	inputs := []string{
		"Como uso o APP Connect+?",
		"o sistema e o software",
		"instalação de antena",
		"",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input %q", in)
	}
}

func TestNormalizer_DeclarationOrder(t *testing.T) {
	n := NewNormalizer([]Synonym{
		{From: "wifi", To: "rede"},
		{From: "rede", To: "internet"},
	}, true)

	assert.Equal(t, "internet", n.Normalize("wifi"))
}

func TestNormalizer_SkipsEmptyPatterns(t *testing.T) {
	n := NewNormalizer([]Synonym{{From: "  ", To: "x"}}, true)
	assert.Equal(t, "abc", n.Normalize("abc"))
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"tudo", "bem"}, Tokens("oi tudo bem", 3))
	assert.Equal(t, []string{"tudo"}, Tokens("oi tudo bem", 4))
	assert.Empty(t, Tokens("", 3))
	// Length is counted in runes, not bytes.
	assert.Equal(t, []string{"não"}, Tokens("não é", 3))
}

func TestCountContained(t *testing.T) {
	assert.Equal(t, 2, CountContained([]string{"uso", "uso"}, "como uso"))
	assert.Equal(t, 0, CountContained(nil, "qualquer"))
	assert.Equal(t, 1, CountContained([]string{"connect", "zzz"}, "aplicativo connect"))
}
