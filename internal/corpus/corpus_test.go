package corpus

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatconnect/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFAQ_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "faq.json", `[
		{"pergunta": "Como uso o aplicativo Connect?", "resposta": "Abra o app e faça login"},
		{"question": "What is CTI?", "answer": "An ISP."},
		{"pergunta": "", "resposta": "sem pergunta"}
	]`)

	entries, err := LoadFAQ(path)

	require.NoError(t, err)
	assert.Equal(t, []domain.FAQEntry{
		{Question: "Como uso o aplicativo Connect?", Answer: "Abra o app e faça login"},
		{Question: "What is CTI?", Answer: "An ISP."},
	}, entries)
}

func TestLoadFAQ_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "faq.yml", "- pergunta: Qual o horário?\n  resposta: Das 8h às 18h.\n")

	entries, err := LoadFAQ(path)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Das 8h às 18h.", entries[0].Answer)
}

func TestLoadFAQ_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFAQ(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.json", `{"pergunta": "not a list"}`)
	_, err = LoadFAQ(bad)
	assert.Error(t, err)
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	faq := writeFile(t, dir, "faq.json", `[{"pergunta": "p", "resposta": "r"}]`)
	tree := writeFile(t, dir, "gdd.json", `{"a": {"b": "instalação de antena externa"}}`)

	k, err := NewLoader(faq, tree).Load()

	require.NoError(t, err)
	assert.Len(t, k.FAQ, 1)
	assert.True(t, k.HasTree())
	assert.Equal(t, 1, k.Tree.Leaves())
}

func TestLoader_OptionalFiles(t *testing.T) {
	l := NewLoader("", "")

	k, err := l.Load()

	require.NoError(t, err)
	assert.Empty(t, k.FAQ)
	assert.False(t, k.HasTree())
	assert.Empty(t, l.Paths())
}

func TestLoader_BadTree(t *testing.T) {
	dir := t.TempDir()
	tree := writeFile(t, dir, "gdd.yaml", "a: [unclosed")

	_, err := NewLoader("", tree).Load()
	assert.Error(t, err)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	faq := writeFile(t, dir, "faq.json", `[{"pergunta": "p1", "resposta": "r1"}]`)

	w, err := NewWatcher(NewLoader(faq, ""), zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()
	w.debounce = 10 * time.Millisecond

	var latest atomic.Pointer[Knowledge]
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, func(k *Knowledge) { latest.Store(k) })

	writeFile(t, dir, "faq.json", `[{"pergunta": "p1", "resposta": "r1"}, {"pergunta": "p2", "resposta": "r2"}]`)

	require.Eventually(t, func() bool {
		k := latest.Load()
		return k != nil && len(k.FAQ) == 2
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	faq := writeFile(t, dir, "faq.json", `[]`)

	w, err := NewWatcher(NewLoader(faq, ""), zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()

	other, err := filepath.Abs(filepath.Join(dir, "notes.txt"))
	require.NoError(t, err)
	_, watched := w.files[other]
	assert.False(t, watched)
}
