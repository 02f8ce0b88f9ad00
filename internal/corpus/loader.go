// Package corpus loads the FAQ list and the knowledge tree from disk.
package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"chatconnect/internal/doctree"
	"chatconnect/internal/domain"
)

// Knowledge is an immutable snapshot of the local knowledge base.
type Knowledge struct {
	FAQ      []domain.FAQEntry
	Tree     *doctree.Node
	LoadedAt time.Time
}

// HasTree reports whether a document tree was loaded.
func (k *Knowledge) HasTree() bool { return k != nil && k.Tree != nil }

// faqRecord accepts the Portuguese pergunta/resposta keys as well as English ones.
type faqRecord struct {
	Pergunta string `json:"pergunta" yaml:"pergunta"`
	Resposta string `json:"resposta" yaml:"resposta"`
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

func (r faqRecord) entry() domain.FAQEntry {
	e := domain.FAQEntry{Question: r.Pergunta, Answer: r.Resposta}
	if e.Question == "" {
		e.Question = r.Question
	}
	if e.Answer == "" {
		e.Answer = r.Answer
	}
	return e
}

// Loader reads knowledge files. JSON and YAML are picked by extension.
type Loader struct {
	faqPath  string
	treePath string
}

// NewLoader creates a loader. Either path may be empty.
func NewLoader(faqPath, treePath string) *Loader {
	return &Loader{faqPath: faqPath, treePath: treePath}
}

// Paths returns the configured, non-empty file paths.
func (l *Loader) Paths() []string {
	var out []string
	for _, p := range []string{l.faqPath, l.treePath} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads every configured file into a new snapshot.
func (l *Loader) Load() (*Knowledge, error) {
	k := &Knowledge{LoadedAt: time.Now()}
	if l.faqPath != "" {
		faq, err := LoadFAQ(l.faqPath)
		if err != nil {
			return nil, err
		}
		k.FAQ = faq
	}
	if l.treePath != "" {
		tree, err := LoadTree(l.treePath)
		if err != nil {
			return nil, err
		}
		k.Tree = tree
	}
	return k, nil
}

// LoadFAQ reads a list of question/answer records. Records without a question are skipped.
func LoadFAQ(path string) ([]domain.FAQEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read faq %s: %w", path, err)
	}
	var records []faqRecord
	if isYAML(path) {
		err = yaml.Unmarshal(data, &records)
	} else {
		err = json.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("parse faq %s: %w", path, err)
	}
	entries := make([]domain.FAQEntry, 0, len(records))
	for _, r := range records {
		e := r.entry()
		if strings.TrimSpace(e.Question) == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// LoadTree reads a nested knowledge document.
func LoadTree(path string) (*doctree.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tree %s: %w", path, err)
	}
	var root *doctree.Node
	if isYAML(path) {
		root, err = doctree.DecodeYAML(data)
	} else {
		root, err = doctree.DecodeJSON(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("parse tree %s: %w", path, err)
	}
	return root, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
