package service

import (
	"fmt"
	"strings"

	"chatconnect/internal/domain"
)

// Prompt holds the knobs of the instructional system prompt.
type Prompt struct {
	Product  string
	Company  string
	MaxWords int
	Refusal  string
}

// DefaultPrompt returns the Connect+ / CTI Brasil prompt settings.
func DefaultPrompt() Prompt {
	return Prompt{
		Product:  "Connect+",
		Company:  "CTI Brasil",
		MaxWords: 15,
		Refusal:  "Posso ajudar apenas com temas da CTI e suporte técnico corporativo.",
	}
}

const systemTemplate = `Você é a assistente virtual da %[1]s, aplicativo criado para %[2]s, provedor de internet corporativa.

Sua função é ajudar clientes e técnicos com:
  - Instalação e suporte de links dedicados e internet corporativa.
  - Uso do aplicativo %[1]s (avaliações técnicas, modo AR, fotos, medições e checklists).
  - Explicações institucionais: missão, valores e funcionamento da empresa.
  - Orientações sobre coleta de evidências e envio de dados pelo %[1]s.

Use APENAS as informações abaixo para responder:
%[3]s

Regras:
  - Responda com no máximo %[4]d palavras.
  - Mantenha tom profissional, educado e confiante.
  - Se o usuário perguntar sobre outro tema (esporte, política, clima etc.), diga:
    "%[5]s"
  - Sempre que possível, mencione o app %[1]s nas orientações.`

// System renders the system prompt around a context block.
func (p Prompt) System(contextBlock string) string {
	return fmt.Sprintf(systemTemplate, p.Product, p.Company, contextBlock, p.MaxWords, p.Refusal)
}

// BuildContext renders ranked FAQ entries and tree snippets as numbered blocks
// separated by blank lines.
func BuildContext(entries []domain.ScoredFAQEntry, snippets []domain.Snippet) string {
	blocks := make([]string, 0, len(entries)+len(snippets))
	for i, e := range entries {
		blocks = append(blocks, fmt.Sprintf("#%d Pergunta: %s\nResposta: %s", i+1, e.Entry.Question, e.Entry.Answer))
	}
	for i, s := range snippets {
		blocks = append(blocks, fmt.Sprintf("#%d Trecho (%s): %s", i+1, s.Path, s.Content))
	}
	return strings.Join(blocks, "\n\n")
}
