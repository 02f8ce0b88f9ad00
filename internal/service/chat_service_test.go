package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatconnect/internal/completion"
	"chatconnect/internal/corpus"
	"chatconnect/internal/doctree"
	"chatconnect/internal/domain"
	"chatconnect/internal/faq"
	"chatconnect/internal/generic"
	"chatconnect/internal/textnorm"
)

type fakeCompleter struct {
	out    domain.Completion
	err    error
	calls  int
	system string
	msgs   []domain.Message
}

func (f *fakeCompleter) Name() string { return "fake" }

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt string, messages []domain.Message) (domain.Completion, error) {
	f.calls++
	f.system = systemPrompt
	f.msgs = messages
	return f.out, f.err
}

var sampleFAQ = []domain.FAQEntry{
	{Question: "Como uso o aplicativo Connect", Answer: "Abra o app e faça login"},
	{Question: "Como configurar roteador", Answer: "Acesse 192.168.0.1"},
	{Question: "Qual a missão da CTI", Answer: "Conectar empresas"},
}

func newService(t *testing.T, k *corpus.Knowledge, c domain.Completer) *ChatServiceImpl {
	t.Helper()
	n := textnorm.NewNormalizer(textnorm.DefaultSynonyms(), true)
	return NewChatService(
		k,
		generic.NewDetector(generic.DefaultPhrases(), generic.DefaultAnswer),
		faq.NewRanker(n, faq.DefaultBonus(), 5, 3),
		doctree.NewSearcher(n, 3, 4),
		c,
		DefaultOptions(),
		zerolog.Nop(),
	)
}

func userSays(s string) []domain.Message {
	return []domain.Message{{Role: domain.RoleUser, Content: s}}
}

func TestReply_GenericPhrase(t *testing.T) {
	fc := &fakeCompleter{}
	svc := newService(t, &corpus.Knowledge{FAQ: sampleFAQ}, fc)

	reply, err := svc.Reply(context.Background(), userSays("Já terminei, e agora?"))

	require.NoError(t, err)
	assert.Equal(t, generic.DefaultAnswer, reply.Assistant.Content)
	assert.Equal(t, domain.RoleAssistant, reply.Assistant.Role)
	assert.Equal(t, domain.Usage{}, reply.Usage)
	assert.Zero(t, fc.calls)
}

func TestReply_FAQAboveThreshold(t *testing.T) {
	fc := &fakeCompleter{}
	svc := newService(t, &corpus.Knowledge{FAQ: sampleFAQ}, fc)

	reply, err := svc.Reply(context.Background(), userSays("como uso o app connect"))

	require.NoError(t, err)
	assert.Equal(t, "Abra o app e faça login", reply.Assistant.Content)
	assert.Equal(t, domain.Usage{}, reply.Usage)
	assert.Zero(t, fc.calls)
}

func TestReply_ScoreAtThresholdGoesRemote(t *testing.T) {
	fc := &fakeCompleter{out: domain.Completion{
		Message: domain.Message{Role: domain.RoleAssistant, Content: "Use o Connect+."},
		Usage:   domain.Usage{PromptTokens: 50, CompletionTokens: 4, TotalTokens: 54},
	}}
	svc := newService(t, &corpus.Knowledge{FAQ: sampleFAQ}, fc)
	conv := userSays("configurar roteador hoje")

	reply, err := svc.Reply(context.Background(), conv)

	require.NoError(t, err)
	require.Equal(t, 1, fc.calls)
	assert.Equal(t, "Use o Connect+.", reply.Assistant.Content)
	assert.Equal(t, 54, reply.Usage.TotalTokens)
	assert.Contains(t, fc.system, "#1 Pergunta: Como configurar roteador\nResposta: Acesse 192.168.0.1")
	assert.Contains(t, fc.system, "#2 Pergunta: Como uso o aplicativo Connect")
	assert.Equal(t, conv, fc.msgs)
}

func TestReply_TreeSnippetsInContext(t *testing.T) {
	fc := &fakeCompleter{out: domain.Completion{Message: domain.Message{Role: domain.RoleAssistant, Content: "ok"}}}
	tree := doctree.Mapping(doctree.Field{Key: "a", Value: doctree.Mapping(
		doctree.Field{Key: "b", Value: doctree.String("instalação de antena externa")},
	)})
	svc := newService(t, &corpus.Knowledge{Tree: tree}, fc)

	_, err := svc.Reply(context.Background(), userSays("como funciona a instalação"))

	require.NoError(t, err)
	require.Equal(t, 1, fc.calls)
	assert.Contains(t, fc.system, "#1 Trecho (.a.b): instalação de antena externa")
}

func TestReply_CompletionFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    string
		wantErr bool
	}{
		{name: "malformed", err: fmt.Errorf("%w: no choices", completion.ErrMalformedResponse), want: "Erro ao gerar resposta."},
		{name: "unavailable", err: fmt.Errorf("%w: 503", completion.ErrUnavailable), want: "Serviço de respostas indisponível no momento: completion provider unavailable: 503"},
		{name: "deadline", err: context.DeadlineExceeded, want: "Serviço de respostas indisponível no momento: context deadline exceeded"},
		{name: "internal", err: errors.New("boom"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeCompleter{err: tt.err}
			svc := newService(t, &corpus.Knowledge{FAQ: sampleFAQ}, fc)

			reply, err := svc.Reply(context.Background(), userSays("qual o horário de atendimento"))

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.RoleAssistant, reply.Assistant.Role)
			assert.Equal(t, tt.want, reply.Assistant.Content)
			assert.Equal(t, domain.Usage{}, reply.Usage)
		})
	}
}

func TestReply_NoCompleterUsesFallback(t *testing.T) {
	svc := newService(t, &corpus.Knowledge{FAQ: sampleFAQ}, nil)

	reply, err := svc.Reply(context.Background(), userSays("qual o horário de atendimento"))

	require.NoError(t, err)
	assert.Equal(t, DefaultOptions().FallbackAnswer, reply.Assistant.Content)
}

func TestReply_EmptyConversation(t *testing.T) {
	svc := newService(t, nil, nil)

	_, err := svc.Reply(context.Background(), nil)

	assert.ErrorIs(t, err, ErrNoMessages)
}

func TestReply_UsesLastMessageOnly(t *testing.T) {
	fc := &fakeCompleter{}
	svc := newService(t, &corpus.Knowledge{FAQ: sampleFAQ}, fc)
	conv := []domain.Message{
		{Role: domain.RoleUser, Content: "terminei"},
		{Role: domain.RoleAssistant, Content: "certo"},
		{Role: domain.RoleUser, Content: "como uso o app connect"},
	}

	reply, err := svc.Reply(context.Background(), conv)

	require.NoError(t, err)
	assert.Equal(t, "Abra o app e faça login", reply.Assistant.Content)
}

func TestSetKnowledge_Swaps(t *testing.T) {
	svc := newService(t, &corpus.Knowledge{}, nil)

	reply, err := svc.Reply(context.Background(), userSays("como uso o app connect"))
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions().FallbackAnswer, reply.Assistant.Content)

	svc.SetKnowledge(&corpus.Knowledge{FAQ: sampleFAQ})

	reply, err = svc.Reply(context.Background(), userSays("como uso o app connect"))
	require.NoError(t, err)
	assert.Equal(t, "Abra o app e faça login", reply.Assistant.Content)
	assert.Len(t, svc.Knowledge().FAQ, 3)
}

func TestBuildContext(t *testing.T) {
	got := BuildContext(
		[]domain.ScoredFAQEntry{
			{Entry: domain.FAQEntry{Question: "q1", Answer: "a1"}, Score: 2},
			{Entry: domain.FAQEntry{Question: "q2", Answer: "a2"}},
		},
		[]domain.Snippet{{Path: ".x[0]", Content: "texto", Score: 1}},
	)

	assert.Equal(t, "#1 Pergunta: q1\nResposta: a1\n\n#2 Pergunta: q2\nResposta: a2\n\n#1 Trecho (.x[0]): texto", got)
	assert.Empty(t, BuildContext(nil, nil))
}

func TestPrompt_System(t *testing.T) {
	p := DefaultPrompt()

	got := p.System("#1 Pergunta: x\nResposta: y")

	assert.Contains(t, got, "Connect+")
	assert.Contains(t, got, "CTI Brasil")
	assert.Contains(t, got, "no máximo 15 palavras")
	assert.Contains(t, got, p.Refusal)
	assert.Contains(t, got, "#1 Pergunta: x\nResposta: y")
}
