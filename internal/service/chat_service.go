package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"chatconnect/internal/completion"
	"chatconnect/internal/corpus"
	"chatconnect/internal/doctree"
	"chatconnect/internal/domain"
	"chatconnect/internal/faq"
	"chatconnect/internal/generic"
)

// ErrNoMessages is returned when the conversation is empty.
var ErrNoMessages = errors.New("conversation has no messages")

// Routes reported in logs.
const (
	RouteGeneric    = "generic"
	RouteFAQ        = "faq"
	RouteCompletion = "completion"
	RouteFallback   = "fallback"
)

// Options tune the answer policy.
type Options struct {
	// Threshold is the top FAQ score that must be exceeded to answer locally.
	Threshold int
	// FallbackAnswer is returned when no completer is configured.
	FallbackAnswer string
	// Placeholder is returned when the provider answers with an unusable body.
	Placeholder string
	// UnavailableAnswer prefixes the diagnostic returned when the provider cannot be reached.
	UnavailableAnswer string
	Prompt            Prompt
}

// DefaultOptions returns the stock answer policy.
func DefaultOptions() Options {
	return Options{
		Threshold:         2,
		FallbackAnswer:    "Não encontrei essa informação. Consulte o suporte técnico pelo app Connect+.",
		Placeholder:       "Erro ao gerar resposta.",
		UnavailableAnswer: "Serviço de respostas indisponível no momento",
		Prompt:            DefaultPrompt(),
	}
}

// ChatServiceImpl composes replies from local knowledge and, when that is not
// enough, a remote completion.
type ChatServiceImpl struct {
	detector  *generic.Detector
	ranker    *faq.Ranker
	searcher  *doctree.Searcher
	completer domain.Completer
	opts      Options
	logger    zerolog.Logger
	knowledge atomic.Pointer[corpus.Knowledge]
}

// NewChatService wires the pipeline. searcher and completer may be nil: tree
// search then never runs, and the fallback answer replaces the remote call.
func NewChatService(knowledge *corpus.Knowledge, detector *generic.Detector, ranker *faq.Ranker, searcher *doctree.Searcher, completer domain.Completer, opts Options, logger zerolog.Logger) *ChatServiceImpl {
	s := &ChatServiceImpl{
		detector:  detector,
		ranker:    ranker,
		searcher:  searcher,
		completer: completer,
		opts:      opts,
		logger:    logger.With().Str("component", "chat").Logger(),
	}
	s.SetKnowledge(knowledge)
	return s
}

// SetKnowledge swaps the knowledge snapshot used by subsequent replies.
func (s *ChatServiceImpl) SetKnowledge(k *corpus.Knowledge) {
	if k == nil {
		k = &corpus.Knowledge{}
	}
	s.knowledge.Store(k)
}

// Knowledge returns the current snapshot.
func (s *ChatServiceImpl) Knowledge() *corpus.Knowledge { return s.knowledge.Load() }

// Reply answers the last message of the conversation.
func (s *ChatServiceImpl) Reply(ctx context.Context, messages []domain.Message) (domain.Reply, error) {
	if len(messages) == 0 {
		return domain.Reply{}, ErrNoMessages
	}
	query := domain.LastContent(messages)

	if phrase, ok := s.detector.Match(query); ok {
		s.logger.Debug().Str("route", RouteGeneric).Str("phrase", phrase).Msg("reply")
		return localReply(s.detector.Answer()), nil
	}

	k := s.knowledge.Load()
	ranked := s.ranker.Rank(query, k.FAQ)
	top := 0
	if len(ranked) > 0 {
		top = ranked[0].Score
	}
	if len(ranked) > 0 && top > s.opts.Threshold {
		s.logger.Debug().Str("route", RouteFAQ).Int("top_score", top).Msg("reply")
		return localReply(ranked[0].Entry.Answer), nil
	}

	if s.completer == nil {
		s.logger.Debug().Str("route", RouteFallback).Int("top_score", top).Msg("reply")
		return localReply(s.opts.FallbackAnswer), nil
	}

	var snippets []domain.Snippet
	if s.searcher != nil && k.HasTree() {
		snippets = s.searcher.Search(query, k.Tree)
	}
	system := s.opts.Prompt.System(BuildContext(ranked, snippets))

	out, err := s.completer.Complete(ctx, system, messages)
	switch {
	case err == nil:
		s.logger.Info().
			Str("route", RouteCompletion).
			Str("provider", s.completer.Name()).
			Int("top_score", top).
			Int("snippets", len(snippets)).
			Int("total_tokens", out.Usage.TotalTokens).
			Msg("reply")
		return domain.Reply{Assistant: out.Message, Usage: out.Usage}, nil
	case errors.Is(err, completion.ErrMalformedResponse):
		s.logger.Warn().Err(err).Str("provider", s.completer.Name()).Msg("completion returned malformed response")
		return localReply(s.opts.Placeholder), nil
	case errors.Is(err, completion.ErrUnavailable), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		s.logger.Warn().Err(err).Str("provider", s.completer.Name()).Msg("completion unavailable")
		return localReply(fmt.Sprintf("%s: %v", s.opts.UnavailableAnswer, err)), nil
	default:
		return domain.Reply{}, fmt.Errorf("complete with %s: %w", s.completer.Name(), err)
	}
}

func localReply(content string) domain.Reply {
	return domain.Reply{Assistant: domain.Message{Role: domain.RoleAssistant, Content: content}}
}
