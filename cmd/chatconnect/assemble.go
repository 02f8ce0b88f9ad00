package main

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"chatconnect/internal/completion"
	"chatconnect/internal/completion/azure"
	"chatconnect/internal/completion/openai"
	"chatconnect/internal/config"
	"chatconnect/internal/corpus"
	"chatconnect/internal/doctree"
	"chatconnect/internal/domain"
	"chatconnect/internal/faq"
	"chatconnect/internal/generic"
	"chatconnect/internal/observability"
	"chatconnect/internal/service"
	"chatconnect/internal/textnorm"
)

// app is the assembled process: configuration, logger and chat service.
type app struct {
	cfg      *config.AppConfig
	logger   zerolog.Logger
	loader   *corpus.Loader
	service  *service.ChatServiceImpl
	provider string
}

func loadConfig(path string) (*config.AppConfig, error) {
	var cfg *config.AppConfig
	var err error
	if path == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func buildApp(cfg *config.AppConfig, logOut io.Writer) (*app, error) {
	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      logOut,
		ServiceName: "chatconnect",
	})

	loader := corpus.NewLoader(cfg.Knowledge.FAQPath, cfg.Knowledge.TreePath)
	knowledge, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load knowledge: %w", err)
	}

	completer, err := buildCompleter(cfg.Completion)
	if err != nil {
		return nil, err
	}
	provider := config.ProviderNone
	if completer != nil {
		provider = completer.Name()
	}

	normalizer := textnorm.NewNormalizer(cfg.Ranking.Synonyms, cfg.Ranking.WholeWords)

	var bonus *faq.Bonus
	if cfg.Ranking.Bonus.Enabled {
		bonus = &faq.Bonus{
			QueryMarker: cfg.Ranking.Bonus.QueryMarker,
			EntryMarker: cfg.Ranking.Bonus.EntryMarker,
			Points:      cfg.Ranking.Bonus.Points,
		}
	}

	opts := service.Options{
		Threshold:         cfg.Ranking.Threshold,
		FallbackAnswer:    cfg.Assistant.FallbackAnswer,
		Placeholder:       cfg.Assistant.Placeholder,
		UnavailableAnswer: cfg.Assistant.UnavailableAnswer,
		Prompt: service.Prompt{
			Product:  cfg.Assistant.Product,
			Company:  cfg.Assistant.Company,
			MaxWords: cfg.Assistant.MaxWords,
			Refusal:  cfg.Assistant.Refusal,
		},
	}

	svc := service.NewChatService(
		knowledge,
		generic.NewDetector(cfg.Generic.Phrases, cfg.Generic.Answer),
		faq.NewRanker(normalizer, bonus, cfg.Ranking.FAQTopK, cfg.Ranking.FAQMinTokenLen),
		doctree.NewSearcher(normalizer, cfg.Ranking.TreeTopK, cfg.Ranking.TreeMinTokenLen),
		completer,
		opts,
		logger,
	)

	logger.Info().
		Int("faq_entries", len(knowledge.FAQ)).
		Bool("tree", knowledge.HasTree()).
		Str("provider", provider).
		Msg("knowledge loaded")

	return &app{cfg: cfg, logger: logger, loader: loader, service: svc, provider: provider}, nil
}

// buildCompleter returns nil for the local-only provider.
func buildCompleter(cfg config.CompletionConfig) (domain.Completer, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second

	var c domain.Completer
	switch cfg.Provider {
	case config.ProviderNone:
		return nil, nil
	case config.ProviderOpenAI, "":
		oc := config.OpenAIConfig{}
		if cfg.OpenAI != nil {
			oc = *cfg.OpenAI
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:     oc.BaseURL,
			APIKeyEnv:   oc.APIKeyEnv,
			Model:       oc.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("openai completion init failed: %w", err)
		}
		c = client
	case config.ProviderAzure:
		if cfg.Azure == nil {
			return nil, fmt.Errorf("azure completion config missing")
		}
		client, err := azure.NewClient(azure.Config{
			Endpoint:    cfg.Azure.Endpoint,
			Deployment:  cfg.Azure.Deployment,
			APIVersion:  cfg.Azure.APIVersion,
			APIKeyEnv:   cfg.Azure.APIKeyEnv,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("azure completion init failed: %w", err)
		}
		c = client
	default:
		return nil, fmt.Errorf("unknown completion provider: %s", cfg.Provider)
	}
	return completion.NewLimited(c, cfg.RateLimitRPS, cfg.RateLimitBurst), nil
}
