package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"chatconnect/internal/generic"
	"chatconnect/internal/textnorm"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host                string   `yaml:"host"`
	Port                int      `yaml:"port"`
	RequestTimeoutSecs  int      `yaml:"request_timeout_secs"`
	ShutdownTimeoutSecs int      `yaml:"shutdown_timeout_secs"`
	CORSOrigins         []string `yaml:"cors_origins"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// KnowledgeConfig points at the FAQ list and the optional document tree.
type KnowledgeConfig struct {
	FAQPath  string `yaml:"faq_path"`
	TreePath string `yaml:"tree_path"`
	Watch    bool   `yaml:"watch"`
}

// BonusConfig configures the product affinity bonus of the FAQ ranker.
type BonusConfig struct {
	Enabled     bool   `yaml:"enabled"`
	QueryMarker string `yaml:"query_marker"`
	EntryMarker string `yaml:"entry_marker"`
	Points      int    `yaml:"points"`
}

// RankingConfig configures normalization, FAQ ranking and tree search.
type RankingConfig struct {
	Threshold       int                `yaml:"threshold"`
	FAQTopK         int                `yaml:"faq_top_k"`
	FAQMinTokenLen  int                `yaml:"faq_min_token_len"`
	TreeTopK        int                `yaml:"tree_top_k"`
	TreeMinTokenLen int                `yaml:"tree_min_token_len"`
	WholeWords      bool               `yaml:"whole_words"`
	Synonyms        []textnorm.Synonym `yaml:"synonyms"`
	Bonus           BonusConfig        `yaml:"bonus"`
}

// GenericConfig configures the canned answer for generic closing phrases.
type GenericConfig struct {
	Phrases []string `yaml:"phrases"`
	Answer  string   `yaml:"answer"`
}

// AssistantConfig holds the persona and the fixed answers of the assistant.
type AssistantConfig struct {
	Product           string `yaml:"product"`
	Company           string `yaml:"company"`
	MaxWords          int    `yaml:"max_words"`
	Refusal           string `yaml:"refusal"`
	FallbackAnswer    string `yaml:"fallback_answer"`
	Placeholder       string `yaml:"placeholder"`
	UnavailableAnswer string `yaml:"unavailable_answer"`
}

// OpenAIConfig holds settings for an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// AzureConfig holds settings for an Azure OpenAI deployment.
type AzureConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Deployment string `yaml:"deployment"`
	APIVersion string `yaml:"api_version"`
	APIKeyEnv  string `yaml:"api_key_env"`
}

// CompletionConfig selects and configures the remote completion provider.
type CompletionConfig struct {
	Provider       string        `yaml:"provider"`
	MaxTokens      int           `yaml:"max_tokens"`
	Temperature    float64       `yaml:"temperature"`
	TimeoutSecs    int           `yaml:"timeout_secs"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
	OpenAI         *OpenAIConfig `yaml:"openai,omitempty"`
	Azure          *AzureConfig  `yaml:"azure,omitempty"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Knowledge  KnowledgeConfig  `yaml:"knowledge"`
	Ranking    RankingConfig    `yaml:"ranking"`
	Generic    GenericConfig    `yaml:"generic"`
	Assistant  AssistantConfig  `yaml:"assistant"`
	Completion CompletionConfig `yaml:"completion"`
	Log        LogConfig        `yaml:"log"`
}

// Providers accepted in completion.provider.
const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
	ProviderNone   = "none"
)

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Keys missing from the file keep their default values. Environment overrides
// are applied last.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/chatconnect/config.yaml.
// If neither exists, it writes defaults to ~/.config/chatconnect/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, defaultConfig()); err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects settings the application cannot run with.
func (c *AppConfig) Validate() error {
	var errs []error
	switch c.Completion.Provider {
	case ProviderOpenAI, ProviderNone:
	case ProviderAzure:
		if c.Completion.Azure == nil || c.Completion.Azure.Endpoint == "" || c.Completion.Azure.Deployment == "" {
			errs = append(errs, errors.New("completion.azure.endpoint and completion.azure.deployment are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown completion provider %q", c.Completion.Provider))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port %d", c.Server.Port))
	}
	if c.Ranking.Threshold < 0 {
		errs = append(errs, fmt.Errorf("ranking.threshold must not be negative, got %d", c.Ranking.Threshold))
	}
	if c.Ranking.FAQTopK <= 0 || c.Ranking.TreeTopK <= 0 {
		errs = append(errs, errors.New("ranking top-k values must be positive"))
	}
	if c.Completion.RateLimitRPS < 0 {
		errs = append(errs, errors.New("completion.rate_limit_rps must not be negative"))
	}
	if c.Knowledge.FAQPath == "" {
		errs = append(errs, errors.New("knowledge.faq_path is required"))
	}
	return errors.Join(errs...)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "chatconnect", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:                3000,
			RequestTimeoutSecs:  60,
			ShutdownTimeoutSecs: 10,
			CORSOrigins:         []string{"*"},
		},
		Knowledge: KnowledgeConfig{FAQPath: "faqconnect.json"},
		Ranking: RankingConfig{
			Threshold:       2,
			FAQTopK:         5,
			FAQMinTokenLen:  3,
			TreeTopK:        3,
			TreeMinTokenLen: 4,
			WholeWords:      true,
			Synonyms:        textnorm.DefaultSynonyms(),
			Bonus:           BonusConfig{Enabled: true, QueryMarker: "aplicativo", EntryMarker: "connect", Points: 2},
		},
		Generic: GenericConfig{Phrases: generic.DefaultPhrases(), Answer: generic.DefaultAnswer},
		Assistant: AssistantConfig{
			Product:           "Connect+",
			Company:           "CTI Brasil",
			MaxWords:          15,
			Refusal:           "Posso ajudar apenas com temas da CTI e suporte técnico corporativo.",
			FallbackAnswer:    "Não encontrei essa informação. Consulte o suporte técnico pelo app Connect+.",
			Placeholder:       "Erro ao gerar resposta.",
			UnavailableAnswer: "Serviço de respostas indisponível no momento",
		},
		Completion: CompletionConfig{
			Provider:    ProviderOpenAI,
			MaxTokens:   30,
			Temperature: 0.4,
			TimeoutSecs: 30,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.RequestTimeoutSecs == 0 {
		cfg.Server.RequestTimeoutSecs = 60
	}
	if cfg.Server.ShutdownTimeoutSecs == 0 {
		cfg.Server.ShutdownTimeoutSecs = 10
	}
	if cfg.Ranking.FAQTopK == 0 {
		cfg.Ranking.FAQTopK = 5
	}
	if cfg.Ranking.FAQMinTokenLen == 0 {
		cfg.Ranking.FAQMinTokenLen = 3
	}
	if cfg.Ranking.TreeTopK == 0 {
		cfg.Ranking.TreeTopK = 3
	}
	if cfg.Ranking.TreeMinTokenLen == 0 {
		cfg.Ranking.TreeMinTokenLen = 4
	}
	if cfg.Completion.Provider == "" {
		cfg.Completion.Provider = ProviderOpenAI
	}
	cfg.Completion.Provider = strings.ToLower(cfg.Completion.Provider)
	if cfg.Completion.TimeoutSecs == 0 {
		cfg.Completion.TimeoutSecs = 30
	}
	if cfg.Completion.MaxTokens == 0 {
		cfg.Completion.MaxTokens = 30
	}
	if cfg.Completion.Provider == ProviderOpenAI {
		if cfg.Completion.OpenAI == nil {
			cfg.Completion.OpenAI = &OpenAIConfig{}
		}
		if cfg.Completion.OpenAI.BaseURL == "" {
			cfg.Completion.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Completion.OpenAI.APIKeyEnv == "" {
			cfg.Completion.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Completion.OpenAI.Model == "" {
			cfg.Completion.OpenAI.Model = "gpt-4o-mini"
		}
	}
	if cfg.Completion.Provider == ProviderAzure && cfg.Completion.Azure != nil {
		if cfg.Completion.Azure.APIKeyEnv == "" {
			cfg.Completion.Azure.APIKeyEnv = "AZURE_OPENAI_API_KEY"
		}
		if cfg.Completion.Azure.APIVersion == "" {
			cfg.Completion.Azure.APIVersion = "2024-02-15-preview"
		}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

func applyEnvOverrides(cfg *AppConfig) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("CHATCONNECT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CHATCONNECT_PROVIDER"); v != "" {
		cfg.Completion.Provider = strings.ToLower(v)
		applyConfigDefaults(cfg)
	}
	return nil
}
