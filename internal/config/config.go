package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Completion providers.
const (
	ProviderArk    = "ark"
	ProviderOpenAI = "openai"
)

// Config aggregates every setting the service needs.
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Store  StoreConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Store: store}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// StoreConfig selects the message store backend.
type StoreConfig struct {
	Backend string
	Path    string
}

func loadStoreConfig() (StoreConfig, error) {
	backend := strings.ToLower(getEnvOrDefault("CHAT_STORE", StoreMemory))
	switch backend {
	case StoreMemory, StoreSQLite:
	default:
		return StoreConfig{}, fmt.Errorf("invalid CHAT_STORE value: %q", backend)
	}

	return StoreConfig{
		Backend: backend,
		Path:    getEnvOrDefault("CHAT_DB_PATH", "data/parlor.db"),
	}, nil
}

// AIConfig describes the completion provider settings.
type AIConfig struct {
	Provider string
	Timeout  time.Duration

	// Ark (Volcengine) credentials and tuning.
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int

	// OpenAI credentials and tuning.
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	OpenAIMaxTokens   int
	OpenAITemperature float64
}

// ArkEnabled reports whether the Ark credentials are usable.
func (c AIConfig) ArkEnabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// OpenAIEnabled reports whether the OpenAI credentials are usable.
func (c AIConfig) OpenAIEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// ResolveProvider returns the provider to use, honouring an explicit
// AI_PROVIDER and otherwise preferring whichever backend has credentials.
// Empty result means no provider is configured.
func (c AIConfig) ResolveProvider() string {
	switch c.Provider {
	case ProviderArk:
		if c.ArkEnabled() {
			return ProviderArk
		}
		return ""
	case ProviderOpenAI:
		if c.OpenAIEnabled() {
			return ProviderOpenAI
		}
		return ""
	}

	if c.ArkEnabled() {
		return ProviderArk
	}
	if c.OpenAIEnabled() {
		return ProviderOpenAI
	}
	return ""
}

// NewChatModel builds the Ark chat model from the configured credentials.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.ArkEnabled() {
		return nil, fmt.Errorf("ark credentials missing: provide ARK_API_KEY + Model, or the AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	timeoutSeconds := 60
	if timeoutOverride, err := parseOptionalIntEnv("AI_TIMEOUT"); err != nil {
		return AIConfig{}, err
	} else if timeoutOverride != nil && *timeoutOverride > 0 {
		timeoutSeconds = *timeoutOverride
	}

	openaiMaxTokens := 1000
	if tokensOverride, err := parseOptionalIntEnv("OPENAI_MAX_TOKENS"); err != nil {
		return AIConfig{}, err
	} else if tokensOverride != nil && *tokensOverride > 0 {
		openaiMaxTokens = *tokensOverride
	}

	openaiTemperature := 0.7
	if tempOverride, err := parseOptionalFloatEnv("OPENAI_TEMPERATURE"); err != nil {
		return AIConfig{}, err
	} else if tempOverride != nil {
		openaiTemperature = *tempOverride
	}

	provider := strings.ToLower(strings.TrimSpace(os.Getenv("AI_PROVIDER")))
	switch provider {
	case "", ProviderArk, ProviderOpenAI:
	default:
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value: %q", provider)
	}

	return AIConfig{
		Provider:          provider,
		Timeout:           time.Duration(timeoutSeconds) * time.Second,
		APIKey:            strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:         strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:         strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:             strings.TrimSpace(os.Getenv("Model")),
		BaseURL:           getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:            getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:       temperature,
		TopP:              topP,
		MaxTokens:         maxTokens,
		OpenAIAPIKey:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:     strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		OpenAIModel:       getEnvOrDefault("OPENAI_MODEL", "gpt-5"),
		OpenAIMaxTokens:   openaiMaxTokens,
		OpenAITemperature: openaiTemperature,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
