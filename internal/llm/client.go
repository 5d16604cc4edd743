// internal/llm/client.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	custom_errors "gibwerk/internal/errors"
)

// RawResponse is a provider response before normalization. See ExtractText
// for the shapes it may take.
type RawResponse = any

// Client sends a prompt to a language model. Generate never fails: provider
// errors are returned as a response whose text starts with ErrorPrefix.
type Client interface {
	Generate(ctx context.Context, prompt string) RawResponse
}

// ErrorPrefix starts the text of every synthetic error response.
const ErrorPrefix = "Error generating response: "

// Provider represents an LLM provider type.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
	ProviderGemini    Provider = "gemini"
)

const (
	DefaultModel     = "claude-3-opus-20240229"
	DefaultMaxTokens = 1000
	DefaultTimeout   = 60 * time.Second
)

// Config holds configuration for creating an LLM client.
type Config struct {
	Provider  Provider
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// contentGenerator is the part of llms.Model this package calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// LangChainClient generates text through a langchaingo model with a fixed
// model id, output token bound and wall-clock timeout.
type LangChainClient struct {
	model     contentGenerator
	modelName string
	maxTokens int
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates the client for the configured provider. A keyed provider without
// an API key is a configuration error rather than a client that fails later.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*LangChainClient, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Provider != ProviderOllama && cfg.APIKey == "" {
		return nil, &custom_errors.ConfigError{Key: "LLM_API_KEY", Message: fmt.Sprintf("API key is required for provider %q", cfg.Provider)}
	}

	var (
		model contentGenerator
		err   error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		opts := []anthropic.Option{anthropic.WithToken(cfg.APIKey), anthropic.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		model, err = anthropic.New(opts...)
	case ProviderOpenAI:
		opts := []openai.Option{openai.WithToken(cfg.APIKey), openai.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err = openai.New(opts...)
	case ProviderOllama:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		model, err = ollama.New(ollama.WithServerURL(baseURL), ollama.WithModel(cfg.Model))
	case ProviderGemini:
		model, err = googleai.New(ctx, googleai.WithAPIKey(cfg.APIKey), googleai.WithDefaultModel(cfg.Model))
	default:
		return nil, &custom_errors.ConfigError{Key: "LLM_PROVIDER", Message: fmt.Sprintf("unsupported provider %q", cfg.Provider)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create model for provider %s: %w", cfg.Provider, err)
	}

	logger.Info("LLM client configured", "provider", cfg.Provider, "model", cfg.Model, "max_tokens", cfg.MaxTokens)
	return newLangChainClient(model, cfg, logger), nil
}

func newLangChainClient(model contentGenerator, cfg Config, logger *slog.Logger) *LangChainClient {
	return &LangChainClient{
		model:     model,
		modelName: cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		logger:    logger,
	}
}

// Generate sends prompt as a single user message.
func (c *LangChainClient) Generate(ctx context.Context, prompt string) RawResponse {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		llms.WithModel(c.modelName),
		llms.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("request timed out after %s: %w", c.timeout, err)
		}
		c.logger.Error("LLM generation failed", "model", c.modelName, "error", err)
		return ErrorResponse(err)
	}
	c.logger.Debug("LLM generation finished", "model", c.modelName, "duration", time.Since(start))

	return toRawResponse(resp, c.modelName)
}

// ErrorResponse encodes err as a structured text response.
func ErrorResponse(err error) RawResponse {
	return textResponse(ErrorPrefix + err.Error())
}

func textResponse(text string) map[string]any {
	return map[string]any{
		"content": []any{
			map[string]any{"type": "text", "text": text},
		},
	}
}

func toRawResponse(resp *llms.ContentResponse, modelName string) RawResponse {
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return map[string]any{"model": modelName}
	}
	choice := resp.Choices[0]
	raw := textResponse(choice.Content)
	raw["model"] = modelName
	if choice.StopReason != "" {
		raw["stop_reason"] = choice.StopReason
	}
	return raw
}
