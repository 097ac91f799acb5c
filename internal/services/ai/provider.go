package ai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/models"
)

// AIProvider is the interface for AI providers
type AIProvider interface {
	// GenerateAnswer answers an interview question. The response text starts with a
	// bracketed category tag when the model follows the prompt.
	GenerateAnswer(ctx context.Context, req AnswerRequest) (*AnswerResponse, error)

	// Chat continues a refinement conversation and returns the assistant reply
	Chat(ctx context.Context, messages []ChatMessage) (*ChatResponse, error)
}

// AnswerRequest carries the question and the category labels the model may choose from
type AnswerRequest struct {
	QuestionText string
	Categories   []string
}

// AnswerResponse is the raw provider output for an answer request
type AnswerResponse struct {
	Text    string
	Sources []models.Source
}

// Chat roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a message in a chat conversation
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// ChatResponse represents a response from the AI chat
type ChatResponse struct {
	Message string          `json:"message"`
	Sources []models.Source `json:"sources,omitempty"`
}

// Provider config keys understood by the built-in factories
const (
	ConfigAPIKey    = "api_key"
	ConfigModel     = "model"
	ConfigBaseURL   = "base_url"
	ConfigWebSearch = "web_search"
)

// ErrMissingAPIKey is returned by factories when no credentials are configured
var ErrMissingAPIKey = errors.New("AI provider API key is not configured")

// ProviderFactory creates an AI provider based on the provider type
type ProviderFactory func(config map[string]string) (AIProvider, error)

// ProviderRegistry stores available AI providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// DefaultRegistry returns a registry with the OpenAI and Anthropic providers registered
func DefaultRegistry(logger *zap.Logger, debugMode bool) *ProviderRegistry {
	r := NewProviderRegistry()
	r.Register("openai", func(config map[string]string) (AIProvider, error) {
		if config[ConfigAPIKey] == "" {
			return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
		}
		webSearch, _ := strconv.ParseBool(config[ConfigWebSearch])
		return NewOpenAIProvider(OpenAIOptions{
			APIKey:    config[ConfigAPIKey],
			BaseURL:   config[ConfigBaseURL],
			Model:     config[ConfigModel],
			WebSearch: webSearch,
			Logger:    logger,
			DebugMode: debugMode,
		}), nil
	})
	r.Register("anthropic", func(config map[string]string) (AIProvider, error) {
		if config[ConfigAPIKey] == "" {
			return nil, fmt.Errorf("anthropic: %w", ErrMissingAPIKey)
		}
		return NewAnthropicProvider(AnthropicOptions{
			APIKey:    config[ConfigAPIKey],
			BaseURL:   config[ConfigBaseURL],
			Model:     config[ConfigModel],
			Logger:    logger,
			DebugMode: debugMode,
		}), nil
	})
	return r
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// Names returns the registered provider names in sorted order
func (r *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (AIProvider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}
