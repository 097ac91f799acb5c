package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/models"
)

const (
	// DefaultOpenAIModel is the default model to use. Web search needs a search-capable model.
	DefaultOpenAIModel = "gpt-4o-mini-search-preview"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 60 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIOptions configures an OpenAIProvider
type OpenAIOptions struct {
	APIKey    string
	BaseURL   string
	Model     string
	WebSearch bool
	Logger    *zap.Logger
	DebugMode bool
}

// OpenAIProvider implements the AIProvider interface using OpenAI's chat completions API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	webSearch bool
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(opts OpenAIOptions) *OpenAIProvider {
	if opts.Model == "" {
		opts.Model = DefaultOpenAIModel
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultOpenAIBaseURL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	client := openai.NewClient(
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(opts.BaseURL),
		option.WithHTTPClient(&http.Client{Timeout: DefaultTimeout}),
	)

	return &OpenAIProvider{
		client:    client,
		model:     opts.Model,
		webSearch: opts.WebSearch,
		logger:    opts.Logger,
		debugMode: opts.DebugMode,
	}
}

// GenerateAnswer asks the model for a tagged answer, with web search when enabled
func (p *OpenAIProvider) GenerateAnswer(ctx context.Context, req AnswerRequest) (*AnswerResponse, error) {
	prompt := BuildAnswerPrompt(req)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(answerSystemPrompt),
		openai.UserMessage(prompt),
	}

	content, sources, err := p.complete(ctx, "generate_answer", messages)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	return &AnswerResponse{Text: content, Sources: sources}, nil
}

// Chat handles a chat message and returns the AI response
func (p *OpenAIProvider) Chat(ctx context.Context, messages []ChatMessage) (*ChatResponse, error) {
	openAIMessages := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			openAIMessages = append(openAIMessages, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			openAIMessages = append(openAIMessages, openai.AssistantMessage(msg.Content))
		default:
			openAIMessages = append(openAIMessages, openai.UserMessage(msg.Content))
		}
	}

	content, sources, err := p.complete(ctx, "chat", openAIMessages)
	if err != nil {
		return nil, fmt.Errorf("failed to chat: %w", err)
	}
	return &ChatResponse{Message: content, Sources: sources}, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, operation string, messages []openai.ChatCompletionMessageParamUnion) (string, []models.Source, error) {
	requestID := ExtractRequestID(ctx)
	questionID := ExtractQuestionID(ctx)

	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
		// Temperature omitted; search models reject non-default values
	}
	if p.webSearch {
		req.WebSearchOptions = openai.ChatCompletionNewParamsWebSearchOptions{
			SearchContextSize: "medium",
		}
	}

	if p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("message_count", len(messages)),
			zap.Bool("web_search", p.webSearch),
			zap.String("request_id", requestID),
			zap.String("question_id", questionID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", nil, apiErr
		}
		return "", nil, err
	}

	if len(resp.Choices) == 0 {
		return "", nil, errors.New(ErrNoChoicesInResponse)
	}

	msg := resp.Choices[0].Message
	sources := make([]models.Source, 0, len(msg.Annotations))
	seen := make(map[string]bool)
	for _, a := range msg.Annotations {
		uri := a.URLCitation.URL
		if uri == "" || seen[uri] {
			continue
		}
		seen[uri] = true
		sources = append(sources, models.Source{URI: uri, Title: a.URLCitation.Title})
	}

	if p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(msg.Content)),
			zap.String("response_preview", SanitizeResponse(msg.Content, true)),
			zap.Int("source_count", len(sources)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return msg.Content, sources, nil
}
