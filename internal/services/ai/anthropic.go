package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

const (
	// DefaultAnthropicModel is the default Claude model
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	// DefaultAnthropicMaxTokens bounds reply length
	DefaultAnthropicMaxTokens = 2048
)

// AnthropicOptions configures an AnthropicProvider
type AnthropicOptions struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Logger    *zap.Logger
	DebugMode bool
}

// AnthropicProvider implements AIProvider with the Anthropic messages API. It returns
// no citations.
type AnthropicProvider struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	logger    *zap.Logger
	debugMode bool
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(opts AnthropicOptions) *AnthropicProvider {
	if opts.Model == "" {
		opts.Model = DefaultAnthropicModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultAnthropicMaxTokens
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	clientOpts := []anthropic.ClientOption{
		anthropic.WithHTTPClient(&http.Client{Timeout: DefaultTimeout}),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, anthropic.WithBaseURL(opts.BaseURL))
	}

	return &AnthropicProvider{
		client:    anthropic.NewClient(opts.APIKey, clientOpts...),
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		logger:    opts.Logger,
		debugMode: opts.DebugMode,
	}
}

// GenerateAnswer asks Claude for a tagged answer
func (p *AnthropicProvider) GenerateAnswer(ctx context.Context, req AnswerRequest) (*AnswerResponse, error) {
	text, err := p.send(ctx, "generate_answer", answerSystemPrompt, []ChatMessage{
		{Role: RoleUser, Content: BuildAnswerPrompt(req)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	return &AnswerResponse{Text: text}, nil
}

// Chat continues a conversation. System messages are folded into the system prompt.
func (p *AnthropicProvider) Chat(ctx context.Context, messages []ChatMessage) (*ChatResponse, error) {
	var system []string
	turns := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}

	text, err := p.send(ctx, "chat", strings.Join(system, "\n\n"), turns)
	if err != nil {
		return nil, fmt.Errorf("failed to chat: %w", err)
	}
	return &ChatResponse{Message: text}, nil
}

func (p *AnthropicProvider) send(ctx context.Context, operation, system string, turns []ChatMessage) (string, error) {
	if len(turns) == 0 {
		return "", errors.New("no messages to send")
	}

	msgs := make([]anthropic.Message, 0, len(turns))
	for _, t := range turns {
		content := t.Content
		role := anthropic.RoleUser
		if t.Role == RoleAssistant {
			role = anthropic.RoleAssistant
		}
		msgs = append(msgs, anthropic.Message{
			Role:    role,
			Content: []anthropic.MessageContent{{Type: "text", Text: &content}},
		})
	}

	requestID := ExtractRequestID(ctx)
	questionID := ExtractQuestionID(ctx)
	if p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("message_count", len(msgs)),
			zap.String("request_id", requestID),
			zap.String("question_id", questionID),
		)
	}

	start := time.Now()
	resp, err := p.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		System:    system,
		Messages:  msgs,
	})
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
			return "", apiErr
		}
		return "", err
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			b.WriteString(*block.Text)
		}
	}
	text := b.String()

	if p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(text)),
			zap.String("response_preview", SanitizeResponse(text, true)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	if text == "" {
		return "", errors.New("empty response")
	}
	return text, nil
}
