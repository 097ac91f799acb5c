package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func TestBreakerProvider_TripsAfterFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	provider := &fakeProvider{err: errors.New("upstream down")}
	cfg := DefaultBreakerConfig("test")
	cfg.MinRequests = 3
	cfg.Timeout = time.Hour
	b := NewBreakerProvider(provider, cfg, nil)

	for i := 0; i < 3; i++ {
		if _, err := b.GenerateAnswer(ctx, AnswerRequest{QuestionText: "q"}); err == nil {
			t.Fatal("Expected provider error")
		}
	}
	if b.State() != gobreaker.StateOpen.String() {
		t.Fatalf("Expected open breaker, got %s", b.State())
	}

	_, err := b.Chat(ctx, []ChatMessage{{Role: RoleUser, Content: "hi"}})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected ErrOpenState, got %v", err)
	}
	if len(provider.chatCalls) != 0 {
		t.Error("Expected open breaker to short-circuit the provider")
	}
}

func TestBreakerProvider_PassesThrough(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	provider := &fakeProvider{
		answer: &AnswerResponse{Text: "[NLP] ok"},
		chat:   &ChatResponse{Message: "hi"},
	}
	b := NewBreakerProvider(provider, DefaultBreakerConfig("test"), nil)

	answer, err := b.GenerateAnswer(ctx, AnswerRequest{QuestionText: "q"})
	if err != nil || answer.Text != "[NLP] ok" {
		t.Errorf("GenerateAnswer = %+v, %v", answer, err)
	}
	chat, err := b.Chat(ctx, nil)
	if err != nil || chat.Message != "hi" {
		t.Errorf("Chat = %+v, %v", chat, err)
	}
	if b.State() != gobreaker.StateClosed.String() {
		t.Errorf("Expected closed breaker, got %s", b.State())
	}
}

func TestBreakerProvider_IgnoresCancellation(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{err: context.Canceled}
	cfg := DefaultBreakerConfig("test")
	cfg.MinRequests = 1
	b := NewBreakerProvider(provider, cfg, nil)

	for i := 0; i < 5; i++ {
		_, _ = b.GenerateAnswer(context.Background(), AnswerRequest{})
	}
	if b.State() != gobreaker.StateClosed.String() {
		t.Errorf("Expected cancellations not to trip the breaker, got %s", b.State())
	}
}
