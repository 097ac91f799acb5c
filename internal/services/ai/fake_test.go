package ai

import (
	"context"
	"sync"
)

// fakeProvider records calls and returns canned responses.
type fakeProvider struct {
	mu         sync.Mutex
	answer     *AnswerResponse
	chat       *ChatResponse
	err        error
	answerReqs []AnswerRequest
	chatCalls  [][]ChatMessage
	block      chan struct{}
}

func (f *fakeProvider) GenerateAnswer(_ context.Context, req AnswerRequest) (*AnswerResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answerReqs = append(f.answerReqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

func (f *fakeProvider) Chat(_ context.Context, messages []ChatMessage) (*ChatResponse, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]ChatMessage, len(messages))
	copy(cp, messages)
	f.chatCalls = append(f.chatCalls, cp)
	if f.err != nil {
		return nil, f.err
	}
	return f.chat, nil
}

type staticCategories []string

func (s staticCategories) GetAll(context.Context) ([]string, error) {
	return []string(s), nil
}
