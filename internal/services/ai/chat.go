package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/models"
)

// DefaultSessionTTL is how long an idle chat session is kept
const DefaultSessionTTL = 30 * time.Minute

// DegradedReply is returned in place of a model reply when the provider fails
const DegradedReply = "Sorry, I couldn't reach the AI service just now. Please try again in a moment."

var (
	// ErrSessionNotFound is returned for unknown or expired session ids
	ErrSessionNotFound = errors.New("chat session not found")
	// ErrEmptyMessage is returned for blank chat messages
	ErrEmptyMessage = errors.New("message must not be empty")
)

// ChatService manages chat sessions
type ChatService struct {
	provider AIProvider
	sessions map[string]*ChatSession
	mu       sync.RWMutex // Protects concurrent access to sessions map
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// ChatSession is a refinement conversation about one question and answer
type ChatSession struct {
	ID            string        `json:"id"`
	QuestionText  string        `json:"questionText"`
	CurrentAnswer string        `json:"currentAnswer,omitempty"`
	Messages      []ChatMessage `json:"messages"`
	CreatedAt     time.Time     `json:"createdAt"`
	LastActivity  time.Time     `json:"lastActivity"`

	mu sync.Mutex // serialises sends within the session
}

// ChatReply is the result of sending a message
type ChatReply struct {
	Text     string          `json:"text"`
	Sources  []models.Source `json:"sources"`
	Degraded bool            `json:"degraded"`
}

// NewChatService creates a new chat service. provider may be nil, in which case every
// reply is degraded.
func NewChatService(provider AIProvider, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		provider: provider,
		sessions: make(map[string]*ChatSession),
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		logger:   logger,
	}
}

// SetTTL changes the idle timeout for sessions
func (s *ChatService) SetTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttl = ttl
}

// CreateSession starts a conversation about questionText and its current answer
func (s *ChatService) CreateSession(questionText, currentAnswer string) *ChatSession {
	now := s.now()
	session := &ChatSession{
		ID:            uuid.NewString(),
		QuestionText:  questionText,
		CurrentAnswer: currentAnswer,
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: BuildChatSystemPrompt(questionText, currentAnswer)},
		},
		CreatedAt:    now,
		LastActivity: now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Get returns the session with the given id
func (s *ChatService) Get(id string) (*ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Send posts message to the session. Provider failures produce a degraded placeholder
// reply rather than an error; the failed turn is not kept in the history.
func (s *ChatService) Send(ctx context.Context, id, message string) (*ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	session, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	history := make([]ChatMessage, len(session.Messages), len(session.Messages)+1)
	copy(history, session.Messages)
	history = append(history, ChatMessage{Role: RoleUser, Content: message})

	resp, err := s.chat(ctx, history)
	if err != nil {
		s.logger.Warn("chat_reply_degraded",
			zap.String("session_id", id),
			zap.Error(err))
		return &ChatReply{Text: DegradedReply, Sources: []models.Source{}, Degraded: true}, nil
	}

	// The session may have been closed while the provider was answering
	if _, err := s.Get(id); err != nil {
		return nil, err
	}

	session.Messages = append(history, ChatMessage{Role: RoleAssistant, Content: resp.Message})
	session.LastActivity = s.now()

	sources := resp.Sources
	if sources == nil {
		sources = []models.Source{}
	}
	return &ChatReply{Text: resp.Message, Sources: sources}, nil
}

func (s *ChatService) chat(ctx context.Context, history []ChatMessage) (*ChatResponse, error) {
	if s.provider == nil {
		return nil, ErrNotConfigured
	}
	return s.provider.Chat(ctx, history)
}

// CloseSession closes a chat session
func (s *ChatService) CloseSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Prune removes sessions idle longer than the TTL and returns how many were removed
func (s *ChatService) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, session := range s.sessions {
		// Sessions mid-send hold their lock; skip rather than wait
		if !session.mu.TryLock() {
			continue
		}
		idle := session.LastActivity.Before(cutoff)
		session.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartJanitor prunes idle sessions every interval until ctx is cancelled
func (s *ChatService) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Prune(); n > 0 {
				s.logger.Debug("chat_sessions_pruned", zap.Int("count", n))
			}
		}
	}
}

// Len returns the number of live sessions
func (s *ChatService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
