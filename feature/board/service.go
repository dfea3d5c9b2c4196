package board

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// MaxMessageLength is the longest accepted message, in characters.
const MaxMessageLength = 1000

var (
	// ErrEmptyMessage is returned when a message has no text.
	ErrEmptyMessage = errors.New("message text is required")
	// ErrMessageTooLong is returned for messages over MaxMessageLength.
	ErrMessageTooLong = errors.New("message text is too long")
)

// Message is one board post.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Service handles the discussion board.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a new board service.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Post stores a message.
func (s *Service) Post(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return "", ErrMessageTooLong
	}

	id, err := s.store.Add(ctx, text)
	if err != nil {
		return "", err
	}
	s.logger.Debug("Message posted", zap.String("id", id))
	return id, nil
}

// List returns messages ordered by timestamp, oldest first.
func (s *Service) List(ctx context.Context, limit int) ([]Message, error) {
	msgs, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, nil
}
