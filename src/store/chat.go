package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("chat session not found")

// ChatStore persists chat sessions and their message history.
type ChatStore struct {
	db *gorm.DB
}

func NewChatStore(db *gorm.DB) *ChatStore {
	return &ChatStore{db: db}
}

func (s *ChatStore) CreateSession(ctx context.Context, userID string) (*ChatSession, error) {
	session := &ChatSession{
		SessionID: "sess_" + uuid.New().String(),
		UserID:    userID,
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

func (s *ChatStore) GetSession(ctx context.Context, sessionID string) (*ChatSession, error) {
	var session ChatSession
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (s *ChatStore) ListSessions(ctx context.Context, userID string, limit int) ([]ChatSession, error) {
	if limit <= 0 {
		limit = 50
	}
	var sessions []ChatSession
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// AppendMessage records one completed chat turn and bumps the session's
// updated_at.
func (s *ChatStore) AppendMessage(ctx context.Context, msg *ChatMessage) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session ChatSession
		err := tx.Where("session_id = ?", msg.SessionID).First(&session).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&session).Update("updated_at", tx.NowFunc()).Error
	})
}

// RecentMessages returns the last n turns of a session, oldest first.
func (s *ChatStore) RecentMessages(ctx context.Context, sessionID string, n int) ([]ChatMessage, error) {
	if n <= 0 {
		n = 20
	}

	var messages []ChatMessage
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id DESC").
		Limit(n).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	// Reverse into chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *ChatStore) CountMessages(ctx context.Context, sessionID string) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&ChatMessage{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return int(count), nil
}
