package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/mikey/sms-spam-pilot/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the VerdictStore interface
type MemoryStore struct {
	messages map[int64]core.Message
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		messages: make(map[int64]core.Message),
		logger:   logger,
	}
}

// Insert stores a new message
func (s *MemoryStore) Insert(ctx context.Context, msg *core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[msg.ID]; ok {
		return fmt.Errorf("insert message %d: %w", msg.ID, ErrDuplicate)
	}
	s.messages[msg.ID] = *msg
	return nil
}

// Update overwrites the stored message with the same ID
func (s *MemoryStore) Update(ctx context.Context, msg *core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[msg.ID]; !ok {
		return fmt.Errorf("update message %d: %w", msg.ID, ErrNotFound)
	}
	s.messages[msg.ID] = *msg
	return nil
}

// LoadAll returns copies of every stored message, newest first
func (s *MemoryStore) LoadAll(ctx context.Context) ([]*core.Message, error) {
	s.mu.RLock()
	msgs := make([]*core.Message, 0, len(s.messages))
	for _, m := range s.messages {
		m := m
		msgs = append(msgs, &m)
	}
	s.mu.RUnlock()

	sortByDateDesc(msgs)
	return msgs, nil
}

// Clear removes every stored message
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("Clearing memory store", zap.Int("count", len(s.messages)))
	s.messages = make(map[int64]core.Message)
	return nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}
