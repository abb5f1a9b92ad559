package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mikey/sms-spam-pilot/internal/core"
	"go.uber.org/zap"
)

// sqlStore is the VerdictStore shared by the SQL backends
type sqlStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

const (
	insertQuery = `INSERT INTO sms (id, address, body, date, type, spam) VALUES (:id, :address, :body, :date, :type, :spam)`
	updateQuery = `UPDATE sms SET address = :address, body = :body, date = :date, type = :type, spam = :spam WHERE id = :id`
	selectQuery = `SELECT id, address, body, date, type, spam FROM sms ORDER BY date DESC, id DESC`
	clearQuery  = `DELETE FROM sms`
)

func (s *sqlStore) Insert(ctx context.Context, msg *core.Message) error {
	if _, err := s.db.NamedExecContext(ctx, insertQuery, msg); err != nil {
		return fmt.Errorf("could not insert message %d: %w", msg.ID, err)
	}
	return nil
}

func (s *sqlStore) Update(ctx context.Context, msg *core.Message) error {
	res, err := s.db.NamedExecContext(ctx, updateQuery, msg)
	if err != nil {
		return fmt.Errorf("could not update message %d: %w", msg.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not update message %d: %w", msg.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update message %d: %w", msg.ID, ErrNotFound)
	}
	return nil
}

func (s *sqlStore) LoadAll(ctx context.Context) ([]*core.Message, error) {
	msgs := []*core.Message{}
	if err := s.db.SelectContext(ctx, &msgs, selectQuery); err != nil {
		return nil, fmt.Errorf("could not query messages: %w", err)
	}
	s.logger.Debug("Loaded stored messages", zap.Int("count", len(msgs)))
	return msgs, nil
}

func (s *sqlStore) Clear(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx, clearQuery)
	if err != nil {
		return fmt.Errorf("could not clear messages: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		s.logger.Info("Cleared stored messages", zap.Int64("count", n))
	}
	return nil
}

func (s *sqlStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("could not close db: %w", err)
	}
	return nil
}
