package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mikey/sms-spam-pilot/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps messages in a single Redis hash keyed by message ID
type RedisStore struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// redisRecord is the stored form of a message; Spam is "", "1" or "0"
type redisRecord struct {
	ID      int64          `json:"id"`
	Address string         `json:"address"`
	Body    string         `json:"body"`
	Date    int64          `json:"date"`
	Type    core.Direction `json:"type"`
	Spam    string         `json:"spam,omitempty"`
}

func toRecord(msg *core.Message) redisRecord {
	rec := redisRecord{
		ID:      msg.ID,
		Address: msg.Address,
		Body:    msg.Body,
		Date:    msg.Date,
		Type:    msg.Direction,
	}
	if v, _ := msg.Verdict.Value(); v != nil {
		rec.Spam = v.(string)
	}
	return rec
}

func (r redisRecord) message() *core.Message {
	return &core.Message{
		ID:        r.ID,
		Address:   r.Address,
		Body:      r.Body,
		Date:      r.Date,
		Direction: r.Type,
		Verdict:   core.ParseVerdict(r.Spam),
	}
}

// NewRedisStore creates a store on an existing client; keys are namespaced by prefix
func NewRedisStore(client *redis.Client, prefix string, logger *zap.Logger) *RedisStore {
	if prefix == "" {
		prefix = "smspilot"
	}
	return &RedisStore{
		client: client,
		key:    prefix + ":sms",
		logger: logger,
	}
}

// NewRedisStoreFromOptions dials Redis and verifies the connection
func NewRedisStoreFromOptions(ctx context.Context, opts *redis.Options, prefix string, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}
	logger.Info("Connected to Redis store", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return NewRedisStore(client, prefix, logger), nil
}

func (s *RedisStore) field(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Insert stores a new message
func (s *RedisStore) Insert(ctx context.Context, msg *core.Message) error {
	data, err := json.Marshal(toRecord(msg))
	if err != nil {
		return fmt.Errorf("could not encode message %d: %w", msg.ID, err)
	}
	ok, err := s.client.HSetNX(ctx, s.key, s.field(msg.ID), data).Result()
	if err != nil {
		return fmt.Errorf("could not insert message %d: %w", msg.ID, err)
	}
	if !ok {
		return fmt.Errorf("insert message %d: %w", msg.ID, ErrDuplicate)
	}
	return nil
}

// Update overwrites the stored message with the same ID
func (s *RedisStore) Update(ctx context.Context, msg *core.Message) error {
	exists, err := s.client.HExists(ctx, s.key, s.field(msg.ID)).Result()
	if err != nil {
		return fmt.Errorf("could not update message %d: %w", msg.ID, err)
	}
	if !exists {
		return fmt.Errorf("update message %d: %w", msg.ID, ErrNotFound)
	}

	data, err := json.Marshal(toRecord(msg))
	if err != nil {
		return fmt.Errorf("could not encode message %d: %w", msg.ID, err)
	}
	if err := s.client.HSet(ctx, s.key, s.field(msg.ID), data).Err(); err != nil {
		return fmt.Errorf("could not update message %d: %w", msg.ID, err)
	}
	return nil
}

// LoadAll returns every stored message, newest first
func (s *RedisStore) LoadAll(ctx context.Context) ([]*core.Message, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("could not load messages: %w", err)
	}

	msgs := make([]*core.Message, 0, len(values))
	for field, raw := range values {
		var rec redisRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			s.logger.Warn("Skipping undecodable message", zap.String("field", field), zap.Error(err))
			continue
		}
		msgs = append(msgs, rec.message())
	}

	sortByDateDesc(msgs)
	return msgs, nil
}

// Clear removes every stored message
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("could not clear messages: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
