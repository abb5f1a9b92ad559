package factory

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mikey/sms-spam-pilot/internal/adapters/store"
	"github.com/mikey/sms-spam-pilot/internal/config"
	"github.com/mikey/sms-spam-pilot/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store is a VerdictStore holding resources that must be released
type Store interface {
	core.VerdictStore
	io.Closer
}

// StoreFactory creates verdict stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateStore creates the configured verdict store
func (f *StoreFactory) CreateStore(ctx context.Context) (Store, error) {
	storeCfg := f.cfg.GetStore()
	logger := f.logger.Named("store")

	switch storeCfg.Type {
	case "memory":
		return store.NewMemoryStore(logger), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(storeCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		s, err := store.NewSQLiteStore(storeCfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "mysql":
		s, err := store.NewMySQLStore(storeCfg.MySQLDSN, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		s, err := store.NewRedisStoreFromOptions(ctx, &redis.Options{
			Addr:     storeCfg.RedisAddr,
			Password: storeCfg.RedisPassword,
			DB:       storeCfg.RedisDB,
		}, storeCfg.RedisPrefix, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeCfg.Type)
	}
}
