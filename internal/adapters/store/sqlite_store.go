package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the VerdictStore interface
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore opens (and creates if needed) the message database at dbPath
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not set journal mode: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sms (
			id INTEGER PRIMARY KEY,
			address TEXT NOT NULL,
			body TEXT NOT NULL,
			date INTEGER NOT NULL,
			type INTEGER NOT NULL,
			spam TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_sms_date ON sms(date)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	logger.Info("Connected to SQLite store", zap.String("file", dbPath))

	return &SQLiteStore{sqlStore{
		db:     db,
		logger: logger,
	}}, nil
}
