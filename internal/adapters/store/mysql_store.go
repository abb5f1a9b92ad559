package store

import (
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the VerdictStore interface
type MySQLStore struct {
	sqlStore
}

// NewMySQLStore connects to the MySQL database described by dsn
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	// Update relies on matched rather than changed row counts
	cfg.ClientFoundRows = true

	db, err := sqlx.Connect("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sms (
			id BIGINT PRIMARY KEY,
			address VARCHAR(255) NOT NULL,
			body TEXT NOT NULL,
			date BIGINT NOT NULL,
			type TINYINT NOT NULL,
			spam CHAR(1) NULL,
			INDEX idx_sms_date (date)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	logger.Info("Connected to MySQL store", zap.String("addr", cfg.Addr), zap.String("database", cfg.DBName))

	return &MySQLStore{sqlStore{
		db:     db,
		logger: logger,
	}}, nil
}
