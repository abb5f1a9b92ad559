// Package source provides MessageSource implementations and change
// notification for them.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/mikey/sms-spam-pilot/internal/core"
	"go.uber.org/zap"
)

// fileRecord mirrors one entry of a message export. Nullable columns are
// pointers so missing values can be told apart from empty ones.
type fileRecord struct {
	ID      int64   `json:"id"`
	Address *string `json:"address"`
	Body    *string `json:"body"`
	Date    int64   `json:"date"`
	Type    int     `json:"type"`
}

// FileSource reads messages from a JSON export of the device's inbox and
// sent folders
type FileSource struct {
	path   string
	logger *zap.Logger
}

// NewFileSource creates a source backed by the JSON file at path
func NewFileSource(path string, logger *zap.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

// Path returns the file the source reads
func (s *FileSource) Path() string {
	return s.path
}

// Fetch returns inbound and outbound messages sorted by date descending.
// Records without an address or body are dropped.
func (s *FileSource) Fetch(ctx context.Context) ([]*core.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("Message export does not exist yet", zap.String("path", s.path))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read message export: %w", err)
	}

	var records []fileRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode message export %s: %w", s.path, err)
	}

	msgs := make([]*core.Message, 0, len(records))
	dropped := 0
	for _, r := range records {
		dir := core.Direction(r.Type)
		if r.Address == nil || r.Body == nil || (dir != core.DirectionInbound && dir != core.DirectionOutbound) {
			dropped++
			continue
		}
		msgs = append(msgs, &core.Message{
			ID:        r.ID,
			Address:   *r.Address,
			Body:      *r.Body,
			Date:      r.Date,
			Direction: dir,
		})
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Date > msgs[j].Date
	})

	s.logger.Debug("Read message export",
		zap.String("path", s.path),
		zap.Int("messages", len(msgs)),
		zap.Int("dropped", dropped))

	return msgs, nil
}

// Empty is a MessageSource with no messages
type Empty struct{}

// Fetch always returns no messages
func (Empty) Fetch(ctx context.Context) ([]*core.Message, error) {
	return nil, nil
}
