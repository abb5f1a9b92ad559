package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/sms-spam-pilot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const export = `[
	{"id": 1, "address": "+15550001", "body": "hello", "date": 100, "type": 1},
	{"id": 2, "address": "+15550001", "body": "reply", "date": 300, "type": 2},
	{"id": 3, "address": null, "body": "orphan", "date": 200, "type": 1},
	{"id": 4, "address": "+15550002", "body": null, "date": 250, "type": 1},
	{"id": 5, "address": "+15550003", "body": "draft", "date": 260, "type": 3},
	{"id": 6, "address": "+15550002", "body": "WIN CASH NOW", "date": 200, "type": 1}
]`

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sms.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileSource_Fetch(t *testing.T) {
	src := NewFileSource(writeExport(t, export), zap.NewNop())

	msgs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, int64(2), msgs[0].ID)
	assert.Equal(t, core.DirectionOutbound, msgs[0].Direction)
	assert.Equal(t, int64(6), msgs[1].ID)
	assert.Equal(t, int64(1), msgs[2].ID)
	for _, m := range msgs {
		assert.Equal(t, core.VerdictUnknown, m.Verdict)
	}
}

func TestFileSource_Missing(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "none.json"), zap.NewNop())
	msgs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestFileSource_Malformed(t *testing.T) {
	src := NewFileSource(writeExport(t, "{not json"), zap.NewNop())
	_, err := src.Fetch(context.Background())
	assert.Error(t, err)
}

func TestFileSource_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFileSource(writeExport(t, export), zap.NewNop()).Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmpty(t *testing.T) {
	msgs, err := Empty{}.Fetch(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	path := writeExport(t, "[]")
	w := NewWatcher(path, 50*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		assert.NoError(t, <-done)
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(export), 0o600))
	}

	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}

	select {
	case <-w.Changes():
		t.Fatal("burst of writes produced more than one notification")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	path := writeExport(t, "[]")
	w := NewWatcher(path, 20*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.json"), []byte("[]"), 0o600))

	select {
	case <-w.Changes():
		t.Fatal("unexpected notification")
	case <-time.After(200 * time.Millisecond):
	}
}
