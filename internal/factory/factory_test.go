package factory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/mikey/sms-spam-pilot/internal/adapters/remote"
	"github.com/mikey/sms-spam-pilot/internal/adapters/source"
	"github.com/mikey/sms-spam-pilot/internal/config"
	"github.com/mikey/sms-spam-pilot/internal/core"
	"github.com/mikey/sms-spam-pilot/internal/model"
	"github.com/mikey/sms-spam-pilot/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newConfig(t *testing.T, values map[string]interface{}) *config.Config {
	t.Helper()
	v := config.NewEmptyViper()
	v.Set("local.model_path", filepath.Join(t.TempDir(), "missing.splm"))
	for k, val := range values {
		v.Set(k, val)
	}
	return config.NewFromViper(v)
}

func newScorerFactory(cfg *config.Config) *ScorerFactory {
	logger := zap.NewNop()
	return NewScorerFactory(cfg, logger, utils.NewTextProcessor(logger))
}

func writeModel(t *testing.T, features int) string {
	t.Helper()
	weights := make([]float32, features)
	for i := range weights {
		weights[i] = 0.5
	}
	n, err := model.NewNetwork([]model.Layer{{
		In: features, Out: 1, Activation: model.Sigmoid,
		Weights: weights, Biases: []float32{0.1},
	}})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.splm")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, n.Encode(f))
	require.NoError(t, f.Close())
	return path
}

func TestCreateBackend_AutoWithoutRemoteUsesLocal(t *testing.T) {
	backend, err := newScorerFactory(newConfig(t, nil)).CreateBackend(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.BackendLocal, backend.Kind)

	// No model file: everything is reported as not spam
	assert.Equal(t, core.VerdictNotSpam, backend.Scorer.Score(context.Background(), "WIN CASH"))
}

func TestCreateBackend_AutoPrefersRemote(t *testing.T) {
	cfg := newConfig(t, map[string]interface{}{"remote.url": "https://detector.example.com/predict"})
	backend, err := newScorerFactory(cfg).CreateBackend(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.BackendRemote, backend.Kind)
	assert.Equal(t, "https://detector.example.com/predict", backend.Scorer.(*remote.Client).URL())
	assert.Greater(t, int64(backend.Throttle), int64(0))
}

func TestCreateBackend_Explicit(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]interface{}
		want    core.BackendKind
		wantErr bool
	}{
		{"none", map[string]interface{}{"scoring.backend": "none", "remote.url": "https://x.example.com"}, core.BackendNone, false},
		{"local ignores remote", map[string]interface{}{"scoring.backend": "local", "remote.url": "https://x.example.com"}, core.BackendLocal, false},
		{"remote without url", map[string]interface{}{"scoring.backend": "remote"}, 0, true},
		{"remote bad scheme", map[string]interface{}{"scoring.backend": "remote", "remote.url": "ftp://x.example.com"}, 0, true},
		{"llm without key", map[string]interface{}{"scoring.backend": "llm", "llm.provider": "openai"}, 0, true},
		{"llm unknown provider", map[string]interface{}{"scoring.backend": "llm", "llm.provider": "acme"}, 0, true},
		{"unknown backend", map[string]interface{}{"scoring.backend": "magic"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := newScorerFactory(newConfig(t, tt.values)).CreateBackend(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, backend.Kind)
		})
	}
}

func TestCreateBackend_OpenAI(t *testing.T) {
	cfg := newConfig(t, map[string]interface{}{
		"scoring.backend": "llm",
		"llm.provider":    "openai",
		"openai.api_key":  "sk-test",
	})
	backend, err := newScorerFactory(cfg).CreateBackend(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.BackendLLM, backend.Kind)
	assert.Equal(t, "openai", backend.Scorer.Name())
}

func TestCreateLocal_WithModel(t *testing.T) {
	cfg := newConfig(t, map[string]interface{}{"local.model_path": writeModel(t, 200)})
	classifier, err := newScorerFactory(cfg).CreateLocal()
	require.NoError(t, err)

	// Non-negative features and a positive bias keep the output above 0.5
	assert.Equal(t, core.VerdictSpam, classifier.Score(context.Background(), "claim your prize"))
}

func TestCreateLocal_FeatureMismatch(t *testing.T) {
	cfg := newConfig(t, map[string]interface{}{"local.model_path": writeModel(t, 16)})
	_, err := newScorerFactory(cfg).CreateLocal()
	assert.Error(t, err)
}

func TestCreateStore(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		values  map[string]interface{}
		wantErr bool
	}{
		{"memory", map[string]interface{}{"store.type": "memory"}, false},
		{"sqlite", map[string]interface{}{"store.type": "sqlite", "store.sqlite_path": filepath.Join(t.TempDir(), "nested", "sms.db")}, false},
		{"redis", map[string]interface{}{"store.type": "redis", "store.redis_addr": mr.Addr()}, false},
		{"unknown", map[string]interface{}{"store.type": "cassandra"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStoreFactory(newConfig(t, tt.values), zap.NewNop()).CreateStore(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer s.Close()

			require.NoError(t, s.Insert(context.Background(), &core.Message{ID: 1, Address: "a", Body: "b", Date: 1}))
			msgs, err := s.LoadAll(context.Background())
			require.NoError(t, err)
			assert.Len(t, msgs, 1)
		})
	}
}

func TestCreateSource(t *testing.T) {
	f := NewSourceFactory(newConfig(t, nil), zap.NewNop())
	src, err := f.CreateSource()
	require.NoError(t, err)
	assert.IsType(t, source.Empty{}, src)

	w, err := f.CreateWatcher()
	require.NoError(t, err)
	assert.Nil(t, w)

	path := filepath.Join(t.TempDir(), "sms.json")
	f = NewSourceFactory(newConfig(t, map[string]interface{}{"source.path": path}), zap.NewNop())
	src, err = f.CreateSource()
	require.NoError(t, err)
	assert.IsType(t, &source.FileSource{}, src)

	w, err = f.CreateWatcher()
	require.NoError(t, err)
	assert.NotNil(t, w)
}

func TestCreateServer(t *testing.T) {
	cfg := newConfig(t, nil)
	scorers := newScorerFactory(cfg)
	svc := core.NewVerdictService(core.NoBackend(), nil, nil, nil, nil, zap.NewNop())

	assert.Nil(t, NewServerFactory(cfg, zap.NewNop(), scorers).CreateServer(svc))

	cfg.Set("server.enabled", true)
	assert.NotNil(t, NewServerFactory(cfg, zap.NewNop(), scorers).CreateServer(svc))
}
