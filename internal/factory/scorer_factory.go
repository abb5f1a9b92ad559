package factory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mikey/sms-spam-pilot/internal/adapters/local"
	"github.com/mikey/sms-spam-pilot/internal/adapters/remote"
	"github.com/mikey/sms-spam-pilot/internal/config"
	"github.com/mikey/sms-spam-pilot/internal/core"
	"github.com/mikey/sms-spam-pilot/internal/model"
	"github.com/mikey/sms-spam-pilot/internal/utils"
	"github.com/mikey/sms-spam-pilot/internal/vectorizer"
	"go.uber.org/zap"
)

// ScorerFactory selects and builds the scoring backend
type ScorerFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	llm           *LLMFactory
}

// NewScorerFactory creates a new scorer factory
func NewScorerFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *ScorerFactory {
	return &ScorerFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
		llm:           NewLLMFactory(cfg, logger, textProcessor),
	}
}

// CreateLocal loads the model artifact and builds the local classifier. A
// missing artifact yields a classifier without a model.
func (f *ScorerFactory) CreateLocal() (*local.Classifier, error) {
	localCfg := f.cfg.GetLocal()

	vec, err := vectorizer.New(localCfg.Features,
		vectorizer.WithNorm(vectorizer.Norm(strings.ToLower(localCfg.Norm))),
		vectorizer.WithAlternateSign(localCfg.AlternateSign),
		vectorizer.WithBinary(localCfg.Binary),
	)
	if err != nil {
		return nil, err
	}

	logger := f.logger.Named("local")
	var predictor local.Predictor
	network, err := model.Load(localCfg.ModelPath)
	switch {
	case err == nil:
		if network.Inputs() != localCfg.Features {
			return nil, fmt.Errorf("model %s expects %d features, configured for %d",
				localCfg.ModelPath, network.Inputs(), localCfg.Features)
		}
		predictor = network
		logger.Info("Loaded local model",
			zap.String("path", localCfg.ModelPath),
			zap.Int("features", network.Inputs()))
	case errors.Is(err, os.ErrNotExist):
		logger.Warn("Local model not found", zap.String("path", localCfg.ModelPath))
	default:
		return nil, err
	}

	threshold := localCfg.Threshold
	if threshold <= 0 {
		threshold = local.DefaultThreshold
	}
	return local.NewClassifier(predictor, vec, f.textProcessor, threshold, logger), nil
}

// CreateRemote builds a scoring API client for url using the configured
// timeouts, retries and breaker
func (f *ScorerFactory) CreateRemote(url string) (*remote.Client, error) {
	remoteCfg, err := f.cfg.GetRemote()
	if err != nil {
		return nil, err
	}
	return remote.NewClient(remote.Config{
		URL:             url,
		Timeout:         remoteCfg.Timeout,
		Attempts:        remoteCfg.Attempts,
		RetryDelay:      remoteCfg.RetryDelay,
		BreakerFailures: remoteCfg.BreakerFailures,
		BreakerTimeout:  remoteCfg.BreakerTimeout,
	}, nil, f.logger.Named("remote"))
}

// RemoteBackend builds a throttled remote backend for url
func (f *ScorerFactory) RemoteBackend(url string) (core.Backend, error) {
	scoring, err := f.cfg.GetScoring()
	if err != nil {
		return core.Backend{}, err
	}
	client, err := f.CreateRemote(url)
	if err != nil {
		return core.Backend{}, err
	}
	return core.RemoteBackend(client, scoring.Throttle), nil
}

// CreateBackend builds the configured backend. In auto mode a configured
// remote URL wins over the local model.
func (f *ScorerFactory) CreateBackend(ctx context.Context) (core.Backend, error) {
	scoring, err := f.cfg.GetScoring()
	if err != nil {
		return core.Backend{}, err
	}
	remoteURL := strings.TrimSpace(f.cfg.GetString("remote.url"))

	switch scoring.Backend {
	case config.BackendNone:
		return core.NoBackend(), nil
	case config.BackendRemote:
		if remoteURL == "" {
			return core.Backend{}, errors.New("remote backend selected but remote.url is empty")
		}
		return f.RemoteBackend(remoteURL)
	case config.BackendLocal:
		classifier, err := f.CreateLocal()
		if err != nil {
			return core.Backend{}, err
		}
		return core.LocalBackend(classifier), nil
	case config.BackendLLM:
		scorer, err := f.llm.CreateScorer(ctx)
		if err != nil {
			return core.Backend{}, err
		}
		return core.LLMBackend(scorer, scoring.Throttle), nil
	case config.BackendAuto, "":
		if remoteURL != "" {
			return f.RemoteBackend(remoteURL)
		}
		classifier, err := f.CreateLocal()
		if err != nil {
			return core.Backend{}, err
		}
		return core.LocalBackend(classifier), nil
	default:
		return core.Backend{}, fmt.Errorf("unsupported scoring backend: %s", scoring.Backend)
	}
}
