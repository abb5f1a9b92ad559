package factory

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikey/sms-spam-pilot/internal/adapters/bedrock"
	"github.com/mikey/sms-spam-pilot/internal/adapters/gemini"
	"github.com/mikey/sms-spam-pilot/internal/adapters/openai"
	"github.com/mikey/sms-spam-pilot/internal/config"
	"github.com/mikey/sms-spam-pilot/internal/core"
	"github.com/mikey/sms-spam-pilot/internal/utils"
	"go.uber.org/zap"
)

// LLMFactory creates language model scorers
type LLMFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *LLMFactory {
	return &LLMFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateScorer creates a scorer for the configured LLM provider
func (f *LLMFactory) CreateScorer(ctx context.Context) (core.Scorer, error) {
	llmConfig := f.cfg.GetLLM()

	switch llmConfig.Provider {
	case "bedrock":
		client, err := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor).CreateScorer(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "gemini":
		if f.cfg.GetGemini().APIKey == "" {
			return nil, errors.New("gemini API key is required")
		}
		client, err := gemini.NewFactory(f.cfg, f.logger, f.textProcessor).CreateScorer(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "openai":
		if f.cfg.GetOpenAI().APIKey == "" {
			return nil, errors.New("openai API key is required")
		}
		client, err := openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateScorer()
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}
