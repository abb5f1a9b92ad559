package gemini

import (
	"context"

	"github.com/mikey/sms-spam-pilot/internal/config"
	"github.com/mikey/sms-spam-pilot/internal/utils"
	"go.uber.org/zap"
)

// Factory creates Gemini scorers from configuration
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for Gemini scorers
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateScorer creates a new Gemini scorer
func (f *Factory) CreateScorer(ctx context.Context) (*Client, error) {
	geminiCfg := f.cfg.GetGemini()
	return NewClient(
		ctx,
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		geminiCfg.MaxBodySize,
		f.cfg.GetLLM().Threshold,
		f.logger.Named("gemini"),
		f.textProcessor,
	)
}
