package factory

import (
	"github.com/mikey/sms-spam-pilot/internal/adapters/source"
	"github.com/mikey/sms-spam-pilot/internal/config"
	"github.com/mikey/sms-spam-pilot/internal/core"
	"go.uber.org/zap"
)

// SourceFactory creates the message source and its change watcher
type SourceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSourceFactory creates a new source factory
func NewSourceFactory(cfg *config.Config, logger *zap.Logger) *SourceFactory {
	return &SourceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSource returns the file source, or an empty source when no path is configured
func (f *SourceFactory) CreateSource() (core.MessageSource, error) {
	sourceCfg, err := f.cfg.GetSource()
	if err != nil {
		return nil, err
	}
	if sourceCfg.Path == "" {
		f.logger.Info("No message source configured, only stored messages will be shown")
		return source.Empty{}, nil
	}
	return source.NewFileSource(sourceCfg.Path, f.logger.Named("source")), nil
}

// CreateWatcher returns a watcher for the source file, or nil when watching is off
func (f *SourceFactory) CreateWatcher() (*source.Watcher, error) {
	sourceCfg, err := f.cfg.GetSource()
	if err != nil {
		return nil, err
	}
	if sourceCfg.Path == "" || !sourceCfg.Watch {
		return nil, nil
	}
	return source.NewWatcher(sourceCfg.Path, sourceCfg.Debounce, f.logger.Named("watcher")), nil
}
