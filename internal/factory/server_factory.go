package factory

import (
	"github.com/mikey/sms-spam-pilot/internal/adapters/api"
	"github.com/mikey/sms-spam-pilot/internal/config"
	"github.com/mikey/sms-spam-pilot/internal/core"
	"github.com/mikey/sms-spam-pilot/internal/ports"
	"go.uber.org/zap"
)

// ServerFactory creates the HTTP API server
type ServerFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	scorers *ScorerFactory
}

// NewServerFactory creates a new server factory
func NewServerFactory(cfg *config.Config, logger *zap.Logger, scorers *ScorerFactory) *ServerFactory {
	return &ServerFactory{
		cfg:     cfg,
		logger:  logger,
		scorers: scorers,
	}
}

// CreateServer returns the API server, or nil when it is disabled
func (f *ServerFactory) CreateServer(svc *core.VerdictService) ports.Server {
	serverCfg := f.cfg.GetServer()
	if !serverCfg.Enabled {
		return nil
	}
	return api.NewServer(serverCfg.ListenAddress, svc, f.scorers.RemoteBackend, f.logger.Named("api"))
}
