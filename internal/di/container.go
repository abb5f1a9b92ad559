package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/sms-spam-pilot/internal/adapters/source"
	"github.com/mikey/sms-spam-pilot/internal/config"
	"github.com/mikey/sms-spam-pilot/internal/core"
	"github.com/mikey/sms-spam-pilot/internal/factory"
	"github.com/mikey/sms-spam-pilot/internal/logging"
	"github.com/mikey/sms-spam-pilot/internal/ports"
	"github.com/mikey/sms-spam-pilot/internal/utils"
	"github.com/mikey/sms-spam-pilot/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container.
// configFile may be empty to search the default locations.
func BuildContainer(configFile string) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		return config.Load(configFile)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideService(container); err != nil {
		return nil, err
	}

	// Register message store
	if err := container.Provide(func(f *factory.StoreFactory) (factory.Store, error) {
		return f.CreateStore(context.Background())
	}); err != nil {
		return nil, err
	}

	// Register message source and its watcher
	if err := container.Provide(func(f *factory.SourceFactory) (core.MessageSource, error) {
		return f.CreateSource()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.SourceFactory) (*source.Watcher, error) {
		return f.CreateWatcher()
	}); err != nil {
		return nil, err
	}

	// Register API server
	if err := container.Provide(func(f *factory.ServerFactory, svc *core.VerdictService) ports.Server {
		return f.CreateServer(svc)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideService registers everything needed to build the VerdictService
// except the configuration, logger, store and source
func provideService(container *dig.Container) error {
	// Register factories
	for _, ctor := range []interface{}{
		factory.NewTextProcessorFactory,
		factory.NewScorerFactory,
		factory.NewStoreFactory,
		factory.NewSourceFactory,
		factory.NewServerFactory,
	} {
		if err := container.Provide(ctor); err != nil {
			return err
		}
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register scoring backend
	if err := container.Provide(func(f *factory.ScorerFactory) (core.Backend, error) {
		return f.CreateBackend(context.Background())
	}); err != nil {
		return err
	}

	// Register trusted addresses
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (core.AddressChecker, error) {
		scoring, err := cfg.GetScoring()
		if err != nil {
			return nil, err
		}
		if len(scoring.TrustedAddresses) > 0 {
			logger.Info("Loaded trusted addresses", zap.Strings("addresses", scoring.TrustedAddresses))
		}
		return whitelist.NewChecker(scoring.TrustedAddresses, scoring.DefaultRegion, logger), nil
	}); err != nil {
		return err
	}

	// Register thread index
	if err := container.Provide(func(cfg *config.Config, tp *utils.TextProcessor) *core.ThreadIndex {
		length := cfg.GetInt("threads.snippet_length")
		return core.NewThreadIndex(func(body string) string {
			return tp.Snippet(body, length)
		})
	}); err != nil {
		return err
	}

	if err := container.Provide(func(s factory.Store) core.VerdictStore { return s }); err != nil {
		return err
	}

	// Register verdict service
	return container.Provide(core.NewVerdictService)
}
