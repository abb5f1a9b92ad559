package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mikey/sms-spam-pilot/internal/adapters/source"
	"github.com/mikey/sms-spam-pilot/internal/core"
	"github.com/mikey/sms-spam-pilot/internal/di"
	"github.com/mikey/sms-spam-pilot/internal/factory"
	"github.com/mikey/sms-spam-pilot/internal/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Build the dependency injection container
	container, err := di.BuildContainer(*configFile)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	svc *core.VerdictService,
	store factory.Store,
	watcher *source.Watcher,
	server ports.Server,
) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	var changes <-chan struct{}
	if watcher != nil {
		changes = watcher.Changes()
		g.Go(func() error {
			return watcher.Run(ctx)
		})
	}

	g.Go(func() error {
		return svc.Run(ctx, changes)
	})

	if server != nil {
		g.Go(server.Start)
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Stop(shutdownCtx)
		})
	}

	err := g.Wait()
	logger.Info("Shutting down...")

	// Close any resources that need closing
	if err := svc.Close(); err != nil {
		logger.Error("Failed to close scorers", zap.Error(err))
	}
	if err := store.Close(); err != nil {
		logger.Error("Failed to close store", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return err
}
