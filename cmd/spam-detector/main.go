package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mikey/sms-spam-pilot/internal/adapters/local"
	"github.com/mikey/sms-spam-pilot/internal/core"
	"github.com/mikey/sms-spam-pilot/internal/di"
	"go.uber.org/zap"
)

func main() {
	flags, err := di.ParseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(flags *di.CLIFlags, logger *zap.Logger, svc *core.VerdictService) error {
	defer logger.Sync()
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close scorer", zap.Error(err))
		}
	}()
	ctx := context.Background()

	backend := svc.Backend()
	fmt.Printf("=== Analysis ===\n")
	fmt.Printf("Backend: %s\n", backend.Kind)
	if backend.Scorer != nil {
		fmt.Printf("Scorer: %s\n", backend.Scorer.Name())
	}

	if flags.ExportFile != "" {
		return scoreExport(ctx, svc)
	}

	body := flags.Message
	if body == "" {
		logger.Info("Reading message from stdin")
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		body = string(data)
	}

	start := time.Now()
	var verdict core.Verdict
	var prediction *local.Prediction
	if classifier, ok := backend.Scorer.(*local.Classifier); ok {
		p := classifier.Predict(body)
		prediction = &p
		verdict = classifier.Verdict(p)
	} else {
		verdict = svc.Predict(ctx, body)
	}
	duration := time.Since(start)

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Verdict: %s\n", verdict.Label())
	if prediction != nil {
		fmt.Printf("Model score: %.4f (%s)\n", prediction.Score, prediction.Status)
	}
	fmt.Printf("Processing time: %v\n", duration)
	return nil
}

func scoreExport(ctx context.Context, svc *core.VerdictService) error {
	start := time.Now()
	stats, err := svc.Refresh(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Threads ===\n")
	for _, t := range svc.Threads() {
		flag := " "
		if t.HasSpam() {
			flag = "!"
		}
		fmt.Printf("%s %-20s %3d msgs %3d spam  %s\n", flag, t.Address, t.Size, t.SpamCount, strings.TrimSpace(t.Snippet))
	}

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Messages: %d (scored %d, resolved %d, unresolved %d)\n",
		stats.Total, stats.Scored, stats.Resolved, stats.Unresolved)
	fmt.Printf("Processing time: %v\n", time.Since(start))
	return nil
}
