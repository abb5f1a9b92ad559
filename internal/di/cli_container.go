package di

import (
	"flag"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/sms-spam-pilot/internal/adapters/source"
	"github.com/mikey/sms-spam-pilot/internal/adapters/store"
	"github.com/mikey/sms-spam-pilot/internal/config"
	"github.com/mikey/sms-spam-pilot/internal/core"
	"github.com/mikey/sms-spam-pilot/internal/factory"
	"github.com/mikey/sms-spam-pilot/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Backend flags
	Backend   string
	RemoteURL string
	ModelPath string
	Features  int
	Threshold float64

	// LLM provider flags
	Provider     string
	OpenAIAPIKey string
	GeminiAPIKey string
	BedrockModel string

	// Trusted senders
	Trusted string

	// Input flags
	Message    string
	ExportFile string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags(args []string) (*CLIFlags, error) {
	flags := &CLIFlags{}
	fs := flag.NewFlagSet("spam-detector", flag.ContinueOnError)

	fs.StringVar(&flags.Backend, "backend", config.BackendAuto, "Scoring backend (auto, local, remote, llm, none)")
	fs.StringVar(&flags.RemoteURL, "remote-url", "", "Scoring API endpoint")
	fs.StringVar(&flags.ModelPath, "model", "./models/sms_spam_detector.splm", "Local model artifact")
	fs.IntVar(&flags.Features, "features", 200, "Feature vector width of the local model")
	fs.Float64Var(&flags.Threshold, "threshold", 0.5, "Spam threshold of the local model")

	fs.StringVar(&flags.Provider, "provider", "openai", "LLM provider (bedrock, gemini, openai)")
	fs.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	fs.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	fs.StringVar(&flags.BedrockModel, "bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	fs.StringVar(&flags.Trusted, "trusted", "", "Comma-separated list of trusted addresses")

	fs.StringVar(&flags.Message, "message", "", "Message body to score (stdin if empty and no export given)")
	fs.StringVar(&flags.ExportFile, "export", "", "JSON message export to score thread by thread")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.Load(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	if err := provideService(container); err != nil {
		return nil, err
	}

	// The CLI never persists verdicts
	if err := container.Provide(func(logger *zap.Logger) factory.Store {
		return store.NewMemoryStore(logger.Named("store"))
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) core.MessageSource {
		if flags.ExportFile == "" {
			return source.Empty{}
		}
		return source.NewFileSource(flags.ExportFile, logger.Named("source"))
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	v.Set("scoring.backend", flags.Backend)
	v.Set("remote.url", flags.RemoteURL)
	v.Set("local.model_path", flags.ModelPath)
	v.Set("local.features", flags.Features)
	v.Set("local.threshold", flags.Threshold)

	v.Set("llm.provider", flags.Provider)
	switch flags.Provider {
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
	case "bedrock":
		v.Set("bedrock.model_id", flags.BedrockModel)
	}

	// Set trusted addresses
	if flags.Trusted != "" {
		addresses := strings.Split(flags.Trusted, ",")
		for i, a := range addresses {
			addresses[i] = strings.TrimSpace(a)
		}
		v.Set("scoring.trusted_addresses", addresses)
	}

	v.Set("store.type", "memory")
	return config.NewFromViper(v)
}

