package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/sablecliff/accountd/internal/shared"
	"github.com/urfave/cli/v3"
)

// loadInitialConfig reads the config file when present, warning (not
// failing) when it exists but cannot be parsed, and applies its log level.
func loadInitialConfig(logger *log.Logger, path string) *shared.Config {
	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if loadedConfig, err := shared.LoadConfig(path); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", path, "error", err)
		}
	}

	shared.SetLogLevel(logger, config.Logging.Level)
	return config
}

func main() {
	logger := shared.NewLogger(nil)
	config := loadInitialConfig(logger, "config.toml")

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "accountd",
		Usage:    "Account store and billing webhook consumer",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
