package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/thruflo/sortviz/internal/config"
	"github.com/thruflo/sortviz/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "sortviz",
	Short: "Watch and hear sorting algorithms work",
	Long: `sortviz animates sorting algorithms step by step. Every write to the
array redraws the bars and plays a short tone pitched by the last element.

Run it in the terminal with 'sortviz tui', in the browser with
'sortviz serve', or headless with 'sortviz run'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("sortviz version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default .sortviz/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads --config, or .sortviz/config.yaml in the working
// directory, falling back to defaults when that file is absent.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadConfigFile(configPath)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return config.LoadConfig(cwd)
}

// saveConfig writes cfg back to where loadConfig reads it from.
func saveConfig(cfg *config.Config) (string, error) {
	path := configPath
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		path = config.Path(cwd)
	}
	return path, config.SaveConfigFile(path, cfg)
}

// setupLogging configures the default logger from the config and the
// --log-level flag. A nil out keeps the current destination.
func setupLogging(cfg *config.Config, out io.Writer) (*logging.Logger, error) {
	name := cfg.Log.Level
	if logLevel != "" {
		name = logLevel
	}
	level, err := logging.ParseLevel(name)
	if err != nil {
		return nil, err
	}

	logger := logging.Default()
	logger.SetLevel(level)
	if out != nil {
		logger.SetOutput(log.New(out, "", log.LstdFlags))
	}
	return logger, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
