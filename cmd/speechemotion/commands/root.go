package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/speechemotion/cmd/speechemotion/internal/config"
	"github.com/haivivi/speechemotion/pkg/emotion"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	// Global configuration (loaded at init time)
	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "speechemotion",
	Short: "Speech emotion recognition from WAV recordings",
	Long: `speechemotion - classify the emotion of a short speech recording.

Two classifiers are available:
  emotion_recognition_model_R   RAVDESS labels (NEU CAL HAP SAD ANG FEA DIS SUR)
  emotion_recognition_model_C   CREMA-D labels (ANG DIS FEA HAP NEU SAD)

Classifier artifacts (<model>.onnx) are read from a local directory or an
S3 bucket, as configured in the OS config directory:
  macOS:   ~/Library/Application Support/speechemotion/config.yaml
  Linux:   ~/.config/speechemotion/config.yaml
  Windows: %AppData%/speechemotion/config.yaml

Examples:
  # Classify a recording with the CREMA-D model
  speechemotion predict clip.wav -m emotion_recognition_model_C

  # Same, from a request file, rendered as a table
  speechemotion predict -f request.yaml -o table

  # Dump the feature matrix
  speechemotion features clip.wav -o msgpack --output-file clip.msgpack`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode maps an error to the process exit status: 2 for extraction
// failures, 3 for unknown models, 4 for model load failures, 5 for decoding
// failures and 1 for anything else.
func ExitCode(err error) int {
	switch emotion.KindOf(err) {
	case emotion.KindExtraction:
		return 2
	case emotion.KindUnknownModel:
		return 3
	case emotion.KindModelLoad:
		return 4
	case emotion.KindDecoding:
		return 5
	default:
		return 1
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <user config dir>/speechemotion/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// configLoadErr stores the error from config loading for deferred reporting.
var configLoadErr error

func initConfig() {
	globalConfig, configLoadErr = loadConfig()

	format := "text"
	if globalConfig != nil {
		format = globalConfig.Log.Format
	}
	setupLogging(format, verbose)
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFrom(cfgFile)
	}
	return config.Load()
}

func setupLogging(format string, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: logLevel}

	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// GetConfig returns the global configuration, or the error that kept it
// from loading. Commands that do not need it (version, models) never fail
// because of a broken config file.
func GetConfig() (*config.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		cfg, err := loadConfig()
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}
