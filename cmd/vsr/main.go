// Package main implements the vsr command line: a virtual screen reader that
// reads HTML fixtures and live pages aloud as text.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vsr/internal/config"
	"vsr/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	timeout    time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vsr",
	Short: "vsr - a virtual screen reader for HTML",
	Long: `vsr builds the accessibility tree of an HTML document and walks it with a
virtual cursor, printing what a screen reader would announce.

Documents are HTML files on disk or http(s) URLs loaded through Chrome.
Recorded transcripts can be verified later to catch accessibility regressions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.DebugMode = true
			cfg.Logging.Level = "debug"
		}
		if err := logging.Initialize(cfg.Logging.ToLogging()); err != nil {
			return err
		}
		if !logging.IsDebugMode() {
			return nil
		}
		if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
			logging.BootWarn("config %s not found, using defaults", configPath)
		} else {
			logging.Boot("loaded config %s", configPath)
		}
		logging.BootDebug("reader: max_steps=%d stop_phrase=%q container=%q",
			cfg.Reader.MaxSteps, cfg.Reader.StopPhrase, cfg.Reader.ContainerID)
		logging.CLIDebug("running %s %v", cmd.CommandPath(), args)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "vsr.yaml", "Config file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(stepCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(commandsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
