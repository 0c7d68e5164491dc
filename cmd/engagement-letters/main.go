// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the engagement-letters CLI.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/engagement-letters/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the engagement-letters CLI.
var rootCmd = &cobra.Command{
	Use:   "engagement-letters",
	Short: "Roll engagement letters forward to the next year",
	Long: `engagement-letters updates last year's client engagement letters for the
coming year: it advances dates and fee schedules, renames the files, and
saves the new letters to the processed-files directory.

Run "serve" for the local web UI, or use the batch subcommands (rollover,
extract, convert, sign) directly on files. Settings and processing history
are shared between the two.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./engagement-letters.yaml or ~/.config/engagement-letters/engagement-letters.yaml)")
	rootCmd.PersistentFlags().String("settings", "", "user settings file (default: user-config.json)")
	_ = viper.BindPFlag("paths.settings_file", rootCmd.PersistentFlags().Lookup("settings"))
}

func setDefaults() {
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.debug", false)
	viper.SetDefault("server.read_timeout", 60*time.Second)
	viper.SetDefault("server.write_timeout", 10*time.Minute)
	viper.SetDefault("server.max_upload_bytes", 64<<20)

	viper.SetDefault("paths.processed_dir", filepath.Join("temp", "complete"))
	viper.SetDefault("paths.processing_dir", filepath.Join("temp", "processing"))
	viper.SetDefault("paths.settings_file", "user-config.json")
	viper.SetDefault("paths.frontend_dir", "")
	viper.SetDefault("paths.log_dir", "logs")

	viper.SetDefault("history.db_path", filepath.Join("temp", "history.db"))
	viper.SetDefault("history.max_results", 50)

	viper.SetDefault("conversion.backend", string(types.BackendContainer))
	viper.SetDefault("conversion.image", "docx2pdf:latest")
	viper.SetDefault("conversion.timeout", 2*time.Minute)
	viper.SetDefault("conversion.retries", 2)

	viper.SetDefault("signature.path", "signature.pdf")
	viper.SetDefault("signature.timeout", time.Minute)

	viper.SetDefault("secrets_dir", ".secrets/")
}

func initConfig() {
	setDefaults()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("engagement-letters")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "engagement-letters"))
		}
	}

	viper.SetEnvPrefix("ENGAGEMENT_LETTERS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged viper configuration.
func loadConfig() (types.AppConfig, error) {
	var cfg types.AppConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

// newLogger returns a text logger writing to stderr and, when logDir is
// set, appending to logDir/app.log. The returned close func releases the
// log file.
func newLogger(logDir string, debug bool) (*slog.Logger, func() error, error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	var w io.Writer = os.Stderr
	closeFn := func() error { return nil }
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(logDir, "app.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closeFn = f.Close
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
