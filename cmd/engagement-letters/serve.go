// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/engagement-letters/internal/convert"
	"github.com/pdiddy/engagement-letters/internal/docx"
	"github.com/pdiddy/engagement-letters/internal/history"
	"github.com/pdiddy/engagement-letters/internal/notify"
	"github.com/pdiddy/engagement-letters/internal/rollover"
	"github.com/pdiddy/engagement-letters/internal/secrets"
	"github.com/pdiddy/engagement-letters/internal/server"
	"github.com/pdiddy/engagement-letters/internal/signature"
	"github.com/pdiddy/engagement-letters/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local web UI server",
	Long: `Serve starts the local HTTP server used by the web UI. Uploaded letters
are processed in a per-request directory under paths.processing_dir and the
results are written to the processed-files directory. Progress is pushed to
the browser over the /socket websocket.

PDF printing and signing are enabled when their tools are available; the
server starts without them and answers 503 on those routes.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "interface to listen on (default localhost)")
	serveCmd.Flags().Int("port", 0, "port to listen on (default 5000)")
	serveCmd.Flags().Bool("debug", false, "enable debug logging")
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.debug", serveCmd.Flags().Lookup("debug"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg.Paths.LogDir, cfg.Server.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	for _, dir := range []string{cfg.Paths.ProcessedDir, cfg.Paths.ProcessingDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	s, err := secrets.Load(cfg.SecretsDir, logger)
	if err != nil {
		return err
	}
	if len(s) > 0 {
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		logger.Info("loaded secrets", "keys", keys)
	}

	store, err := history.Open(cfg.History)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := server.Deps{
		Config:    cfg,
		Logger:    logger,
		Hub:       notify.NewHub(logger, notify.DefaultQueueSize),
		Processor: rollover.NewProcessor(docx.Loader{}),
		History:   store,
		Secrets:   s,
	}
	if c, err := convert.New(ctx, cfg.Conversion); err != nil {
		logger.Warn("PDF printing disabled", "error", err)
	} else {
		deps.Converter = c
	}
	if loc, st, err := newSigner(cfg.Signature); err != nil {
		logger.Warn("signature stamping disabled", "error", err)
	} else {
		deps.Locator, deps.Stamper = loc, st
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go func() {
		if err := deps.Hub.Run(hubCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("event hub stopped", "error", err)
		}
	}()

	return server.New(deps).ListenAndServe(ctx)
}

// newSigner builds the pdftotext locator and pdfcpu stamper.
func newSigner(cfg types.SignatureConfig) (signature.Locator, signature.Stamper, error) {
	loc := signature.NewPdftotextLocator()
	st, err := signature.NewPDFStamper(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Timeout > 0 {
		return timedLocator{next: loc, cfg: cfg}, st, nil
	}
	return loc, st, nil
}

// timedLocator bounds each Locate call by the configured timeout.
type timedLocator struct {
	next signature.Locator
	cfg  types.SignatureConfig
}

func (l timedLocator) Locate(ctx context.Context, pdfPath string) (signature.Position, error) {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()
	return l.next.Locate(ctx, pdfPath)
}
