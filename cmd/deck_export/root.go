package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/deck_agent/internal/config"
	"github.com/dgnsrekt/deck_agent/internal/export"
	"github.com/dgnsrekt/deck_agent/internal/telemetry"
)

var (
	deckURL string
	outDir  string
	ciMode  bool
)

var rootCmd = &cobra.Command{
	Use:   "deck_export",
	Short: "Export the running deck to PDF or PNG",
	Long: `deck_export opens the deck served by deck_controller in a headless
browser and saves its print view as a PDF, or one PNG per slide. Artifacts
are kept in EXPORT_DIR, where the controller's /api/v1/exports lists them.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&deckURL, "url", "", "deck page URL (defaults to the controller bind address)")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "", "also copy artifacts into this directory")
	rootCmd.PersistentFlags().BoolVar(&ciMode, "ci", false, "print line-by-line progress instead of a progress bar")
}

// exporter bundles what every command needs.
type exporter struct {
	svc    *export.Service
	total  int
	finish func(context.Context) error
}

func newExporter(ctx context.Context) (*exporter, error) {
	cfg, err := config.LoadExport()
	if err != nil {
		return nil, err
	}
	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("logger setup failed: %w", err)
	}
	deckCfg, slides, err := config.LoadSlides(cfg.DeckFile)
	if err != nil {
		return nil, err
	}
	shutdown, err := telemetry.Setup(ctx, "deck_export", cfg.OTelEndpoint)
	if err != nil {
		return nil, err
	}

	target := deckURL
	if target == "" {
		target = cfg.DeckURL(cfg.BindAddr)
	}
	opts := export.ChromeOptions{
		DeckURL:     target,
		Headless:    cfg.Headless,
		BrowserPath: cfg.BrowserPath,
		Settle:      time.Duration(cfg.SlideSettleMS) * time.Millisecond,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	if cfg.RemoteCDP {
		opts.RemoteURL = cfg.ControllerCDPURL()
	}

	store, err := export.NewStore(cfg.ExportDir)
	if err != nil {
		return nil, err
	}
	slog.Info("deck_export config loaded",
		"deck_url", target,
		"export_dir", cfg.ExportDir,
		"slides", len(slides),
		"remote_cdp", cfg.RemoteCDP,
		"headless", cfg.Headless,
		"timeout_seconds", cfg.TimeoutSeconds,
	)
	return &exporter{
		svc:    export.NewService(store, export.NewChrome(opts), len(slides), deckCfg.Title),
		total:  len(slides),
		finish: shutdown,
	}, nil
}

func (e *exporter) reporter() export.Reporter {
	if ciMode {
		return export.NewCIReporter(os.Stderr)
	}
	return export.NewReporter()
}

// run creates one export and prints where its artifacts went.
func (e *exporter) run(ctx context.Context, w io.Writer, req export.Request) error {
	defer func() {
		if err := e.finish(context.Background()); err != nil {
			slog.Debug("tracing shutdown failed", "error", err)
		}
	}()
	artifacts, err := e.svc.Create(ctx, req, e.reporter())
	if err != nil {
		return err
	}
	for _, a := range artifacts {
		line := fmt.Sprintf("%s\t%s\t%d bytes", a.ID, a.FileName(), a.SizeBytes)
		if outDir != "" {
			path, err := e.copyOut(a)
			if err != nil {
				return err
			}
			line += "\t" + path
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func (e *exporter) copyOut(a export.Artifact) (string, error) {
	_, data, err := e.svc.ReadFile(a.ID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(outDir, a.FileName())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	// stdout carries artifact lines, so logs only reach the file and stderr.
	h := slog.NewTextHandler(io.MultiWriter(os.Stderr, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
