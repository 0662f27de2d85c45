package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/deck_agent/internal/api"
	"github.com/dgnsrekt/deck_agent/internal/browser"
	"github.com/dgnsrekt/deck_agent/internal/cdpcontrol"
	"github.com/dgnsrekt/deck_agent/internal/charts"
	"github.com/dgnsrekt/deck_agent/internal/config"
	"github.com/dgnsrekt/deck_agent/internal/export"
	"github.com/dgnsrekt/deck_agent/internal/loop"
	"github.com/dgnsrekt/deck_agent/internal/netutil"
	"github.com/dgnsrekt/deck_agent/internal/presenter"
	"github.com/dgnsrekt/deck_agent/internal/relay"
	"github.com/dgnsrekt/deck_agent/internal/site"
	"github.com/dgnsrekt/deck_agent/internal/telemetry"
	"github.com/dgnsrekt/deck_agent/internal/viewer"
)

func main() {
	cfg, err := config.LoadController()
	if err != nil {
		slog.Error("failed to load controller config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}

	slog.Info("deck_controller config loaded",
		"bind_addr", cfg.BindAddr,
		"deck_file", cfg.DeckFile,
		"export_dir", cfg.ExportDir,
		"mirror", cfg.Mirror,
		"launch_browser", cfg.LaunchBrowser,
		"eval_timeout_ms", cfg.EvalTimeoutMS,
		"port_auto_fallback", cfg.PortAutoFallback,
		"port_candidates", cfg.PortCandidates,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	deckCfg, slides, err := config.LoadSlides(cfg.DeckFile)
	if err != nil {
		slog.Error("failed to load deck", "deck_file", cfg.DeckFile, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, "deck_controller", cfg.OTelEndpoint)
	if err != nil {
		slog.Error("failed to set up tracing", "endpoint", cfg.OTelEndpoint, "error", err)
		os.Exit(1)
	}

	l := loop.New()
	go l.Run(ctx)

	style := charts.DefaultStyle()
	svc, err := presenter.NewService(l, presenter.Options{
		Total:          len(slides),
		Progress:       deckCfg.Progress(),
		ChartDelay:     deckCfg.ChartDelay(),
		SlideCharts:    deckCfg.SlideCharts(),
		TimelineSlide:  deckCfg.Timeline.Slide,
		TimelinePhases: len(deckCfg.Timeline.Phases),
		Charts:         charts.NewInitializer(charts.NewPNGEngine(deckCfg.ChartWidth, deckCfg.ChartHeight, style), charts.Builtin()),
	})
	if err != nil {
		slog.Error("failed to create presenter", "error", err)
		os.Exit(1)
	}

	broker := relay.NewBroker()
	if err := svc.AddSurface(ctx, relay.NewViewSurface(broker)); err != nil {
		slog.Error("failed to attach viewer surface", "error", err)
		os.Exit(1)
	}
	if err := svc.Start(ctx); err != nil {
		slog.Error("failed to start presentation", "error", err)
		os.Exit(1)
	}

	page, err := site.New(site.Options{
		Title:    deckCfg.Title,
		Slides:   slides,
		Phases:   deckCfg.Timeline.Phases,
		Progress: deckCfg.Progress(),
		Charts:   svc,
	})
	if err != nil {
		slog.Error("failed to build deck page", "error", err)
		os.Exit(1)
	}
	viewers := viewer.NewHandler(broker, svc, viewer.Options{
		SwipeDistance: deckCfg.Swipe.MinDistance,
		SwipeDuration: deckCfg.SwipeDuration(),
	})

	bindAddr, err := netutil.SelectBindAddr(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}
	deckURL := cfg.DeckURL(bindAddr)

	store, err := export.NewStore(cfg.ExportDir)
	if err != nil {
		slog.Error("failed to create export store", "dir", cfg.ExportDir, "error", err)
		os.Exit(1)
	}
	exporter := export.NewService(store, export.NewChrome(export.ChromeOptions{
		DeckURL:     deckURL,
		Headless:    true,
		BrowserPath: cfg.BrowserPath,
	}), len(slides), deckCfg.Title)

	apiCfg := api.Config{
		Deck:        svc,
		Exports:     exporter,
		CORSOrigins: cfg.CORSOrigins,
		Routes: func(r chi.Router) {
			r.Handle("/ws", viewers)
			r.Get("/events", relay.SSEHandler(broker))
			page.Mount(r)
		},
	}

	var (
		cdpClient *cdpcontrol.Client
		mirror    *cdpcontrol.Mirror
	)
	evalTimeout := time.Duration(cfg.EvalTimeoutMS) * time.Millisecond
	if cfg.Mirror {
		cdpClient = cdpcontrol.NewClient(cfg.ControllerCDPURL(), deckURL+"?mode=mirror", evalTimeout)
		mirror = cdpcontrol.NewMirror(cdpClient, cdpcontrol.MirrorOptions{
			Total:   len(slides),
			Style:   style,
			Configs: charts.Builtin(),
			Timeout: evalTimeout,
		})
		apiCfg.Mirror = mirror
	}

	srv := &http.Server{Addr: bindAddr, Handler: api.NewServer(apiCfg)}

	go func() {
		slog.Info("deck_controller listening", "addr", bindAddr, "deck", deckURL, "docs", "http://"+bindAddr+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("deck_controller server failed", "error", err)
			os.Exit(1)
		}
	}()

	var launcher *browser.Launcher
	if cfg.LaunchBrowser {
		startURL := deckURL
		if cfg.Mirror {
			startURL = deckURL + "?mode=mirror"
		}
		launcher = browser.NewLauncher(browser.Config{
			CDPAddress:  cfg.CDPAddress,
			CDPPort:     cfg.CDPPort,
			StartURL:    startURL,
			ProfileDir:  cfg.ProfileDir,
			BrowserPath: cfg.BrowserPath,
			Kiosk:       true,
		})
		if err := launcher.Launch(ctx); err != nil {
			slog.Error("failed to launch browser", "error", err)
			os.Exit(1)
		}
	}

	var console *relay.Relay
	if cfg.Mirror {
		if err := startMirror(ctx, svc, cdpClient, mirror); err != nil {
			slog.Error("failed to start mirror", "cdp_url", cfg.ControllerCDPURL(), "error", err)
			os.Exit(1)
		}
		console = relay.NewRelay(broker, cfg.ConsoleLevels)
		if err := console.Start(ctx, cdpClient); err != nil {
			slog.Warn("console relay unavailable", "error", err)
			console = nil
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("deck_controller shutdown failed", "error", err)
	}
	if console != nil {
		console.Stop()
	}
	cancel()
	<-l.Done()
	if cdpClient != nil {
		if err := cdpClient.Close(); err != nil {
			slog.Debug("CDP client close failed", "error", err)
		}
	}
	if launcher != nil {
		launcher.Stop()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Debug("tracing shutdown failed", "error", err)
	}
}

// startMirror connects to the browser and attaches the mirrored tab as a
// presentation surface.
func startMirror(ctx context.Context, svc *presenter.Service, client *cdpcontrol.Client, mirror *cdpcontrol.Mirror) error {
	if err := client.Connect(ctx); err != nil {
		return err
	}
	if err := mirror.Start(ctx); err != nil {
		return err
	}
	return svc.AddSurface(ctx, mirror)
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

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
