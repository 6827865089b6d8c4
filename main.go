// entry point of the ytsync daemon
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/DmitriyLyalyuev/ytsync/internal/config"
	"github.com/DmitriyLyalyuev/ytsync/internal/deps"
	"github.com/DmitriyLyalyuev/ytsync/internal/extractor"
	"github.com/DmitriyLyalyuev/ytsync/internal/ledger"
	"github.com/DmitriyLyalyuev/ytsync/internal/observability"
	"github.com/DmitriyLyalyuev/ytsync/internal/scheduler"
	"github.com/DmitriyLyalyuev/ytsync/internal/syncer"
	"github.com/DmitriyLyalyuev/ytsync/pkg/httpserver"
	"github.com/DmitriyLyalyuev/ytsync/pkg/logger"

	"github.com/joho/godotenv"
)

const defaultConfigPath = "config.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("config load", slog.String("path", configPath), slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		slog.WarnContext(ctx, "logger level invalid; defaulting to info", slog.Any("error", err))
	}

	log.InfoContext(ctx, "checking yt-dlp and ffmpeg availability")

	if err := deps.New(log.Logger, cfg).Ensure(ctx); err != nil {
		log.ErrorContext(ctx, "dependency check", slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	metrics := observability.New()

	var httpSrv *httpserver.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})

		httpSrv = httpserver.New(mux, httpserver.Options{Addr: cfg.Metrics.Address})

		log.InfoContext(ctx, "metrics endpoint started", slog.String("address", cfg.Metrics.Address))
	}

	led, err := ledger.New(ctx, log.Logger, cfg.Database.Path)
	if err != nil {
		log.ErrorContext(ctx, "ledger open", slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	syn := syncer.New(log.Logger, cfg, led, extractor.NewYTdlp(log.Logger, cfg), metrics)

	watcher, err := config.NewWatcher(configPath)
	if err != nil {
		log.ErrorContext(ctx, "config watcher", slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	// Reload builds a fresh snapshot and syncer; the ledger is re-pointed
	// only when its path changed.
	build := func(newCfg *config.Config) (scheduler.Syncer, error) {
		if err := log.SetLevel(newCfg.Logging.Level); err != nil {
			log.WarnContext(ctx, "log level unchanged", slog.Any("error", err))
		}

		if newCfg.Database.Path != led.Path() {
			fresh, err := ledger.New(ctx, log.Logger, newCfg.Database.Path)
			if err != nil {
				return nil, err
			}

			if err := led.Close(); err != nil {
				log.WarnContext(ctx, "close previous ledger", slog.Any("error", err))
			}

			led = fresh
		}

		return syncer.New(log.Logger, newCfg, led, extractor.NewYTdlp(log.Logger, newCfg), metrics), nil
	}

	sched, err := scheduler.New(log.Logger, cfg, syn, scheduler.Options{
		Watcher: watcher,
		Build:   build,
	})
	if err != nil {
		log.ErrorContext(ctx, "scheduler new", slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	log.InfoContext(ctx, "ytsync started", slog.String("config", configPath))

	_ = sched.Run(ctx)

	if httpSrv != nil {
		if err := httpSrv.Shutdown(); err != nil {
			log.Error(err.Error())
		}
	}

	if err := led.Close(); err != nil {
		log.Error(err.Error())
	}

	log.InfoContext(ctx, "ytsync shut down gracefully")
}
