// Command alertview runs the security alert review console API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"github.com/osalazarm/alertview/internal/alertstore"
	"github.com/osalazarm/alertview/internal/api"
	"github.com/osalazarm/alertview/internal/conf"
	"github.com/osalazarm/alertview/internal/dashboard"
	"github.com/osalazarm/alertview/internal/datastore"
	"github.com/osalazarm/alertview/internal/datastore/repository"
	"github.com/osalazarm/alertview/internal/logger"
	"github.com/osalazarm/alertview/internal/metrics"
	"github.com/osalazarm/alertview/internal/notify"
	"github.com/osalazarm/alertview/internal/review"
)

func main() {
	var configFile string

	root := &cobra.Command{
		Use:           "alertview",
		Short:         "Security alert review console",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configFile)
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	settings, err := conf.Load(configFile)
	if err != nil {
		return err
	}

	log := logger.New(os.Stderr, parseLevel(settings.LogLevel))

	if settings.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{Dsn: settings.Sentry.DSN}); err != nil {
			return fmt.Errorf("failed to init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	manager, err := datastore.Open(&settings.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = manager.Close() }()

	m := metrics.New()
	store := alertstore.NewClient(&settings.AlertStore, log)

	reviewRepo := repository.NewReviewRepository(manager.DB())
	notifRepo := repository.NewNotificationRepository(manager.DB())

	reviewSvc := review.NewService(reviewRepo, m, log)
	notifSvc := notify.NewService(notifRepo, settings.Notification, log)
	dash := dashboard.NewService(store, settings.Dashboard.CacheTTL.Std(), log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poller := dashboard.NewPoller(dash, settings.Dashboard.CacheTTL.Std(), log)
	poller.Start(ctx)

	var watcher *notify.Watcher
	if settings.Watcher.Enabled {
		watcher = notify.NewWatcher(store, reviewSvc, notifSvc, &settings.Watcher, m, log)
		watcher.Start(ctx)
	}

	controller := api.New(store, dash, reviewSvc, notifSvc, m, log)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", logger.String("addr", addr))
		errCh <- controller.Echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := controller.Echo.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", logger.Error(err))
	}

	<-poller.Done()
	if watcher != nil {
		<-watcher.Done()
	}
	return nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
