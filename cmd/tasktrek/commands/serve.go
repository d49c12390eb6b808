package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/task-trek/internal/activity"
	httpadapter "github.com/couchcryptid/task-trek/internal/adapter/http"
	"github.com/couchcryptid/task-trek/internal/adapter/ipgeo"
	kafkaadapter "github.com/couchcryptid/task-trek/internal/adapter/kafka"
	"github.com/couchcryptid/task-trek/internal/adapter/store"
	"github.com/couchcryptid/task-trek/internal/app"
	"github.com/couchcryptid/task-trek/internal/config"
	"github.com/couchcryptid/task-trek/internal/observability"
	"github.com/couchcryptid/task-trek/internal/session"
	"github.com/couchcryptid/task-trek/internal/signin"
	"github.com/spf13/cobra"
)

const sessionSweepInterval = 5 * time.Minute

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	prefs, err := store.Open(ctx, cfg.StoreDriver, cfg.StoreDSN, logger)
	if err != nil {
		return fmt.Errorf("open preference store: %w", err)
	}
	defer func() {
		if err := prefs.Close(); err != nil {
			logger.Error("preference store close error", "error", err)
		}
	}()

	// Activity events go to Kafka when enabled, otherwise to the log.
	var loader activity.BatchLoader = activity.LogLoader{Logger: logger}
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		loader = writer
		logger.Info("kafka activity sink enabled", "topic", cfg.KafkaActivityTopic, "brokers", cfg.KafkaBrokers)
	}
	recorder := activity.New(loader, logger, metrics, cfg.ActivityBatchSize, cfg.ActivityBuffer, cfg.ActivityFlushInterval, nil)

	sessions := session.NewStore(cfg.SessionTTL, nil)
	registry := app.NewRegistry(app.Options{
		Store:    prefs,
		Weather:  weatherDeps(cfg, logger, metrics),
		Logger:   logger,
		Metrics:  metrics,
		Recorder: recorder,
		IdleTTL:  cfg.VisitorIdleTTL,
	})

	deps := httpadapter.Deps{
		Registry:     registry,
		SignIn:       signin.NewService(sessions, logger, metrics, recorder),
		Sessions:     sessions,
		Ready:        prefs,
		Logger:       logger,
		CookieSecure: cfg.CookieSecure,
	}
	if cfg.IPGeoEnabled {
		deps.Positions = ipgeo.NewClient(cfg.IPGeoURL, cfg.IPGeoTimeout, logger)
		logger.Info("ip geolocation enabled", "url", cfg.IPGeoURL)
	}

	srv, err := httpadapter.NewServer(cfg.HTTPAddr, deps)
	if err != nil {
		return err
	}

	// The recorder outlives ctx so teardown events still reach the sink.
	recorderCtx, stopRecorder := context.WithCancel(context.WithoutCancel(ctx))
	recorderDone := make(chan struct{})
	go func() {
		defer close(recorderDone)
		if err := recorder.Run(recorderCtx); err != nil {
			logger.Error("activity recorder error", "error", err)
		}
	}()

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	go func() {
		if err := registry.Run(runCtx); err != nil {
			logger.Error("visitor registry error", "error", err)
		}
	}()
	go func() {
		if err := sessions.Run(runCtx, sessionSweepInterval); err != nil {
			logger.Error("session sweeper error", "error", err)
		}
	}()

	// Start HTTP server.
	serverErr := make(chan error, 1)
	go func() { serverErr <- srv.Start() }()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			runErr = fmt.Errorf("http server: %w", err)
		}
	}
	cancelRun()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	registry.Close()

	stopRecorder()
	select {
	case <-recorderDone:
	case <-shutdownCtx.Done():
		logger.Warn("activity recorder did not drain before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return runErr
}
