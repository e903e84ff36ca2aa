package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"parishfinance/internal/amqp"
	"parishfinance/internal/backend"
	"parishfinance/internal/cache"
	"parishfinance/internal/cli"
	"parishfinance/internal/config"
	apphttp "parishfinance/internal/http"
	applog "parishfinance/internal/log"
	"parishfinance/internal/metrics"
	"parishfinance/internal/ports"
	"parishfinance/internal/services"
	"parishfinance/internal/session"
	"parishfinance/internal/shell"
)

const (
	shutdownTimeout      = 30 * time.Second
	cacheCleanupInterval = time.Minute
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli.LoadEnvFile()
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			logger := cli.SetupLogger(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *applog.Logger) error {
	m := metrics.New()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	ledger, err := backend.Create(ctx, bcfg, logger.WithComponent(applog.ComponentBackend).Logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Warn("Ledger close failed", applog.FieldError, err)
		}
	}()

	checks := []apphttp.ReadinessCheck{{Name: "ledger", Check: ledger.Ping}}

	caches := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	defer caches.Stop()

	store, storeCheck, err := openSessionStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	if storeCheck != nil {
		checks = append(checks, *storeCheck)
	}
	if mem, ok := store.(*session.MemoryStore); ok {
		caches.Register("sessions", mem)
	}

	sink, closeSink, err := openSink(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	reports := services.NewReportService(ledger.Reader, cfg.CacheTTL, m, logger.WithComponent(applog.ComponentReport).Logger)
	reports.RegisterCaches(caches)
	caches.StartCleanup(ctx, cacheCleanupInterval)

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:      ledger.Reader,
		Reports:     reports,
		Submissions: services.NewSubmissionService(sink, logger),
		Gate:        shell.NewGate(services.StubAuthenticator{Delay: cfg.LoginDelay}),
		Sessions: session.NewManager(store, session.Options{
			TTL:    cfg.SessionTTL,
			Secure: cfg.SessionCookieSecure,
		}, logger.WithComponent(applog.ComponentSession).Logger),
		Metrics:            m,
		Logger:             logger,
		Checks:             checks,
		OrgName:            cfg.OrgName,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting parish finance console",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"session_store", cfg.SessionStore,
			"submission_sink", cfg.SubmissionSink)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// openSessionStore picks the store named by SESSION_STORE. Redis also
// yields a readiness check.
func openSessionStore(cfg *config.Config, logger *applog.Logger) (session.Store, *apphttp.ReadinessCheck, error) {
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		rs, err := session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "")
		if err != nil {
			return nil, nil, fmt.Errorf("open redis session store: %w", err)
		}
		logger.Info("Using redis session store", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return rs, &apphttp.ReadinessCheck{Name: "sessions", Check: rs.Ping}, nil
	default:
		return session.NewMemoryStore(), nil, nil
	}
}

// openSink picks where form submissions go.
func openSink(cfg *config.Config, logger *applog.Logger) (ports.SubmissionSink, func(), error) {
	switch cfg.SubmissionSink {
	case config.SinkAMQP:
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(applog.ComponentAMQP).Logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect submission sink: %w", err)
		}
		return client, func() {
			if err := client.Close(); err != nil {
				logger.Warn("AMQP close failed", applog.FieldError, err)
			}
		}, nil
	default:
		return services.NewLogSink(logger), func() {}, nil
	}
}
