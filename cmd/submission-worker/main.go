package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"parishfinance/internal/amqp"
	"parishfinance/internal/cli"
	applog "parishfinance/internal/log"
	"parishfinance/internal/metrics"
	"parishfinance/internal/services"
	"parishfinance/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		cli.Fatal(slog.Default(), "submission-worker failed", err)
	}
}

func newRootCmd() *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:           "submission-worker",
		Short:         "Consume queued form submissions and log them",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(metricsAddr)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address (disabled when empty)")
	return cmd
}

func run(metricsAddr string) error {
	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required for the submission worker")
	}
	logger := cli.SetupLogger(cfg.LogLevel)
	logger.Info("Starting submission-worker", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(applog.ComponentAMQP).Logger)
	if err != nil {
		return fmt.Errorf("connect to AMQP: %w", err)
	}
	defer client.Close()

	m := metrics.New()
	w := worker.NewSubmissionWorker(services.NewLogSink(logger), m, logger.WithComponent(applog.ComponentWorker).Logger)

	var metricsSrv *http.Server
	if metricsAddr != "" {
		metricsSrv = &http.Server{Addr: metricsAddr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
	}

	ctx := cli.GracefulShutdown(logger, shutdownTimeout, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.ConsumeWithReconnect(gctx, w.Handle)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if metricsSrv != nil {
		g.Go(func() error {
			logger.Info("Serving worker metrics", "addr", metricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Submission worker stopped")
	return nil
}
