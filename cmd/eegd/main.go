package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eegscan/internal/api"
	"eegscan/internal/cfg"
	"eegscan/internal/metrics"
	"eegscan/internal/ml"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Local overrides; absence is not an error.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env file")
	}

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	setupLogging(c.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	svc := ml.NewService(ml.Config{
		ModelsDir:        c.ModelsDir,
		Temperature:      c.Temperature,
		InferenceTimeout: c.InferenceTimeout,
		Metrics:          metrics.NewWrapper(m),
	})
	publishModelGauges(m, svc)

	if !svc.DeepLoaded() && !svc.ClassicalLoaded() {
		log.Warn().Str("dir", c.ModelsDir).Msg("no model artifacts found, serving in degraded mode")
	}

	startMetricsServer(ctx, c.MetricsPort)

	server := api.NewServer(svc, m, c.Port, c.MaxBodyBytes)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("API server failed")
			cancel()
		}
	}()

	waitForShutdown(ctx, cancel)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("API server shutdown incomplete")
	}
	log.Info().Msg("shutdown complete")
}

func setupLogging(levelName string) {
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func publishModelGauges(m *metrics.Metrics, svc *ml.Service) {
	if svc.DeepLoaded() {
		m.DeepModelLoaded.Set(1)
	}
	if svc.ClassicalLoaded() {
		m.ClassicalModelLoaded.Set(1)
	}
	log.Info().
		Bool("deep", svc.DeepLoaded()).
		Bool("classical", svc.ClassicalLoaded()).
		Msg("model availability")
}

// startMetricsServer serves Prometheus metrics and a liveness probe on the
// metrics port.
func startMetricsServer(ctx context.Context, port int) {
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK")) //nolint:errcheck
		})
		mux.Handle("/metrics", promhttp.Handler())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		go func() {
			<-ctx.Done()
			if err := server.Shutdown(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to shutdown metrics server")
			}
		}()

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func waitForShutdown(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}
	cancel()
}
