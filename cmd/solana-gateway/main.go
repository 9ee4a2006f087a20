// Command solana-gateway serves key generation, message signing and Solana
// instruction building over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/R3E-Network/solana_layer/internal/audit"
	"github.com/R3E-Network/solana_layer/internal/config"
	"github.com/R3E-Network/solana_layer/internal/httpapi"
	"github.com/R3E-Network/solana_layer/internal/keypair"
	"github.com/R3E-Network/solana_layer/internal/logging"
	"github.com/R3E-Network/solana_layer/internal/metrics"
	"github.com/R3E-Network/solana_layer/internal/middleware"
)

const rateLimitCleanupInterval = time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logging.NewDefault("solana-gateway").WithError(err).Fatal("solana-gateway exited")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.ServiceName, cfg.LogLevel, cfg.LogFormat)

	sink, closeSink, err := newAuditSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	auditor := audit.NewLogger(sink, cfg.AuditBuffer, audit.DefaultTimeout)
	auditor.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := auditor.Stop(stopCtx); err != nil {
			logger.WithError(err).Warn("Audit trail did not drain")
		}
		if dropped, failed := auditor.Dropped(), auditor.Failed(); dropped > 0 || failed > 0 {
			logger.WithField("dropped", dropped).WithField("failed", failed).Warn("Audit events lost")
		}
	}()

	keys := keypair.NewGenerator(nil).OnFatal(func(err error) {
		logger.WithError(err).Fatal("Randomness source failed")
	})

	opts := httpapi.Options{
		ServiceName:    cfg.ServiceName,
		Version:        cfg.Version,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
		Metrics:        metrics.New(),
		Audit:          auditor,
		Keys:           keys,
	}

	if cfg.AuthEnabled() {
		publicKey, err := middleware.LoadPublicKey(cfg.AuthPublicKeyFile)
		if err != nil {
			return fmt.Errorf("load auth key: %w", err)
		}
		opts.Auth = middleware.NewAuthMiddleware(publicKey, logger, []string{"/health", "/metrics"})
	}

	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
		cleanupStop := make(chan struct{})
		defer close(cleanupStop)
		limiter.StartCleanup(rateLimitCleanupInterval, cleanupStop)
		opts.RateLimiter = limiter
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpapi.New(opts),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logBanner(logger, cfg)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// newAuditSink returns the Redis stream sink when AUDIT_REDIS_URL is set and
// the log sink otherwise.
func newAuditSink(ctx context.Context, cfg *config.Config, logger *logging.Logger) (audit.Sink, func(), error) {
	if cfg.AuditRedisURL == "" {
		return audit.NewLogSink(logger), func() {}, nil
	}

	sink, err := audit.NewRedisSink(cfg.AuditRedisURL, cfg.AuditStream, audit.DefaultStreamMaxLen)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sink.Ping(pingCtx); err != nil {
		_ = sink.Close()
		return nil, nil, err
	}

	logger.WithField("stream", cfg.AuditStream).Info("Audit events go to Redis")
	return sink, func() {
		if err := sink.Close(); err != nil {
			logger.WithError(err).Warn("Close audit redis")
		}
	}, nil
}

func logBanner(logger *logging.Logger, cfg *config.Config) {
	logger.WithField("addr", cfg.Addr()).
		WithField("auth", cfg.AuthEnabled()).
		WithField("rate_limit_rps", cfg.RateLimitRPS).
		Infof("%s listening", cfg.ServiceName)
	for _, ep := range httpapi.Endpoints {
		logger.Infof("  %-6s %s", ep.Method, ep.Path)
	}
}
