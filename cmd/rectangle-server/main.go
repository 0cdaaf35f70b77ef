package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rectangle-service/rectangle"
	"rectangle-service/rectangle/domain"
	"rectangle-service/rectangle/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// flagOverrides só vale para flags passadas explicitamente.
type flagOverrides struct {
	listenAddr       string
	storeBackend     string
	storeFile        string
	delay            time.Duration
	validateEndpoint bool
}

func newRootCmd() *cobra.Command {
	var envFile string
	var fo flagOverrides

	cmd := &cobra.Command{
		Use:          "rectangle-server",
		Short:        "Serve the shared rectangle and validate width <= height before saving it",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadEnvFile(envFile, cmd.Flags().Changed("env-file")); err != nil {
				return err
			}
			cfg, err := readConfig()
			if err != nil {
				return err
			}
			fo.apply(cmd, &cfg)
			if err := cfg.validate(); err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			return run(cmd.Context(), cfg, nil)
		},
	}

	f := cmd.Flags()
	f.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	f.StringVar(&fo.listenAddr, "addr", "", "listen address (overrides LISTEN_ADDR)")
	f.StringVar(&fo.storeBackend, "store", "", "memory, file or redis (overrides STORE_BACKEND)")
	f.StringVar(&fo.storeFile, "file", "", "durable record path (overrides STORE_FILE)")
	f.DurationVar(&fo.delay, "delay", 0, "validation delay (overrides VALIDATION_DELAY)")
	f.BoolVar(&fo.validateEndpoint, "validate-endpoint", false, "expose POST /api/rectangle/validate (overrides VALIDATE_ENDPOINT)")
	return cmd
}

func (fo flagOverrides) apply(cmd *cobra.Command, cfg *config) {
	f := cmd.Flags()
	if f.Changed("addr") {
		cfg.ListenAddr = fo.listenAddr
	}
	if f.Changed("store") {
		cfg.StoreBackend = fo.storeBackend
	}
	if f.Changed("file") {
		cfg.StoreFile = fo.storeFile
	}
	if f.Changed("delay") {
		cfg.ValidationDelay = fo.delay
	}
	if f.Changed("validate-endpoint") {
		cfg.ValidateEndpoint = fo.validateEndpoint
	}
}

// run monta o serviço e atende até o ctx encerrar. ln nil escuta em
// cfg.ListenAddr.
func run(ctx context.Context, cfg config, ln net.Listener) error {
	log := newLogger(cfg)
	def := domain.Dimensions{Width: cfg.DefaultWidth, Height: cfg.DefaultHeight}

	var rdb *redis.Client
	if cfg.needsRedis() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("redis ping error: %w", err)
		}
	}

	store, err := openStore(ctx, cfg, def, rdb)
	if err != nil {
		return err
	}
	stats := openStats(cfg, rdb)

	var metrics *rectangle.Metrics
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = rectangle.NewMetrics(reg)
	}

	keyFn := rectangle.DefaultKeyFunc(cfg.RateKeyHeader, cfg.TrustXFF)

	var rateLimit *rectangle.RateLimitOptions
	if cfg.RateEnabled {
		limiters := infra.NewClientLimiters(cfg.RateRPS, cfg.RateBurst)
		limiters.StartJanitor(ctx, log)
		rateLimit = &rectangle.RateLimitOptions{
			Limiters:            limiters,
			RejectStatus:        http.StatusTooManyRequests,
			RetryAfter:          cfg.RetryAfter,
			AddRateLimitHeaders: cfg.AddHeaders,
		}
	}

	h := rectangle.NewRouter(rectangle.Options{
		Store:            store,
		Delay:            cfg.ValidationDelay,
		Stats:            stats,
		Metrics:          metrics,
		Logger:           log,
		KeyFn:            keyFn,
		ValidateEndpoint: cfg.ValidateEndpoint,
		CORSOrigins:      cfg.corsOrigins(),
		RateLimit:        rateLimit,
		Pending: rectangle.PendingOptions{
			Max:            cfg.PendingMax,
			RejectStatus:   http.StatusServiceUnavailable,
			AcquireTimeout: cfg.PendingTimeout,
		},
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	if ln == nil {
		if ln, err = net.Listen("tcp", cfg.ListenAddr); err != nil {
			return fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
		}
	}

	log.WithFields(logrus.Fields{
		"addr":              ln.Addr().String(),
		"store":             cfg.StoreBackend,
		"location":          storeLocation(store),
		"delay":             cfg.ValidationDelay.String(),
		"validate_endpoint": cfg.ValidateEndpoint,
		"cors":              cfg.CORSAllowedOrigins,
	}).Info("rectangle server listening")
	log.WithFields(logrus.Fields{
		"enabled": cfg.RateEnabled,
		"rps":     cfg.RateRPS,
		"burst":   cfg.RateBurst,
		"header":  cfg.RateKeyHeader,
		"xff":     cfg.TrustXFF,
	}).Info("rate limit")
	log.WithFields(logrus.Fields{
		"pending_max":     cfg.PendingMax,
		"pending_timeout": cfg.PendingTimeout.String(),
		"stats":           cfg.StatsBackend,
		"metrics":         cfg.MetricsEnabled,
	}).Info("update limits")

	if err := serve(ctx, srv, ln, cfg.ShutdownTimeout, log); err != nil {
		return err
	}
	log.Info("rectangle server stopped")
	return nil
}

// serve atende em ln até o ctx encerrar e só retorna depois que o Shutdown
// terminou, isto é, quando as atualizações em andamento já responderam ou o
// timeout estourou.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration, log logrus.FieldLogger) error {
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	select {
	case err := <-served:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.WithField("timeout", timeout.String()).Info("shutting down, waiting for in-flight updates")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown incomplete")
		_ = srv.Close()
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	if err := <-served; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config, def domain.Dimensions, rdb *redis.Client) (domain.Store, error) {
	switch cfg.StoreBackend {
	case backendMemory:
		return infra.NewMemoryStore(def), nil
	case backendRedis:
		s, err := infra.OpenRedisStore(ctx, rdb, def, infra.WithRedisKey(cfg.RedisKey))
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return s, nil
	default:
		mode, err := cfg.fileMode()
		if err != nil {
			return nil, err
		}
		s, err := infra.OpenFileStore(cfg.StoreFile, def, infra.WithFileMode(mode))
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return s, nil
	}
}

// storeLocation diz onde o registro durável vive, para o log de partida.
func storeLocation(s domain.Store) string {
	switch s := s.(type) {
	case *infra.FileStore:
		return s.Path()
	case *infra.RedisStore:
		return "redis key " + s.Key()
	default:
		return "memory"
	}
}

func openStats(cfg config, rdb *redis.Client) domain.StatsStore {
	switch cfg.StatsBackend {
	case backendRedis:
		return infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.StatsPrefix),
			infra.WithStatsTTL(cfg.StatsTTL),
			infra.WithStatsBucket(cfg.StatsBucket),
			infra.WithStatsTrackClients(cfg.StatsTrackClients),
		)
	case backendNone:
		return nil
	default:
		return infra.NewMemoryStatsStore(infra.WithTrackClients(cfg.StatsTrackClients))
	}
}
