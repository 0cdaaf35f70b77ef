package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	backendMemory = "memory"
	backendFile   = "file"
	backendRedis  = "redis"
	backendNone   = "none"
)

type config struct {
	ListenAddr      string        `env:"LISTEN_ADDR,default=:8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT,default=30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT,default=90s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=15s"`

	StoreBackend  string  `env:"STORE_BACKEND,default=file"`
	StoreFile     string  `env:"STORE_FILE,default=rectangle-config.json"`
	StoreFileMode string  `env:"STORE_FILE_MODE,default=0644"`
	DefaultWidth  float64 `env:"DEFAULT_WIDTH,default=80"`
	DefaultHeight float64 `env:"DEFAULT_HEIGHT,default=100"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`
	RedisKey      string `env:"REDIS_KEY,default=rectangle:dimensions"`

	// VALIDATION_DELAY simula a validação demorada; o cliente depende dela.
	ValidationDelay  time.Duration `env:"VALIDATION_DELAY,default=10s"`
	ValidateEndpoint bool          `env:"VALIDATE_ENDPOINT,default=false"`

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS,default=*"`

	RateEnabled   bool          `env:"RATE_ENABLED,default=true"`
	RateRPS       float64       `env:"RATE_RPS,default=5"`
	RateBurst     int           `env:"RATE_BURST,default=10"`
	RateKeyHeader string        `env:"RATE_KEY_HEADER"`
	TrustXFF      bool          `env:"TRUST_XFF,default=false"`
	RetryAfter    time.Duration `env:"RETRY_AFTER,default=1s"`
	AddHeaders    bool          `env:"ADD_RATELIMIT_HEADERS,default=false"`

	PendingMax     int           `env:"PENDING_UPDATES_MAX,default=100"`
	PendingTimeout time.Duration `env:"PENDING_UPDATES_TIMEOUT,default=0s"`

	StatsBackend      string        `env:"STATS_BACKEND,default=memory"`
	StatsPrefix       string        `env:"STATS_PREFIX,default=rectangle:stats"`
	StatsTTL          time.Duration `env:"STATS_TTL,default=24h"`
	StatsBucket       string        `env:"STATS_BUCKET,default=minute"`
	StatsTrackClients bool          `env:"STATS_TRACK_CLIENTS,default=false"`

	MetricsEnabled bool `env:"METRICS_ENABLED,default=true"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`
}

// loadEnvFile carrega um .env opcional. Arquivo ausente só é erro quando o
// caminho foi passado explicitamente.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", path, err)
}

func readConfig() (config, error) {
	var cfg config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return config{}, fmt.Errorf("decode environment: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.StatsBackend = strings.ToLower(strings.TrimSpace(cfg.StatsBackend))
	return cfg, nil
}

func (c config) validate() error {
	switch c.StoreBackend {
	case backendMemory, backendFile, backendRedis:
	default:
		return fmt.Errorf("STORE_BACKEND must be memory, file or redis, got %q", c.StoreBackend)
	}
	switch c.StatsBackend {
	case backendMemory, backendRedis, backendNone:
	default:
		return fmt.Errorf("STATS_BACKEND must be memory, redis or none, got %q", c.StatsBackend)
	}

	if c.StoreBackend == backendFile && strings.TrimSpace(c.StoreFile) == "" {
		return errors.New("STORE_FILE is required when STORE_BACKEND=file")
	}
	if _, err := c.fileMode(); err != nil {
		return err
	}
	if c.needsRedis() && strings.TrimSpace(c.RedisAddr) == "" {
		return errors.New("REDIS_ADDR is required when a redis backend is selected")
	}
	if c.ValidationDelay < 0 {
		return errors.New("VALIDATION_DELAY must be >= 0")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be > 0")
	}
	// a resposta do POST só sai depois do atraso
	if c.WriteTimeout > 0 && c.WriteTimeout <= c.ValidationDelay {
		return fmt.Errorf("WRITE_TIMEOUT (%s) must exceed VALIDATION_DELAY (%s)", c.WriteTimeout, c.ValidationDelay)
	}
	if c.RateEnabled && c.RateRPS <= 0 {
		return errors.New("RATE_RPS must be > 0")
	}
	if c.RateEnabled && c.RateBurst <= 0 {
		return errors.New("RATE_BURST must be > 0")
	}
	if c.PendingMax < 0 {
		return errors.New("PENDING_UPDATES_MAX must be >= 0")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// fileMode lê STORE_FILE_MODE em octal ("0600", "644").
func (c config) fileMode() (fs.FileMode, error) {
	m, err := strconv.ParseUint(strings.TrimSpace(c.StoreFileMode), 8, 32)
	if err != nil || m > 0o777 {
		return 0, fmt.Errorf("STORE_FILE_MODE must be an octal permission like 0644, got %q", c.StoreFileMode)
	}
	return fs.FileMode(m), nil
}

func (c config) needsRedis() bool {
	return c.StoreBackend == backendRedis || c.StatsBackend == backendRedis
}

func (c config) corsOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func newLogger(c config) *logrus.Logger {
	log := logrus.New()
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if strings.EqualFold(c.LogFormat, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
