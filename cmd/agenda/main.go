// Package main is the entrypoint for the Agenda de Citas web server.
package main

import (
	"context"
	"crypto/rand"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/agendacitas/agenda/internal/cache"
	"github.com/agendacitas/agenda/internal/config"
	"github.com/agendacitas/agenda/internal/handler"
	"github.com/agendacitas/agenda/internal/metrics"
	"github.com/agendacitas/agenda/internal/ratelimit"
	"github.com/agendacitas/agenda/internal/repository"
	"github.com/agendacitas/agenda/internal/server"
	"github.com/agendacitas/agenda/internal/service"
	"github.com/agendacitas/agenda/internal/session"
	"github.com/agendacitas/agenda/internal/view"
)

const (
	sweepSchedule = "@every 1m"
	// limiterIdle is how long a client IP stays in the in-memory limiter
	// after its last login attempt.
	limiterIdle = 10 * time.Minute
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("invalid time zone", "error", err)
		os.Exit(1)
	}

	// Initialize database
	var dsn string
	if cfg.DBDriver == config.DriverPostgres {
		dsn = cfg.PostgresDSN()
	}
	store, err := repository.Open(ctx, repository.Options{
		Driver:      cfg.DBDriver,
		DatabaseURL: dsn,
		Path:        cfg.DBPath,
		MaxConns:    cfg.DBMaxConns,
	})
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("driver", cfg.DBDriver),
			slog.String("error", sanitizeError(err, dsn)),
			slog.String("database_url", redactURL(dsn)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database", "driver", cfg.DBDriver)

	if err := store.Migrate(ctx); err != nil {
		logger.Error("failed to apply schema", slog.String("error", sanitizeError(err, dsn)))
		store.Close()
		os.Exit(1)
	}

	bootstrap := service.BootstrapOptions{
		Username: cfg.BootstrapUsername,
		Password: cfg.BootstrapPassword,
	}
	if err := service.Bootstrap(ctx, store, bootstrap, logger); err != nil {
		logger.Error("failed to seed database", "error", err)
		store.Close()
		os.Exit(1)
	}

	recorder := metrics.NewInMemory()

	// Sessions and login throttling live in Redis when configured,
	// otherwise in process memory.
	var (
		sessionStore session.Store
		limiter      ratelimit.Limiter
		cacheCheck   handler.HealthChecker
		cacheClient  *cache.Cache
		memSessions  *session.MemoryStore
		memLimiter   *ratelimit.Memory
	)
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			store.Close()
			os.Exit(1)
		}
		logger.Info("connected to Redis")
		sessionStore = cacheClient.Sessions()
		limiter = cacheClient.LoginLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst)
		cacheCheck = cacheClient
	} else {
		memSessions = session.NewMemoryStore()
		memLimiter = ratelimit.NewMemory(cfg.LoginRatePerMinute, cfg.LoginBurst)
		sessionStore = memSessions
		limiter = memLimiter
		logger.Info("REDIS_URL not set, keeping sessions in memory")
	}

	csrfKey, err := cfg.CSRFKeyBytes()
	if err != nil {
		logger.Error("invalid CSRF key", "error", err)
		os.Exit(1)
	}
	if csrfKey == nil {
		csrfKey, err = randomKey()
		if err != nil {
			logger.Error("failed to generate CSRF key", "error", err)
			os.Exit(1)
		}
		logger.Warn("CSRF_KEY not set, using a per-process key; forms break across restarts")
	}

	views, err := view.New()
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	secure := cfg.IsProduction()
	router := handler.NewRouter(handler.Deps{
		Logger:       logger,
		Views:        views,
		Metrics:      recorder,
		Snapshotter:  recorder,
		Auth:         service.NewAuthService(store, recorder, logger),
		Appointments: service.NewAppointmentService(store, recorder, logger),
		Places:       service.NewPlaceService(store, recorder, logger),
		Sessions: session.NewManager(sessionStore, session.Options{
			TTL:    cfg.SessionTTL,
			Secure: secure,
		}, logger),
		LoginLimiter: limiter,
		DB:           store,
		Cache:        cacheCheck,
		Location:     loc,
		CSRFKey:      csrfKey,
		Secure:       secure,
		Development:  cfg.IsDevelopment(),
		MaxBodySize:  cfg.MaxRequestBodySize,
	})

	// Create and run server
	srv := server.New(router, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Registered first so they stop last.
	srv.OnShutdown("database", func(context.Context) error {
		store.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}

	if memSessions != nil {
		sweeper, err := startSweeper(memSessions, memLimiter, recorder, logger)
		if err != nil {
			logger.Error("failed to schedule sweeper", "error", err)
			os.Exit(1)
		}
		srv.OnShutdown("sweeper", func(ctx context.Context) error {
			select {
			case <-sweeper.Stop().Done():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"timezone", loc.String(),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// startSweeper periodically drops expired in-memory sessions and idle
// limiter entries.
func startSweeper(sessions *session.MemoryStore, limiter *ratelimit.Memory, recorder metrics.Recorder, logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(sweepSchedule, func() {
		expired := sessions.Sweep()
		idle := limiter.Sweep(limiterIdle)
		recorder.AddSessionsExpired(expired)
		if expired > 0 || idle > 0 {
			logger.Debug("sweep finished", "sessions_expired", expired, "limiter_entries", idle)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

func randomKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
