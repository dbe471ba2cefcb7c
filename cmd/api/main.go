// Package main is the entrypoint for the Rolodex API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rolodex/rolodex/internal/auth"
	"github.com/rolodex/rolodex/internal/cache"
	"github.com/rolodex/rolodex/internal/config"
	"github.com/rolodex/rolodex/internal/handler"
	"github.com/rolodex/rolodex/internal/metrics"
	"github.com/rolodex/rolodex/internal/middleware"
	"github.com/rolodex/rolodex/internal/repository"
	"github.com/rolodex/rolodex/internal/server"
	"github.com/rolodex/rolodex/internal/service"
	"github.com/rolodex/rolodex/internal/storage"
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

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Apply schema migrations
	if err := repo.Migrate(ctx); err != nil {
		logger.Error("failed to apply migrations", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
		os.Exit(1)
	}
	logger.Info("migrations applied")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize avatar storage
	avatarStore, err := storage.NewAvatarStore(ctx, storage.Config{
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		PublicBaseURL:   cfg.S3PublicBaseURL,
		UsePathStyle:    cfg.S3UsePathStyle,
	})
	if err != nil {
		logger.Error("failed to initialize avatar storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Token signing and password hashing
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:     []byte(cfg.JWTSecret),
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	if err != nil {
		logger.Error("failed to initialize token service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	hasher := auth.NewHasher(cfg.BcryptCost)

	// Initialize services
	metricsRecorder := metrics.NewInMemory()
	authService := service.NewAuthService(service.AuthServiceOptions{
		Users:         repo,
		Tokens:        tokens,
		Hasher:        hasher,
		Revoker:       cacheClient,
		IdentityCache: cacheClient,
		Avatars:       avatarStore,
		Metrics:       metricsRecorder,
		RotateRefresh: cfg.RefreshRotation,
	})
	contactService := service.NewContactService(repo, metricsRecorder)

	// Resolve bearer tokens through the identity cache
	resolver := auth.NewIdentityResolver(tokens, auth.NewCachingUserStore(repo, cacheClient))

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(authService, logger)
	contactHandler := handler.NewContactHandler(contactService, logger)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)

	// Setup router
	r := setupRouter(h, healthHandler, authHandler, contactHandler, metricsHandler, resolver, cacheClient, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"refresh_rotation", cfg.RefreshRotation,
	)

	if err := srv.Run(); err != nil {
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

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	contactHandler *handler.ContactHandler,
	metricsHandler *handler.MetricsHandler,
	resolver *auth.IdentityResolver,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.DefaultSecurityConfig()))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	// Root info endpoint
	r.Get("/", h.Hello)

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger:   logger,
		Resolver: resolver,
	}

	// Rate limit middleware configuration
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:      logger,
		Cache:       cacheClient,
		UserEnabled: cfg.RateLimitUserEnabled,
		UserPerMin:  cfg.RateLimitUserPerMin,
		UserBurst:   cfg.RateLimitUserBurst,
		IPEnabled:   cfg.RateLimitAuthEnabled,
		IPRPS:       cfg.RateLimitAuthRPS,
		IPBurst:     cfg.RateLimitAuthBurst,
	}

	// Body-size caps are per route group: the avatar upload needs a larger
	// budget than the JSON endpoints, so the generic cap is not global.
	jsonBodyLimit := middleware.MaxBodySize(cfg.MaxRequestBodySize)
	avatarBodyLimit := middleware.MaxBodySize(service.MaxAvatarSize)

	// Auth endpoints (IP rate limited, no bearer token required except avatar)
	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.RateLimitIP(rateLimitCfg))

		r.With(jsonBodyLimit).Post("/register", authHandler.Register)
		r.With(jsonBodyLimit).Post("/login", authHandler.Login)
		r.With(jsonBodyLimit).Post("/refresh", authHandler.Refresh)

		r.With(middleware.Auth(authCfg), avatarBodyLimit).Post("/avatar", authHandler.UploadAvatar)
	})

	// API v1 routes (require authentication)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))
		r.Use(middleware.RateLimitUser(rateLimitCfg))
		r.Use(jsonBodyLimit)

		r.Route("/contacts", func(r chi.Router) {
			r.Post("/", contactHandler.Create)
			r.Get("/", contactHandler.List)
			// Fixed path must be registered before the {id} wildcard
			r.Get("/birthdays", contactHandler.UpcomingBirthdays)
			r.Get("/{id}", contactHandler.Get)
			r.Patch("/{id}", contactHandler.Update)
			r.Delete("/{id}", contactHandler.Delete)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
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
