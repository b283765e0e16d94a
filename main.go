package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fakhrymubarak/places-weather-search/internal/config"
	"github.com/fakhrymubarak/places-weather-search/internal/handler"
	"github.com/fakhrymubarak/places-weather-search/internal/middleware"
	"github.com/fakhrymubarak/places-weather-search/internal/redis"
	"github.com/fakhrymubarak/places-weather-search/internal/service"
	"github.com/fakhrymubarak/places-weather-search/internal/session"
	"go.uber.org/zap"
)

func newSequencer(ctx context.Context, logger *zap.SugaredLogger) session.Sequencer {
	switch backend := config.GetSequencerBackend(); backend {
	case "redis":
		if err := redis.Ping(ctx, 2*time.Second); err != nil {
			logger.Warnw("Redis unreachable, search sequences kept in memory", "addr", config.GetRedisAddr(), "error", err)
			return session.NewMemorySequencer()
		}
		return session.NewRedisSequencer(redis.GetClient(), config.GetSessionTTL())
	case "memory":
		return session.NewMemorySequencer()
	default:
		logger.Warnw("Unknown sequencer backend, using memory", "backend", backend)
		return session.NewMemorySequencer()
	}
}

// newServer wires the API. The registry is returned so shutdown can report on live sessions.
func newServer(ctx context.Context, logger *zap.SugaredLogger) (*http.Server, *session.Registry) {
	if config.GetOpenWeatherMapAPIKey() == "" {
		logger.Warn("OPENWEATHERMAP_API_KEY is not set, places will be shown without weather")
	}
	if config.GetGooglePlacesAPIKey() == "" {
		logger.Warn("GOOGLE_PLACES_API_KEY is not set, searches and suggestions will fail")
	}

	searchService := service.NewSearchService(nil, nil)
	resolver := service.NewLocationResolver()
	registry := session.NewRegistry(searchService, newSequencer(ctx, logger),
		config.GetSessionTTL(), config.GetSessionCleanupInterval())

	limiter := middleware.NewRateLimiterFromConfig("location")
	limiter.StartCleanup(ctx)

	router := handler.NewRouter(handler.NewSearchHandler(registry, resolver), limiter, config.GetCORSAllowedOrigins())

	srv := &http.Server{
		Addr:              ":" + config.GetServerPort(),
		Handler:           router,
		ReadHeaderTimeout: config.GetServerTimeoutDuration("read_header_timeout", 15*time.Second),
		ReadTimeout:       config.GetServerTimeoutDuration("read_timeout", 15*time.Second),
		WriteTimeout:      config.GetServerTimeoutDuration("write_timeout", 30*time.Second),
		IdleTimeout:       config.GetServerTimeoutDuration("idle_timeout", 60*time.Second),
	}
	return srv, registry
}

func main() {
	logger := config.GetLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, registry := newServer(ctx, logger)

	go func() {
		logger.Infow("Places weather search server running", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Infow("Shutdown signal received", "active_sessions", registry.Len())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetServerTimeoutDuration("shutdown_timeout", 10*time.Second))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("Server shutdown failed", "error", err)
	}
	if err := redis.Close(); err != nil {
		logger.Warnw("Closing redis client failed", "error", err)
	}
	logger.Info("Shutdown complete")
}
