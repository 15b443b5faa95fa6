package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pai-oys/orda-service/internal/config"
	dbRedis "github.com/pai-oys/orda-service/internal/db/redis"
	"github.com/pai-oys/orda-service/internal/domain"
	logpkg "github.com/pai-oys/orda-service/internal/logger"
	"github.com/pai-oys/orda-service/internal/metrics"
	"github.com/pai-oys/orda-service/internal/repository/searchcache"
	chiTransport "github.com/pai-oys/orda-service/internal/transport/chi"
	openaiGen "github.com/pai-oys/orda-service/internal/transport/openai"
	"github.com/pai-oys/orda-service/internal/transport/vectordb"
	chatuc "github.com/pai-oys/orda-service/internal/usecase/chat"
	healthuc "github.com/pai-oys/orda-service/internal/usecase/health"
	retrievaluc "github.com/pai-oys/orda-service/internal/usecase/retrieval"
	"github.com/pai-oys/orda-service/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting orda API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("backend_url", cfg.Backend.URL),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	// Key prefix is global; set it before anything computes a cache key.
	domain.KeyPrefix = cfg.Cache.KeyPrefix

	// Register retrieval metrics explicitly (no init())
	metrics.RegisterRetrievalMetrics()

	// Vector search backend client
	backend := vectordb.NewClient(&vectordb.Config{
		BaseURL:        cfg.Backend.URL,
		ConnectTimeout: time.Duration(cfg.Backend.ConnectTimeoutSec) * time.Second,
		ProbeTimeout:   time.Duration(cfg.Backend.ProbeTimeoutSec) * time.Second,
		Logger:         logger,
	})

	// Optional Redis result cache
	ctx := context.Background()
	var store *dbRedis.Store
	if cfg.Cache.Enabled {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Searcher chain: backend -> cached
	var searcher retrievaluc.Searcher = backend
	if store != nil {
		searcher = searchcache.New(
			backend, store,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.SearchCacheTotal, logger,
		)
	}

	retrievalSvc := retrievaluc.New(searcher, retrievaluc.Config{
		BaseTimeout: time.Duration(cfg.Retrieval.BaseTimeoutSec) * time.Second,
		MaxRetries:  cfg.Retrieval.MaxRetries,
		TopK:        cfg.Retrieval.TopK,
	}).WithLogger(logger)

	// Optional answer provider; without an API key the chat endpoint is off.
	var generator *openaiGen.Generator
	var chatSvc *chatuc.Service
	if cfg.Answer.APIKey != "" {
		generator = openaiGen.NewGenerator(&openaiGen.Config{
			APIKey:   cfg.Answer.APIKey,
			BaseURL:  cfg.Answer.BaseURL,
			Model:    cfg.Answer.Model,
			Provider: cfg.Answer.Provider,
			Logger:   logger,
		})
		chatSvc = chatuc.New(retrievalSvc, generator, chatuc.Config{
			AnswerTimeout: time.Duration(cfg.Answer.TimeoutSec) * time.Second,
		})
		logger.Info("Answer provider configured",
			zap.String("provider", cfg.Answer.Provider),
			zap.String("model", cfg.Answer.Model),
		)
	}

	// Pass nil interface (not typed nil pointer!) for absent components.
	// Go gotcha: (*Generator)(nil) wrapped in AnswerChecker != nil.
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	var answerChecker healthuc.AnswerChecker
	if generator != nil {
		answerChecker = generator
	}
	healthSvc := healthuc.New(backend, cachePinger, answerChecker)

	// Create chi server
	server := chiTransport.NewServer(retrievalSvc, chatSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
