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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lexhub/contractqa/internal/config"
	dbRedis "github.com/lexhub/contractqa/internal/db/redis"
	"github.com/lexhub/contractqa/internal/domain/chunk"
	logpkg "github.com/lexhub/contractqa/internal/logger"
	"github.com/lexhub/contractqa/internal/metrics"
	"github.com/lexhub/contractqa/internal/repository/embcache"
	indexrepo "github.com/lexhub/contractqa/internal/repository/index"
	"github.com/lexhub/contractqa/internal/repository/resultcache"
	chiTransport "github.com/lexhub/contractqa/internal/transport/chi"
	"github.com/lexhub/contractqa/internal/transport/embedding"
	"github.com/lexhub/contractqa/internal/transport/llm"
	"github.com/lexhub/contractqa/internal/transport/objstore"
	aggregateuc "github.com/lexhub/contractqa/internal/usecase/aggregate"
	healthuc "github.com/lexhub/contractqa/internal/usecase/health"
	pipelineuc "github.com/lexhub/contractqa/internal/usecase/pipeline"
	retrieveuc "github.com/lexhub/contractqa/internal/usecase/retrieve"
	synthesizeuc "github.com/lexhub/contractqa/internal/usecase/synthesize"
	"github.com/lexhub/contractqa/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting contractqa API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("index", cfg.Index.Name),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to vector index database")

	// Register metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	// Embedding gateway with a KV-backed query embedding cache
	gateway := embedding.NewClient(&embedding.Config{
		URL:     cfg.Embedding.URL,
		APIKey:  cfg.Embedding.APIKey,
		Model:   cfg.Embedding.Model,
		Timeout: time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:  logger,
	})
	embedder := embcache.New(gateway, store,
		time.Duration(cfg.Embedding.CacheTTLSec)*time.Second, metrics.EmbeddingCacheTotal, logger)

	completer := llm.NewCompleter(&llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Logger:  logger,
	})

	// Signed download links are optional; without storage config the
	// results simply carry no download URLs.
	var signer pipelineuc.Signer
	if cfg.Storage.Endpoint != "" {
		s, err := objstore.NewSigner(&objstore.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Expiry:    time.Duration(cfg.Storage.URLExpirySec) * time.Second,
			Logger:    logger,
		})
		if err != nil {
			logger.Fatal("Failed to create object storage signer", zap.Error(err))
		}
		signer = s
	}

	cache, err := resultcache.New(cfg.Cache.Dir, cfg.Index.Version, cfg.CacheEnabled(), logger)
	if err != nil {
		logger.Fatal("Failed to create result cache", zap.Error(err))
	}

	retriever := retrieveuc.New(embedder, indexrepo.New(store, cfg.Index.Name))
	synthesizer := synthesizeuc.New(completer)
	pipeline := pipelineuc.New(retriever, synthesizer, cache, signer, chunk.Metric(cfg.Index.DistanceMetric))

	aggregator, err := aggregateuc.New(pipeline, completer, cfg.Search.MultiWorkers)
	if err != nil {
		logger.Fatal("Failed to create aggregator", zap.Error(err))
	}
	defer aggregator.Release()

	healthSvc := healthuc.New(store, gateway, completer)

	server := chiTransport.NewServer(pipeline, aggregator, cache, healthSvc, cfg.Facets, cfg.Queries, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.AuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWith(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
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
