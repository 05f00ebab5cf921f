// Command server runs the match gateway HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	_ "github.com/tbourn/go-match-gateway/docs"
	"github.com/tbourn/go-match-gateway/internal/ai"
	"github.com/tbourn/go-match-gateway/internal/config"
	apphttp "github.com/tbourn/go-match-gateway/internal/http"
	"github.com/tbourn/go-match-gateway/internal/jobs"
	"github.com/tbourn/go-match-gateway/internal/observability"
	"github.com/tbourn/go-match-gateway/internal/repo"
	"github.com/tbourn/go-match-gateway/internal/storage"
	"github.com/tbourn/go-match-gateway/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	gin.SetMode(cfg.GinMode)
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("tracing setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	ext := externals(ctx, cfg)

	purge, err := jobs.StartIdempotencyPurge(cfg.IdempotencyPurgeSpec, func(ctx context.Context) (int64, error) {
		return repo.PurgeExpiredIdempotency(ctx, db, time.Now().UTC())
	})
	if err != nil {
		log.Fatal().Err(err).Str("spec", cfg.IdempotencyPurgeSpec).Msg("schedule idempotency purge")
	}

	r := gin.New()
	apphttp.RegisterRoutes(r, db, ext, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	<-purge.Stop().Done()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// externals builds the optional providers. Unconfigured ones stay nil so the
// services fall back to mock replies and uploads answer 503.
func externals(ctx context.Context, cfg config.Config) apphttp.Externals {
	var ext apphttp.Externals

	if g := ai.NewGeminiClient(ai.GeminiConfig{
		APIKey:  cfg.AI.GeminiAPIKey,
		Model:   cfg.AI.GeminiModel,
		BaseURL: cfg.AI.GeminiBaseURL,
		Timeout: cfg.AI.Timeout,
	}); g != nil {
		ext.Text = g
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, assistant chat uses mock replies")
	}
	if v := ai.NewVisionClient(cfg.AI.VisionEndpoint, cfg.AI.GeminiAPIKey, cfg.AI.Timeout); v != nil {
		ext.Vision = v
	}
	if s := ai.NewSpeechClient(cfg.AI.SpeechEndpoint, cfg.AI.GeminiAPIKey, cfg.AI.Timeout); s != nil {
		ext.Speech = s
	}

	if cfg.Storage.Bucket != "" {
		store, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:        cfg.Storage.Bucket,
			Region:        cfg.Storage.Region,
			Endpoint:      cfg.Storage.Endpoint,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
		})
		if err != nil {
			log.Error().Err(err).Str("bucket", cfg.Storage.Bucket).Msg("object store disabled")
		} else {
			ext.Objects = store
		}
	}
	return ext
}
