package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tubelens-backend/internal/analysis"
	"tubelens-backend/internal/config"
	"tubelens-backend/internal/database"
	"tubelens-backend/internal/handlers"
	"tubelens-backend/internal/logger"
	"tubelens-backend/internal/middleware"
	"tubelens-backend/internal/models"
	"tubelens-backend/internal/router"
	"tubelens-backend/internal/services"
	"tubelens-backend/internal/websocket"
)

func main() {
	// ──── Step 1: Load Configuration ────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.IsDevelopment())
	log.Info().Str("env", cfg.Env).Msg("starting TubeLens backend")

	ctx := context.Background()

	// ──── Step 2: Connect Redis (optional) ────
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer redisClient.Close()
		log.Info().Msg("✓ Redis connected, live progress enabled")
	} else {
		log.Info().Msg("REDIS_URL not set, live progress disabled")
	}

	// ──── Step 3: Initialize LLM Client ────
	llm, closeLLM := newCompleter(ctx, cfg, log)
	defer closeLLM()

	prompts := analysis.NewPromptBuilder(cfg.ReportLanguage)
	orchestrator := analysis.NewOrchestrator(llm, prompts, cfg.LLMMaxOutputTokens, log)

	keywords, err := analysis.NewKeywordExtractor(cfg.KeywordScripts...)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid KEYWORD_SCRIPTS")
	}

	// ──── Step 4: Initialize Video Fetch Backend ────
	transcripts := services.NewTranscriptService(cfg.CaptionLanguages, log)
	fetcher := newFetcher(ctx, cfg, transcripts, log)
	if fetcher != nil {
		log.Info().Str("backend", fetcher.Source()).Msg("✓ Video fetch backend initialized")
	}

	// ──── Step 5: Initialize Handlers ────
	progress := services.NewProgressPublisher(redisClient, log)
	analysisHandler := handlers.NewAnalysisHandler(
		orchestrator,
		fetcher,
		keywords,
		progress,
		models.ReportVariant(cfg.ReportVariant),
		cfg.IsDevelopment(),
		log,
	)

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClient, log)
	defer wsHub.Close()
	log.Info().Bool("enabled", redisClient != nil).Msg("✓ WebSocket hub started")

	// ──── Step 7: Start HTTP Server ────
	var limiter *middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
		defer limiter.Stop()
	}

	r := router.New(log, analysisHandler, wsHub, cfg.FrontendURL, limiter)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Report generation and channel scraping run inside the request.
		WriteTimeout: 6 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Info().
		Str("port", cfg.Port).
		Bool("ai_available", orchestrator.Available()).
		Bool("fetch_available", fetcher != nil).
		Msgf("✓ TubeLens backend ready on http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
}

// newCompleter returns the configured LLM client, or nil when no key is set.
func newCompleter(ctx context.Context, cfg *config.Config, log zerolog.Logger) (analysis.Completer, func()) {
	noop := func() {}
	if !cfg.LLMAvailable() {
		log.Warn().Msg("GEMINI_API_KEY not set, AI reports disabled")
		return nil, noop
	}

	switch cfg.LLMProvider {
	case "genai":
		svc, err := services.NewGenAIService(ctx, cfg.GeminiAPIKey, cfg.LLMModel, log)
		if err != nil {
			log.Fatal().Err(err).Msg("genai client initialization failed")
		}
		log.Info().Str("model", svc.Model()).Msg("✓ genai client initialized")
		return svc, noop
	default:
		svc, err := services.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.LLMModel, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Gemini client initialization failed")
		}
		log.Info().Str("model", svc.Model()).Msg("✓ Gemini client initialized")
		return svc, svc.Close
	}
}

// newFetcher returns the configured fetch backend, or nil when it has no credential.
func newFetcher(ctx context.Context, cfg *config.Config, transcripts *services.TranscriptService, log zerolog.Logger) handlers.ChannelFetcher {
	if !cfg.FetchAvailable() {
		log.Warn().Str("backend", cfg.FetchBackend).Msg("fetch credential not set, /analyze disabled")
		return nil
	}

	if cfg.FetchBackend == "youtube" {
		svc, err := services.NewYouTubeDataService(ctx, cfg.YouTubeAPIKey, transcripts, log)
		if err != nil {
			log.Fatal().Err(err).Msg("YouTube Data API client initialization failed")
		}
		return svc
	}

	var opts []services.ApifyOption
	if cfg.CaptionBackfill {
		opts = append(opts, services.WithCaptionBackfill(transcripts))
	}
	return services.NewApifyService(cfg.ApifyToken, cfg.ApifyActor, log, opts...)
}
