package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"tubelens-backend/internal/handlers"
	"tubelens-backend/internal/middleware"
	"tubelens-backend/internal/websocket"
)

// New builds the HTTP surface. A nil limiter leaves the analysis endpoints unthrottled.
func New(
	logger zerolog.Logger,
	analysisHandler *handlers.AnalysisHandler,
	wsHub *websocket.Hub,
	frontendURL string,
	limiter *middleware.RateLimiter,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(frontendURL))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// ──── Report Routes ────
		r.Get("/ai-analyze", analysisHandler.AIAnalyzeInfo)
		r.Get("/analyze", analysisHandler.AnalyzeInfo)

		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter.Middleware)
			}
			r.Post("/ai-analyze", analysisHandler.AIAnalyze)
			r.Post("/analyze", analysisHandler.Analyze)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
