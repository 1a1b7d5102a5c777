package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"signal_board/internal/auth"
	"signal_board/internal/board"
	"signal_board/internal/models"
	"signal_board/internal/signal"
)

// Board — операции доски, которые нужны HTTP-слою.
type Board interface {
	Create(ctx context.Context, form models.SignalForm) (board.Outcome, error)
	Edit(ctx context.Context, id string, form models.SignalForm) (board.Outcome, error)
	Activate(ctx context.Context, id string, a board.Activation) (board.Outcome, error)
	ReportHit(ctx context.Context, id string, h board.Hit) (board.Outcome, error)
	Remove(ctx context.Context, id string) (board.Outcome, error)
	ResendRollUp(ctx context.Context) (board.Outcome, error)

	Get(id string) (*models.TradingSignal, error)
	Signals() []*models.TradingSignal
	Views() signal.Views
}

type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func NewRouter(b Board, jwt *auth.JWTManager, opts Options) http.Handler {
	h := NewHandler(b, jwt)

	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(chimw.Timeout(opts.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 🔐 всё под токеном
	r.Route("/api", func(pr chi.Router) {
		pr.Use(auth.Middleware(jwt))

		pr.Get("/me", h.Me)

		pr.Get("/signals", h.ListSignals)
		pr.Post("/signals", h.CreateSignal)
		pr.Get("/signals/{id}", h.GetSignal)
		pr.Put("/signals/{id}", h.EditSignal)
		pr.Delete("/signals/{id}", h.RemoveSignal)
		pr.Post("/signals/{id}/levels", h.EditLevel)
		pr.Post("/signals/{id}/activate", h.ActivateSignal)
		pr.Post("/signals/{id}/hits", h.ReportHit)

		pr.Post("/rollup", h.ResendRollUp)

		pr.With(auth.RequireAdmin).Post("/admin/tokens", h.IssueToken)
	})

	return r
}
