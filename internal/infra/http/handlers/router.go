package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xavierca1/dealer-leads/internal/entity"
	"github.com/xavierca1/dealer-leads/internal/infra/http/middleware"
)

type RouterConfig struct {
	Roster         entity.Roster
	AllowedOrigins []string
	Leads          *LeadHandler
	Board          *BoardHandler
	Live           *LiveHandler
	Health         *HealthHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", middleware.ViewerHeader},
	}))

	r.Get("/health", cfg.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/catalog", cfg.Board.Catalog)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Viewer(cfg.Roster))

		r.Route("/leads", func(r chi.Router) {
			r.Post("/", cfg.Leads.Create)
			r.Get("/", cfg.Leads.List)
			r.Get("/{id}", cfg.Leads.Get)
			r.Post("/{id}/status", cfg.Leads.ChangeStatus)
			r.Post("/{id}/comments", cfg.Leads.AddComment)
		})
		r.Get("/dashboard", cfg.Board.Dashboard)
		r.Get("/advisors", cfg.Board.Advisors)
		r.Get("/ws/leads", cfg.Live.Handle)
	})

	return r
}
