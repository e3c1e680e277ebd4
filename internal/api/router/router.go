package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/nectar-lead-tracker/internal/docs"
	httpmiddleware "github.com/wolfman30/nectar-lead-tracker/internal/http/middleware"
	"github.com/wolfman30/nectar-lead-tracker/internal/leads"
	"github.com/wolfman30/nectar-lead-tracker/internal/library"
	"github.com/wolfman30/nectar-lead-tracker/internal/projects"
	"github.com/wolfman30/nectar-lead-tracker/internal/reports"
	"github.com/wolfman30/nectar-lead-tracker/internal/sales"
	"github.com/wolfman30/nectar-lead-tracker/internal/settings"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	LeadsHandler    *leads.Handler
	SalesHandler    *sales.Handler
	ReportsHandler  *reports.Handler
	SettingsHandler *settings.Handler
	DocsHandler     *docs.Handler
	ProjectsHandler *projects.Handler
	LibraryHandler  *library.Handler
	MetricsHandler  http.Handler
	CORS            httpmiddleware.CORSConfig

	// Auth: HMAC JWT whose subject is the user id; DevUserID stands in when
	// no token is sent.
	JWTSecret string
	DevUserID string

	UserTracker httpmiddleware.UserTracker
	// ImportRate is CSV imports per second per user; 0 disables limiting.
	ImportRate float64
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.CORS.Enabled() {
		r.Use(httpmiddleware.CORS(cfg.CORS))
	}
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	r.Group(func(public chi.Router) {
		public.Get("/health", health)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	r.Group(func(user chi.Router) {
		user.Use(httpmiddleware.UserJWT(cfg.JWTSecret, cfg.DevUserID))
		if cfg.UserTracker != nil {
			user.Use(httpmiddleware.TrackUsers(cfg.UserTracker, cfg.Logger))
		}

		if h := cfg.LeadsHandler; h != nil {
			user.Route("/leads", func(r chi.Router) {
				r.Get("/", h.ListLeads)
				r.Post("/", h.CreateLead)
				r.Get("/today", h.Today)
				r.Get("/catalog", h.Catalog)
				r.Get("/export.csv", h.ExportCSV)
				if cfg.SalesHandler != nil {
					r.Get("/export.xlsx", cfg.SalesHandler.ExportXLSX)
				}
				importRoute := r.With()
				if cfg.ImportRate > 0 {
					importRoute = r.With(httpmiddleware.RateLimit(cfg.ImportRate, 1))
				}
				importRoute.Post("/import", h.ImportCSV)
				r.Route("/{id}", func(lead chi.Router) {
					lead.Get("/", h.GetLead)
					lead.Put("/", h.UpdateLead)
					lead.Patch("/", h.PatchLead)
					lead.Delete("/", h.DeleteLead)
					lead.Post("/quick-sale", h.QuickSale)
					lead.Post("/products/toggle", h.ToggleProduct)
				})
			})
		}

		if cfg.SalesHandler != nil {
			user.Get("/sales/summary", cfg.SalesHandler.GetSummary)
		}

		if h := cfg.ReportsHandler; h != nil {
			user.Get("/reports/weekly", h.GetWeekly)
			user.Post("/reports/weekly/email", h.EmailWeekly)
		}

		if h := cfg.SettingsHandler; h != nil {
			user.Route("/settings", func(r chi.Router) {
				r.Get("/", h.GetSettings)
				r.Post("/team", h.AddMember)
				r.Delete("/team/{name}", h.RemoveMember)
				r.Put("/sheet", h.SetSheet)
				r.Delete("/sheet", h.ClearSheet)
			})
		}

		if h := cfg.DocsHandler; h != nil {
			user.Route("/docs", func(r chi.Router) {
				r.Get("/", h.List)
				r.Post("/", h.Create)
				r.Post("/upload", h.Upload)
				r.Get("/export.md", h.Export)
				r.Get("/overview", h.Overview)
				r.Put("/{id}", h.Update)
				r.Delete("/{id}", h.Delete)
			})
		}

		if h := cfg.ProjectsHandler; h != nil {
			user.Route("/projects", func(r chi.Router) {
				r.Get("/", h.List)
				r.Post("/", h.Create)
				r.Put("/{id}", h.Update)
				r.Delete("/{id}", h.Delete)
				r.Post("/{id}/tasks", h.AddTask)
			})
			user.Post("/tasks/{id}/toggle", h.ToggleTask)
			user.Delete("/tasks/{id}", h.DeleteTask)
		}

		if h := cfg.LibraryHandler; h != nil {
			user.Route("/library", func(r chi.Router) {
				r.Get("/", h.List)
				r.Post("/", h.SaveLink)
				r.Post("/upload", h.Upload)
				r.Delete("/{id}", h.Delete)
			})
		}
	})

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
