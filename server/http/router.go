package serverhttp

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Asif12as/wsm-warehouse/internal/config"
	"github.com/Asif12as/wsm-warehouse/internal/middleware"
	recHnd "github.com/Asif12as/wsm-warehouse/internal/reconcile/handler"
)

func NewRouter(cfg config.Config, logger zerolog.Logger, h *recHnd.Handler) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> cors -> rate limit -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.RateLimit(middleware.NewIPLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)))
	r.Use(middleware.LimitBytes(cfg.MaxUploadBytes()))

	// health-check
	r.Get("/health", Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/sku-mappings", func(r chi.Router) {
			r.Get("/", h.ListMappings)
			r.Post("/map", h.MapSKU)
			r.Post("/batch", h.MapBatch)
			r.Post("/validate", h.Validate)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
		})
		r.Route("/data-processing", func(r chi.Router) {
			r.Post("/upload", h.Upload)
			r.Get("/jobs", h.ListJobs)
			r.Get("/jobs/{id}", h.GetJob)
		})
	})

	if cfg.Pprof {
		r.Mount("/debug", chimw.Profiler())
	}
	return r
}
