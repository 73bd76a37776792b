package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

func NewRouter(h *Handler, logger *logrus.Entry) chi.Router {
	r := chi.NewRouter()

	// ---- Global Middleware ----
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/customers", func(c chi.Router) {
			c.Get("/", h.ListCustomers)
			c.Post("/", h.CreateCustomer)
			c.Get("/suggestions", h.Suggestions)
			c.Post("/import", h.ImportCustomers)
			c.Get("/import/template", h.ImportTemplate)

			c.Route("/{id}", func(one chi.Router) {
				one.Get("/", h.GetCustomer)
				one.Put("/", h.UpdateCustomer)
				one.Delete("/", h.DeleteCustomer)
				one.Get("/schedule", h.CustomerSchedule)
				one.Post("/remind", h.SendReminder)
			})
		})

		api.Get("/settings", h.GetSettings)
		api.Put("/settings", h.UpdateSettings)

		api.Route("/notifications", func(n chi.Router) {
			n.Post("/run", h.RunPass)
			n.Get("/history", h.History)
			n.Get("/digest", h.Digest)
		})
	})

	return r
}

func requestLogger(logger *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Debug("HTTP request")
		})
	}
}
