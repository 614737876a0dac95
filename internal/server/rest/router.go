package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrijs2005/verikeep/internal/logging"
)

const requestTimeout = 30 * time.Second

// NewRouter builds the chi router with the middleware stack and all routes.
func NewRouter(h *Handler, logger logging.Logger, origins []string) chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger.With("module", "http")))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(requestTimeout))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/", h.Index)

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/verify-email", h.VerifyEmail)
			r.Post("/resend-code", h.ResendCode)
			r.Post("/login", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(AuthGate(h.accounts))

			r.Get("/dashboard", h.Dashboard)
			r.Get("/users/me", h.Me)
			r.Put("/users/profile", h.UpdateProfile)
			r.Put("/users/change-password", h.ChangePassword)
			r.Delete("/users/me", h.DeleteMe)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "endpoint not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return router
}
