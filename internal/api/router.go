package api

import (
	"net/http"

	"github.com/fitscan/fitscan-backend/internal/api/handlers"
	"github.com/fitscan/fitscan-backend/internal/api/middleware"
	"github.com/fitscan/fitscan-backend/internal/config"
	"github.com/fitscan/fitscan-backend/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, services.Entitlement, cfg)
	billingHandler := handlers.NewBillingHandler(services.Billing, cfg)
	trainerHandler := handlers.NewTrainerHandler(services.Trainer)
	profileHandler := handlers.NewProfileHandler(services.Profile)
	usageHandler := handlers.NewUsageHandler(services.Usage, services.Entitlement)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/request-code", authHandler.RequestCode)
			r.Post("/verify-code", authHandler.VerifyCode)
			r.Post("/logout", authHandler.Logout)
		})

		// Session introspection; anonymous callers get a null user
		r.Get("/me", authHandler.Me)

		// Billing: the webhook is signed by Stripe, links are public
		r.Route("/billing", func(r chi.Router) {
			r.Post("/webhook", billingHandler.Webhook)
			r.Get("/checkout-links", billingHandler.CheckoutLinks)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.GetProfile)
				r.Put("/", profileHandler.UpdateProfile)
			})

			r.Post("/scan", trainerHandler.Scan)
			r.Get("/scans", trainerHandler.ScanHistory)

			r.Post("/workouts/generate", trainerHandler.GenerateWorkout)
			r.Get("/workouts", trainerHandler.WorkoutHistory)

			r.Get("/usage", usageHandler.Summary)
		})
	})

	return r
}
