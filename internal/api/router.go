package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/cmdstash/cmdstash/internal/api/handler"
	"github.com/cmdstash/cmdstash/internal/api/middleware"
	"github.com/cmdstash/cmdstash/internal/auth"
	"github.com/cmdstash/cmdstash/internal/command"
	"github.com/cmdstash/cmdstash/internal/devicecode"
	"github.com/cmdstash/cmdstash/internal/learned"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	AuthService *auth.Service
	Commands    command.Repository
	Learned     learned.Repository
	Broker      *devicecode.Broker
	DBPinger    handler.DBPinger
	Version     string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	authHandler := handler.NewAuthHandler(deps.AuthService)
	commandHandler := handler.NewCommandHandler(deps.Commands)
	learnedHandler := handler.NewLearnedHandler(deps.Learned, deps.Commands)
	deviceCodeHandler := handler.NewDeviceCodeHandler(deps.Broker)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(deps.AuthService))

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/exchange-token", deviceCodeHandler.Exchange)

		// Optional identity: anonymous callers get the public-only view.
		r.Get("/commands", commandHandler.List)
		r.Post("/suggest", commandHandler.Suggest)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireToken)

			r.Post("/commands", commandHandler.Create)
			r.Delete("/commands/{id}", commandHandler.Delete)
			r.Post("/learn", learnedHandler.Learn)
			r.Get("/learned", learnedHandler.List)
			r.Post("/learned/{id}/promote", learnedHandler.Promote)
			r.Post("/device-codes", deviceCodeHandler.Issue)
		})
	})

	return r
}
