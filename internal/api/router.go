package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isandov/barrio-admin-be/internal/api/handlers"
	"github.com/isandov/barrio-admin-be/internal/auth"
	"github.com/isandov/barrio-admin-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	authService services.AuthServiceProvider,
	userService services.UserServiceProvider,
	cityService services.CityServiceProvider,
	neighborhoodService services.NeighborhoodServiceProvider,
	eventService services.EventServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for the admin frontend
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService)
	cityHandler := handlers.NewCityHandler(cityService)
	neighborhoodHandler := handlers.NewNeighborhoodHandler(neighborhoodService)
	eventHandler := handlers.NewEventHandler(eventService)
	healthHandler := handlers.NewHealthHandler()

	r.Get("/health", healthHandler.Check)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/check", authHandler.Check)
		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware())
			r.Post("/register", authHandler.Register)
			r.Get("/info", authHandler.Info)
		})
	})

	r.Route("/city", func(r chi.Router) {
		r.Get("/", cityHandler.List)
		r.Get("/{id}", cityHandler.Get)
		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware())
			r.Post("/", cityHandler.Create)
			r.Patch("/{id}", cityHandler.Update)
			r.Delete("/{id}", cityHandler.Delete)
		})
	})

	r.Route("/neighborhood", func(r chi.Router) {
		r.Get("/", neighborhoodHandler.List)
		r.Get("/{id}", neighborhoodHandler.Get)
		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware())
			r.Post("/", neighborhoodHandler.Create)
			r.Patch("/{id}", neighborhoodHandler.Update)
			r.Delete("/{id}", neighborhoodHandler.Delete)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(auth.JWTMiddleware())
		r.Get("/", userHandler.List)
		r.Get("/{id}", userHandler.Get)
		r.Patch("/{id}", userHandler.Update)
		r.Delete("/{id}", userHandler.Delete)
	})

	r.Route("/events", func(r chi.Router) {
		r.Use(auth.JWTMiddleware())
		r.Get("/", eventHandler.GetRecent)
	})

	return r
}
