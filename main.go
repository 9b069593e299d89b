package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isandov/barrio-admin-be/internal/api"
	"github.com/isandov/barrio-admin-be/internal/auth"
	"github.com/isandov/barrio-admin-be/internal/config"
	"github.com/isandov/barrio-admin-be/internal/database"
	"github.com/isandov/barrio-admin-be/internal/logger"
	"github.com/isandov/barrio-admin-be/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.AppEnv)
	auth.SetSigningKey(cfg.JWTSecret)

	// Set up database. One connection pool is shared by every service and
	// released on shutdown.
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up services
	eventService := services.NewEventService(db)
	userService := services.NewUserService(db, eventService)
	cityService := services.NewCityService(db, eventService)
	neighborhoodService := services.NewNeighborhoodService(db, eventService)
	authService := services.NewAuthService(userService, eventService)

	// Seed the root account. The lookup precedes the create, so restarts
	// never produce a duplicate.
	if err := authService.Bootstrap(cfg.RootUsername, cfg.RootMail, cfg.RootPassword); err != nil {
		log.Error().Err(err).Msg("Root user bootstrap failed")
	}

	// Set up router
	router := api.NewRouter(authService, userService, cityService, neighborhoodService, eventService)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
