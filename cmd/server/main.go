package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fitscan/fitscan-backend/internal/ai"
	"github.com/fitscan/fitscan-backend/internal/api"
	"github.com/fitscan/fitscan-backend/internal/config"
	"github.com/fitscan/fitscan-backend/internal/mail"
	"github.com/fitscan/fitscan-backend/internal/repository/postgres"
	"github.com/fitscan/fitscan-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)
	tx := postgres.NewTransactor(db)

	// Mail collaborator; codes go to the log when no API key is set
	var mailer mail.Mailer
	if cfg.ResendAPIKey != "" {
		mailer = mail.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom)
	} else {
		log.Println("RESEND_API_KEY not set, login codes will be logged")
		mailer = mail.NewLogMailer()
	}

	// AI collaborator
	generator := ai.NewClient(cfg.GeminiAPIKey)

	// Initialize services
	services := service.NewServices(repos, tx, mailer, generator, cfg)

	// Initialize router
	router := api.NewRouter(services, cfg)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
