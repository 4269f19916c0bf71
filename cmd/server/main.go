package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"contractocr/internal/config"
	"contractocr/internal/handler"
	"contractocr/internal/ocr"
	"contractocr/internal/repository/postgres"
	"contractocr/internal/router"
	"contractocr/internal/service"
	s3storage "contractocr/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	extractionRepo := postgres.NewExtractionRepo(db)
	fileRepo := postgres.NewFileMetaRepo(db)

	// Initialize collaborators
	store, err := s3storage.NewObjectStore(ctx, &cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}
	textExtractor := ocr.NewDocconvExtractor()

	// Initialize services
	extractionSvc := service.NewExtractionService(
		extractionRepo, fileRepo, store, textExtractor, &cfg.S3, &cfg.Upload)

	// Initialize handlers
	extractionH := handler.NewExtractionHandler(extractionSvc)
	healthH := handler.NewHealthHandler(db)

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router.Setup(cfg.CORS.AllowedOrigins, extractionH, healthH),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	// In-flight extractions get a grace period to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	log.Println("Server stopped")
	return nil
}
