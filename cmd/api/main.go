package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/platformwatch/evidence/internal/config"
	"github.com/platformwatch/evidence/internal/evidence"
	"github.com/platformwatch/evidence/internal/report"
	"github.com/platformwatch/evidence/internal/server"
	"github.com/platformwatch/evidence/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer dbPool.Close()

	minioClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("connect minio: %v", err)
	}

	if err := storage.EnsureBucket(ctx, minioClient, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
		log.Fatalf("ensure bucket: %v", err)
	}

	limits := evidence.DefaultLimits()
	limits.MaxFileSize = cfg.Upload.MaxFileSize

	objectStore := evidence.NewMinIOStore(minioClient, cfg.MinIO.Bucket)
	evidenceRepo := evidence.NewRepository(dbPool)
	evidenceService := evidence.NewService(objectStore, evidenceRepo, limits, cfg.Upload.Folder, cfg.Upload.PresignTTL)

	reportRepo := report.NewRepository(dbPool)
	reportService := report.NewService(reportRepo)

	router := server.NewRouter(server.Dependencies{
		Config:          cfg,
		DB:              dbPool,
		ObjectStore:     minioClient,
		EvidenceService: evidenceService,
		ReportService:   reportService,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("evidence API listening on %s", cfg.Server.Address())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Println("shutting down gracefully...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
