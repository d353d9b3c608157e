package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/rpattn/dataview/internal/app"
	"github.com/rpattn/dataview/internal/config"
	"github.com/rpattn/dataview/internal/datafilter"
	"github.com/rpattn/dataview/internal/db"
	"github.com/rpattn/dataview/internal/entityloader"
	"github.com/rpattn/dataview/internal/export"
	"github.com/rpattn/dataview/internal/httpapi"
	"github.com/rpattn/dataview/internal/ingestion"
	"github.com/rpattn/dataview/internal/middleware"
	"github.com/rpattn/dataview/internal/repository"
)

func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	config.ConfigureLogging(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	if err := db.RunMigrations(conn.Pool); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	entityRepo := repository.NewEntityRepository(conn.Pool)
	binaryFiles := entityloader.NewBinaryFileLoader(repository.NewBinaryFileRepository(conn.Pool), cfg.Cache.Size, cfg.Cache.TTL)
	definedValues := entityloader.NewDefinedValueLoader(repository.NewDefinedValueRepository(conn.Pool), cfg.Cache.Size, cfg.Cache.TTL)

	rt, err := app.Build(cfg, app.Resolvers{BinaryFiles: binaryFiles, DefinedValues: definedValues})
	if err != nil {
		logrus.Fatalf("Failed to build filters: %v", err)
	}

	logger := logrus.StandardLogger()
	api := httpapi.New(httpapi.Dependencies{
		FieldTypes: rt.FieldTypes,
		Filters:    rt.Filters,
		Attributes: rt.Attributes,
		Service:    datafilter.EntityService{},
		Entities:   entityRepo,
		Exporter:   export.NewService(entityRepo),
		Importer:   ingestion.NewService(entityRepo, rt.Attributes, rt.FieldTypes, logger),
		Logger:     logger,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      corsHandler.Handler(middleware.LoggingMiddleware(logger)(api)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithField("address", cfg.Server.Address).Info("Starting dataview server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
