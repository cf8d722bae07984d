package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docgen/backend/internal/application/docgen"
	"github.com/docgen/backend/internal/infrastructure/config"
	"github.com/docgen/backend/internal/infrastructure/docx"
	"github.com/docgen/backend/internal/infrastructure/logger"
	"github.com/docgen/backend/internal/infrastructure/pdf"
	"github.com/docgen/backend/internal/infrastructure/persistence"
	"github.com/docgen/backend/internal/infrastructure/render"
	"github.com/docgen/backend/internal/interfaces/http/handler"
	"github.com/docgen/backend/internal/interfaces/http/middleware"
	"github.com/docgen/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// Load .env if present; real environment wins
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(&cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting document generation backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLogLevel := gormlogger.Warn
	if cfg.Log.Level == "debug" {
		gormLogLevel = gormlogger.Info
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.NewGormLogger(log, gormLogLevel))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if err := persistence.AutoMigrate(db.DB); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}

	// Repositories and ports
	dataPort := persistence.NewGormDataPort(db.DB)
	settingsStore := persistence.NewGormSettingsStore(db.DB)
	generatedDocRepo := persistence.NewGormGeneratedDocumentRepository(db.DB)

	// PDF converter (shared Chrome allocator)
	converter, err := pdf.NewChromedpConverter(&pdf.ChromedpConfig{
		DefaultTimeout: cfg.PDF.Timeout,
		RemoteURL:      cfg.PDF.RemoteURL,
		NoSandbox:      cfg.PDF.NoSandbox,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to initialise PDF converter", zap.Error(err))
	}
	defer func() {
		if err := converter.Close(); err != nil {
			log.Error("Error closing PDF converter", zap.Error(err))
		}
	}()

	// Application services
	numbering := docgen.NewNumberingService(settingsStore, log)
	builder := docgen.NewContextBuilder(dataPort, numbering, cfg.DocGen, log)
	persister := docgen.NewArtifactPersister(dataPort, generatedDocRepo, cfg.DocGen.ClientsDir, log)
	invoiceService := docgen.NewInvoiceService(
		builder,
		render.NewEngine(),
		converter,
		docx.NewPopulator(log),
		persister,
		cfg.DocGen.TemplatesDir,
		log,
	)

	// HTTP handlers
	documentHandler := handler.NewDocumentHandler(invoiceService, generatedDocRepo, log)
	systemHandler := handler.NewSystemHandler(db)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORS(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	router.NewRouter(engine).
		Register(systemHandler).
		Register(documentHandler).
		Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
