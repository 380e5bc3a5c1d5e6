package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sat-prep/question-bank-service/internal/config"
	"github.com/sat-prep/question-bank-service/internal/handlers"
	"github.com/sat-prep/question-bank-service/internal/render"
	"github.com/sat-prep/question-bank-service/internal/repositories/sqlite"
	"github.com/sat-prep/question-bank-service/internal/services"
	"github.com/sat-prep/question-bank-service/internal/utils"
	"github.com/sat-prep/question-bank-service/internal/validator"
	"github.com/sat-prep/question-bank-service/pkg"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		utils.NewDefaultLogger().LogError(err, "Failed to load configuration")
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "Failed to initialize database", "path", cfg.Database.Path)
		os.Exit(1)
	}

	repo := sqlite.NewRepository(db)
	v := validator.New()
	serviceManager := services.NewServiceManager(repo, cfg, slogger, v)

	equations := render.NewEquationRenderer()
	pdfGenerator := render.NewPDFGenerator(equations, slogger, cfg.Output.WorksheetDir)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, pdfGenerator, v, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", "addr", cfg.Addr, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "Server stopped unexpectedly")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.LogError(err, "Forced shutdown")
	}
	logger.Info("Server exited")
}
