package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/MuhammadShuhail-00/ecommerce-automation-backend/internal/config"
	"github.com/MuhammadShuhail-00/ecommerce-automation-backend/internal/handler"
	"github.com/MuhammadShuhail-00/ecommerce-automation-backend/internal/repository"
	"github.com/MuhammadShuhail-00/ecommerce-automation-backend/internal/scraper"
	"github.com/MuhammadShuhail-00/ecommerce-automation-backend/internal/service"
	"github.com/MuhammadShuhail-00/ecommerce-automation-backend/internal/worker"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := sqlx.Connect("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("database connected")

	productRepo := repository.NewProductRepository(db)
	jobRepo := repository.NewJobRepository(db)
	userRepo := repository.NewUserRepository(db)

	fetcher := scraper.New(scraper.Config{
		BaseURL:   cfg.ScraperBaseURL,
		Pages:     cfg.ScraperPages,
		Timeout:   cfg.ScraperTimeout,
		UserAgent: cfg.ScraperUserAgent,
	})

	pool := worker.NewPool(cfg.JobQueueSize, cfg.WorkerCount)

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	syncSvc := service.NewSyncService(productRepo)
	automationSvc := service.NewAutomationService(jobRepo, fetcher, syncSvc, pool)
	insightSvc := service.NewInsightService()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	pool.Start(workerCtx, automationSvc.Execute)
	slog.Info("job workers started", "count", cfg.WorkerCount)

	authHandler := handler.NewAuthHandler(authSvc)
	productHandler := handler.NewProductHandler(productRepo)
	automationHandler := handler.NewAutomationHandler(automationSvc)
	insightHandler := handler.NewInsightHandler(insightSvc)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Validator = handler.NewAppValidator()

	e.Use(middleware.RequestID())
	e.Use(handler.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentType},
		ExposeHeaders:    []string{echo.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/me", authHandler.Me, handler.JWTAuth(authSvc))

	api.GET("/products", productHandler.List)
	api.GET("/products/:id", productHandler.Get)
	api.POST("/insights", insightHandler.Analyze)
	api.GET("/automation/jobs", automationHandler.ListJobs)

	protected := api.Group("", handler.JWTAuth(authSvc))
	protected.POST("/products", productHandler.Create)
	protected.PUT("/products/:id", productHandler.Update)
	protected.PATCH("/products/:id", productHandler.Update)
	protected.DELETE("/products/:id", productHandler.Delete)
	protected.POST("/automation/scrape-products", automationHandler.TriggerScrape)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- e.Start(fmt.Sprintf(":%d", cfg.Port))
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	stopWorkers()
	pool.Wait()

	slog.Info("server stopped gracefully")
	return nil
}
