package main

import (
	"log"
	"net/http"
	"time"

	"listky/docs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"listky/internal/auth"
	"listky/internal/cache"
	"listky/internal/config"
	"listky/internal/db"
	"listky/internal/handler"
	"listky/internal/model"
	"listky/internal/privacy"
	"listky/internal/repository"
	"listky/internal/router"
	"listky/internal/service"
)

// @title listky API
// @version 1.0
// @description Minimalist list sharing: one-word usernames, 6-digit PINs, privacy-preserving view tracking.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	// Run migrations for all models. The binary collation keeps usernames and
	// slugs case-sensitive on MySQL.
	if err := gormDB.Set("gorm:table_options", "COLLATE=utf8mb4_bin").AutoMigrate(
		&model.Account{},
		&model.List{},
		&model.ViewEvent{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(gormDB)
	listRepo := repository.NewListRepository(gormDB)
	viewRepo := repository.NewViewRepository(gormDB)

	// Initialize auth components
	ipHasher := privacy.NewIPHasher(cfg.IPSalt)
	jwtService := auth.NewJWTService(cfg.SessionSecret)
	sessionStore := auth.NewSessionStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(accountRepo, jwtService, sessionStore, ipHasher)
	listService := service.NewListService(listRepo, accountRepo)
	viewService := service.NewViewService(viewRepo, ipHasher)
	trendingService := service.NewTrendingService(viewRepo, cacheClient,
		cfg.TrendingLimit, cfg.TrendingWindow, time.Duration(cfg.TrendingCacheTTL)*time.Second)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	listHandler := handler.NewListHandler(listService, viewService, cfg.TrendingWindow)
	trendingHandler := handler.NewTrendingHandler(trendingService)

	// Register routes
	router.Register(
		e,
		cfg,
		cacheClient,
		jwtService,
		sessionStore,
		authHandler,
		listHandler,
		trendingHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
