package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skywatch/internal/clients"
	"skywatch/internal/config"
	"skywatch/internal/handlers"
	"skywatch/internal/middleware"
	"skywatch/internal/repository"
	"skywatch/internal/service"
	"skywatch/pkg/database"
	"skywatch/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("=== Skywatch Weather Advisory Backend Starting ===")

	cfg := config.Load()

	db, err := database.Connect(database.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.DBName,
		SSLMode:  cfg.DB.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	redisClient, err := redis.Connect(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Repositories
	weatherRepo := repository.NewWeatherRepository(db)
	adviceRepo := repository.NewAdviceRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	// External clients
	weatherClient := clients.NewWeatherClient(clients.WeatherConfig{
		APIKey:  cfg.Weather.APIKey,
		APIURL:  cfg.Weather.APIURL,
		GeoURL:  cfg.Weather.GeoURL,
		Units:   cfg.Weather.Units,
		Lang:    cfg.Weather.Lang,
		Timeout: cfg.Weather.Timeout,
	})
	deepSeekClient := clients.NewDeepSeekClient(clients.DeepSeekConfig{
		APIKey:  cfg.DeepSeek.APIKey,
		APIURL:  cfg.DeepSeek.APIURL,
		Model:   cfg.DeepSeek.Model,
		Timeout: cfg.DeepSeek.Timeout,
	})

	// Services
	weatherService := service.NewWeatherService(weatherRepo, cacheRepo, weatherClient)
	adviceService := service.NewAdviceService(deepSeekClient, adviceRepo, weatherRepo, cacheRepo)
	historyService := service.NewHistoryService(weatherRepo, adviceRepo, cacheRepo, service.HistoryConfig{
		DefaultLimit:    cfg.History.DefaultLimit,
		DefaultTimezone: cfg.History.DefaultTimezone,
		ExportDir:       cfg.Export.OutputDir,
	})

	// Handlers
	weatherHandler := handlers.NewWeatherHandler(weatherService)
	adviceHandler := handlers.NewAdviceHandler(adviceService)
	historyHandler := handlers.NewHistoryHandler(historyService)

	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("Running in DEBUG mode")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.RequestIDMiddleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", cfg.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if !cfg.App.Debug {
		limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
		r.Use(middleware.RateLimitMiddleware(limiter))
		log.Printf("Rate limiting enabled: %d req/sec, burst: %d",
			cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	api := r.Group("/api/v1")

	// Weather ingestion + location naming
	api.POST("/weather", weatherHandler.GetWeather)
	api.POST("/weather/latest", weatherHandler.GetLatestWeather)
	api.POST("/location", weatherHandler.GetLocationName)

	// Advisory generation. Per-IP limited: each call can cost an LLM call.
	adviceLimiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.AdviceRPS), cfg.RateLimit.AdviceBurst)
	api.POST("/advice", middleware.IPRateLimitMiddleware(adviceLimiter), adviceHandler.GetAdvice)
	api.POST("/advice/check", adviceHandler.CheckNeedUpdate)

	// History reconstruction + export
	api.POST("/history", historyHandler.GetHistory)
	api.GET("/history/export", historyHandler.ExportHistory)

	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services": gin.H{
				"database":     "connected",
				"redis":        "connected",
				"weather_api":  "enabled",
				"deepseek_api": "enabled",
			},
		})
	})

	api.GET("/system/stats", func(c *gin.Context) {
		ctx := c.Request.Context()

		redisStats, _ := redis.GetStats(redisClient)
		weatherCount, _ := weatherRepo.Count(ctx)
		adviceCount, _ := adviceRepo.Count(ctx)

		c.JSON(200, gin.H{
			"database": gin.H{
				"weather_records": weatherCount,
				"advice_records":  adviceCount,
			},
			"redis": redisStats,
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%s", cfg.App.Port)
		log.Printf("API available at http://localhost:%s/api/v1", cfg.App.Port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start:", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
