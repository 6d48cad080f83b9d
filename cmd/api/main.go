package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"community-bot-backend/internal/config"
	"community-bot-backend/internal/engine"
	"community-bot-backend/internal/faq"
	"community-bot-backend/internal/handlers"
	"community-bot-backend/internal/middleware"
	"community-bot-backend/internal/ratelimit"
	"community-bot-backend/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	gachaTable, err := engine.ParseGachaTable(cfg.GachaTable)
	if err != nil {
		logger.Fatal("invalid gacha table", zap.Error(err))
	}

	st, err := store.Open(store.SnapshotPaths{
		File:          cfg.SnapshotPath,
		Backup:        cfg.BackupPath,
		QuarantineDir: cfg.QuarantineDir,
	}, logger)
	if err != nil {
		logger.Fatal("failed to open user store", zap.Error(err))
	}

	gate := ratelimit.NewCooldown()
	eng := engine.New(st, gate, engine.Config{
		CommandCooldown:     cfg.CommandCooldown,
		LeaderboardCooldown: cfg.LeaderboardCooldown,
		DailyBase:           cfg.DailyBaseReward,
		DailyLevelBonus:     cfg.DailyLevelBonus,
		DailyExp:            cfg.DailyExp,
		DailyWait:           cfg.DailyWait,
		GachaCost:           cfg.GachaCost,
		GachaTable:          gachaTable,
		JackpotMin:          cfg.JackpotMin,
		JackpotMax:          cfg.JackpotMax,
		LeaderboardLimit:    cfg.LeaderboardLimit,
	}, logger)

	responder := faq.New()
	economyHandler := handlers.NewEconomyHandler(eng, logger)
	profileHandler := handlers.NewProfileHandler(eng, responder, logger)
	presenceHandler := handlers.NewPresenceHandler(eng, logger)
	eng.SetBroadcaster(presenceHandler)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Throttle(cfg.ThrottleRate, cfg.ThrottleBurst))

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/api/help", profileHandler.Help)
	router.GET("/api/faq", profileHandler.AskFAQ)

	api := router.Group("/api")
	api.Use(middleware.Identity())

	if cfg.RedisAddr != "" {
		window, err := ratelimit.NewRedisWindow(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, shared request limits disabled", zap.Error(err))
		} else {
			defer window.Close()
			api.Use(middleware.RequestLimit(window, logger))
		}
	}

	{
		api.POST("/daily", economyHandler.ClaimDaily)
		api.POST("/gacha", economyHandler.DrawGacha)
		api.GET("/leaderboard", economyHandler.Leaderboard)
		api.GET("/profile", profileHandler.GetProfile)
		api.PUT("/profile/status", profileHandler.SetStatus)
		api.GET("/ws", presenceHandler.HandleWebSocket)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	presenceHandler.Stop()

	// Final flush so lazily created records and any mutation whose
	// write-through failed still reach disk.
	if err := st.Flush(); err != nil {
		logger.Error("final snapshot flush failed", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Env == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if err := zapCfg.Level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, err
	}
	return zapCfg.Build()
}
