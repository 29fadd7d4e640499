package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"hatstore-backend/internal/config"
	"hatstore-backend/internal/handlers"
	"hatstore-backend/internal/logging"
	"hatstore-backend/internal/middleware"
	"hatstore-backend/internal/services"
)

func main() {
	// .env is optional; plain environment variables work on their own.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fallback := logging.NewDefault()
		fallback.Fatal().Err(err).Msg("Failed to load config")
	}

	logger := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	if !cfg.BotConfigured() {
		logger.Warn().Msg("TELEGRAM_BOT_TOKEN is missing")
	}
	if !cfg.ChannelConfigured() {
		logger.Warn().Msg("CHANNEL_ID is missing")
	}

	telegram := services.NewTelegramService(cfg, logger)
	mapper := services.NewSymbolMapper(services.NewFileMappingSource(cfg.MappingFile), logger)
	sessionStore := services.NewFileSessionStore(cfg.SessionsFile)
	lastSpinStore := services.NewFileLastSpinStore(cfg.LastSpinFile)

	authService := services.NewAuthService(cfg.BotToken, logger)
	jwtService := services.NewJWTService(cfg)

	var history *services.HistoryService
	if cfg.RedisAddr != "" {
		history, err = services.NewHistoryService(cfg)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, spin history disabled")
			history = nil
		} else {
			defer history.Close()
		}
	}

	wsHandler := handlers.NewWebSocketHandler(logger)

	spinService := services.NewSpinService(telegram, mapper, lastSpinStore, cfg.ChannelID, logger).
		WithHistory(history).
		WithBroadcaster(wsHandler)

	authHandler := handlers.NewAuthHandler(sessionStore, authService, jwtService, logger)
	spinHandler := handlers.NewSpinHandler(cfg, spinService, telegram, history, logger)
	webhookHandler := handlers.NewWebhookHandler(telegram, spinService, cfg.WebhookSecret, logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.Use(middleware.Identify(authService, jwtService))

	router.GET("/status", spinHandler.Status)

	api := router.Group("/api")
	{
		api.POST("/auth/telegram", authHandler.Authenticate)
		api.POST("/send-slot-dice", spinHandler.SendSlotDice)
		api.POST("/telegram-webhook", webhookHandler.HandleUpdate)
		api.GET("/spins", spinHandler.GetSpins)
		api.GET("/users/me", middleware.RequireAuth(), authHandler.Me)
		api.GET("/ws", middleware.RequireAuth(), wsHandler.HandleWebSocket)
	}

	slots := router.Group("/slots")
	{
		slots.POST("/create-invoice", spinHandler.CreateInvoice)
		slots.POST("/spin", spinHandler.Spin)
		slots.GET("/history", spinHandler.History)
	}

	port := cfg.Port
	if port == "" {
		port = "5174"
	}

	logger.Info().Str("port", port).Msg("Server starting")
	if err := router.Run(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
