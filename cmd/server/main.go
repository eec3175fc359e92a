package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"storybook-server/internal/ai"
	"storybook-server/internal/config"
	"storybook-server/internal/handler"
	"storybook-server/internal/logger"
	"storybook-server/internal/middleware"
	"storybook-server/internal/service"
	"storybook-server/internal/session"
)

func main() {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	// --- Configuration ---
	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	log, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
		Env:      cfg.Env,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)
	zap.L().Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("session_backend", cfg.SessionBackend),
		zap.Bool("openai_key_set", cfg.OpenAIAPIKey != ""),
		zap.Bool("aimlapi_key_set", cfg.AIMLAPIKey != ""),
	)
	if cfg.AudioPollInterval*time.Duration(cfg.AudioPollAttempts) >= cfg.ServerWriteTimeout {
		zap.L().Warn("SERVER_WRITE_TIMEOUT is shorter than the audio polling budget",
			zap.Duration("write_timeout", cfg.ServerWriteTimeout),
			zap.Duration("poll_budget", cfg.AudioPollInterval*time.Duration(cfg.AudioPollAttempts)),
		)
	}

	// --- External Connections ---
	var redisClient *redis.Client
	if cfg.SessionBackend == config.SessionBackendRedis {
		redisClient, err = setupRedis(cfg)
		if err != nil {
			zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		zap.L().Info("Connected to Redis")
	}

	// --- Dependency Injection ---
	var store session.Store
	if redisClient != nil {
		store = session.NewRedisStore(redisClient, cfg.SessionTTL, log)
	} else {
		store = session.NewMemoryStore(cfg.SessionTTL)
	}

	openAICfg := ai.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL, Timeout: cfg.AITimeout}
	chatClient := ai.NewChatClient(openAICfg, cfg.ChatModel, cfg.ChatMaxTokens, cfg.AIJSONMode, log)
	imageClient := ai.NewImageClient(openAICfg, cfg.ImageModel, cfg.ImageSize, log)
	audioClient := ai.NewAudioClient(ai.AudioConfig{
		APIKey:       cfg.AIMLAPIKey,
		URL:          cfg.AudioAPIURL,
		Model:        cfg.AudioModel,
		Steps:        cfg.AudioSteps,
		PollInterval: cfg.AudioPollInterval,
		PollAttempts: cfg.AudioPollAttempts,
		Timeout:      cfg.AITimeout,
	}, log)

	storybookSvc := service.NewStorybookService(chatClient, imageClient, audioClient, store,
		service.MusicDefaults{Prompt: cfg.MusicPrompt, DurationSeconds: cfg.MusicDurationSeconds}, log)
	storybookHandler := handler.NewStorybookHandler(storybookSvc, log)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middleware.GinZapLogger(log))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.GetAllowedOrigins()
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:" + cfg.ServerPort}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	if cfg.StaticDir != "" {
		router.StaticFile("/", filepath.Join(cfg.StaticDir, "index.html"))
		router.Static("/static", cfg.StaticDir)
		zap.L().Info("Serving frontend", zap.String("dir", cfg.StaticDir))
	}

	api := router.Group("/")
	api.Use(middleware.Session(middleware.SessionConfig{
		CookieName: cfg.SessionCookieName,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.Env == "production",
	}))
	if cfg.RateLimitPerMinute > 0 {
		api.Use(newRateLimiter(cfg, redisClient))
		zap.L().Info("Rate limiter enabled", zap.Uint("per_minute", cfg.RateLimitPerMinute))
	}
	storybookHandler.RegisterRoutes(api)

	// --- Start HTTP Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exiting")
}

// newRateLimiter limits generation requests per client IP. It shares counters
// through Redis when the redis session backend is in use.
func newRateLimiter(cfg *config.Config, redisClient *redis.Client) gin.HandlerFunc {
	var store rateli.Store
	if redisClient != nil {
		store = rateli.RedisStore(&rateli.RedisOptions{
			RedisClient: redisClient,
			Rate:        time.Minute,
			Limit:       cfg.RateLimitPerMinute,
		})
	} else {
		store = rateli.InMemoryStore(&rateli.InMemoryOptions{
			Rate:  time.Minute,
			Limit: cfg.RateLimitPerMinute,
		})
	}

	return rateli.RateLimiter(store, &rateli.Options{
		ErrorHandler: func(c *gin.Context, info rateli.Info) {
			zap.L().Warn("Rate limit exceeded",
				zap.String("clientIP", c.ClientIP()),
				zap.Time("resetTime", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Try again in " + time.Until(info.ResetTime).Round(time.Second).String(),
			})
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})
}

// setupRedis connects to Redis, retrying while the server starts up.
func setupRedis(cfg *config.Config) (*redis.Client, error) {
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	zap.L().Info("Redis connection options configured", zap.String("address", redisOpts.Addr), zap.Int("db", redisOpts.DB))

	const (
		maxRetries = 20
		retryDelay = 3 * time.Second
	)
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		client := redis.NewClient(redisOpts)

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(pingCtx).Err()
		pingCancel()
		if err == nil {
			zap.L().Info("Successfully connected and pinged Redis", zap.Int("attempt", attempt))
			return client, nil
		}

		client.Close()
		lastErr = fmt.Errorf("unable to ping redis (attempt %d/%d): %w", attempt, maxRetries, err)
		zap.L().Warn("Redis ping failed, retrying...", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < maxRetries {
			time.Sleep(retryDelay)
		}
	}
	return nil, lastErr
}
