package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	_ "github.com/johnquangdev/meeting-bot/docs"
	"github.com/johnquangdev/meeting-bot/internal/adapter/handler"
	"github.com/johnquangdev/meeting-bot/internal/domain/gateways"
	"github.com/johnquangdev/meeting-bot/internal/infrastructure/browser"
	"github.com/johnquangdev/meeting-bot/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-bot/internal/infrastructure/events"
	"github.com/johnquangdev/meeting-bot/internal/infrastructure/external/livekit"
	"github.com/johnquangdev/meeting-bot/internal/infrastructure/joinstrategy"
	"github.com/johnquangdev/meeting-bot/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-bot/internal/usecase/bot"
	pkgai "github.com/johnquangdev/meeting-bot/pkg/ai"
	"github.com/johnquangdev/meeting-bot/pkg/config"
	httpmw "github.com/johnquangdev/meeting-bot/pkg/middleware"
	pkgvalidator "github.com/johnquangdev/meeting-bot/pkg/validator"
)

// @title           Meeting Bot API
// @version         1.0
// @description     Sends a headless browser bot into online meetings and returns live transcripts.
// @BasePath        /

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var logger *zap.Logger
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(httpmw.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, httpmw.HeaderRequestID},
	}))

	log.Println("🔧 Initializing dependencies...")
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	// Browser and join strategies
	log.Println("🌐 Initializing browser launcher...")
	launcher := browser.NewRodLauncher(cfg.Browser, logger)

	resolver := joinstrategy.NewResolver(joinstrategy.NewGoogleMeetStrategy(logger))
	if cfg.LiveKit.MeetHost != "" {
		log.Println("🎥 Initializing LiveKit join strategy...")
		lkClient := livekit.NewClient(cfg.LiveKit.URL, cfg.LiveKit.APIKey, cfg.LiveKit.APISecret)
		resolver.Register(cfg.LiveKit.MeetHost, joinstrategy.NewLiveKitStrategy(lkClient, cfg.LiveKit.MeetHost, logger))
		log.Printf("✅ LiveKit meetings on %s routed through %s", cfg.LiveKit.MeetHost, cfg.LiveKit.URL)
	}

	// Transcription backend
	log.Println("🤖 Initializing AI components...")
	var (
		transcriber gateways.Transcriber
		tokens      gateways.TokenSource
	)
	switch cfg.Transcription.Provider {
	case config.ProviderDeepgram:
		transcriber = pkgai.NewDeepgramTranscriber(cfg.Transcription.Deepgram, cfg.Transcription.SampleRate, logger)
		tokens = pkgai.StaticToken(cfg.Transcription.Deepgram.APIKey)
	case config.ProviderAssemblyAI:
		transcriber = pkgai.NewAssemblyAITranscriber(cfg.Transcription.SampleRate, logger)
		tokens = pkgai.NewTokenSource(&cfg.Transcription.Assembly)
	default:
		log.Fatalf("Unknown transcription provider: %s", cfg.Transcription.Provider)
	}
	log.Printf("✅ Transcription provider: %s", transcriber.Name())

	var summarizer gateways.Summarizer = pkgai.PlaceholderSummarizer{}
	if cfg.Summary.Provider == config.SummaryGroq {
		summarizer = pkgai.NewGroqClient(&cfg.Summary.Groq)
		log.Println("✅ Summaries via Groq")
	}

	deps := bot.Dependencies{
		Launcher:    launcher,
		Resolver:    resolver,
		Transcriber: transcriber,
		Tokens:      tokens,
		Summarizer:  summarizer,
		Publisher:   events.NoopPublisher{},
	}

	// Optional object storage for join failure screenshots
	if cfg.StorageEnabled() {
		log.Println("📦 Connecting to object storage...")
		store, err := storage.NewMinIOClient(startCtx, &cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to connect to object storage: %v", err)
		}
		deps.Artifacts = store
	}

	// Optional Redis lifecycle events
	if cfg.RedisEnabled() {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(startCtx, &cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		deps.Publisher = events.NewRedisPublisher(redisClient, cfg.Redis.Channel)
	}

	log.Println("🤝 Initializing bot service...")
	service := bot.NewService(bot.NewRegistry(), deps, bot.Options{
		JoinTimeout:        cfg.Join.Timeout,
		NavigationTimeout:  cfg.Browser.NavigationTimeout,
		BotName:            cfg.Join.BotName,
		SampleRate:         cfg.Transcription.SampleRate,
		FailureScreenshots: cfg.Join.FailureScreenshots,
	}, logger)

	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, handler.NewBot(service, logger))
	router.Setup(e)

	// Start server
	go func() {
		addr := cfg.GetServerAddr()
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := service.Shutdown(ctx); err != nil {
		logger.Error("failed to close all sessions", zap.Error(err))
	}
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
