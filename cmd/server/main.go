package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/graphrun/graphrun/cmd/server/config"
	"github.com/graphrun/graphrun/internal/infrastructure/cache"
	"github.com/graphrun/graphrun/internal/infrastructure/executors"
	"github.com/graphrun/graphrun/internal/infrastructure/http/handlers"
	"github.com/graphrun/graphrun/internal/infrastructure/http/middleware"
	"github.com/graphrun/graphrun/internal/infrastructure/messaging/nats"
	"github.com/graphrun/graphrun/internal/infrastructure/monitoring"
	"github.com/graphrun/graphrun/internal/infrastructure/persistence/outputs"
	"github.com/graphrun/graphrun/internal/infrastructure/persistence/postgres"
	"github.com/graphrun/graphrun/internal/infrastructure/providers"
	"github.com/graphrun/graphrun/internal/infrastructure/runner"
	"github.com/graphrun/graphrun/internal/infrastructure/streaming"
	"github.com/graphrun/graphrun/internal/pkg/eventbus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	fmt.Println("graphrun server")
	fmt.Printf("Server: %s\n", cfg.ServerAddr())
	fmt.Printf("NATS:   %s\n", cfg.NATS.URL)

	ctx := context.Background()

	// Text/image provider registries, lazily constructing the configured
	// backends on first use.
	textRegistry := providers.NewTextRegistry()
	textRegistry.Register("anthropic", func() (providers.TextProvider, error) {
		return providers.NewAnthropicProvider(cfg.Providers.AnthropicAPIKey), nil
	})
	textRegistry.Register("openai", func() (providers.TextProvider, error) {
		return providers.NewOpenAIProvider(cfg.Providers.OpenAIAPIKey), nil
	})
	// "claude" and "mistral" are the provider ids the per-node-type model
	// defaults resolve to; there is no dedicated Mistral SDK in the
	// dependency set, so "mistral" runs against the OpenAI-compatible chat
	// client pointed at a Mistral-hosted, OpenAI-API-compatible endpoint.
	textRegistry.Register("claude", func() (providers.TextProvider, error) {
		return providers.NewAnthropicProvider(cfg.Providers.AnthropicAPIKey), nil
	})
	textRegistry.Register("mistral", func() (providers.TextProvider, error) {
		return providers.NewOpenAIProvider(cfg.Providers.MistralAPIKey), nil
	})

	imageRegistry := providers.NewImageRegistry()
	imageRegistry.Register("openai", func() (providers.ImageProvider, error) {
		return providers.NewHTTPImageProvider(
			cfg.Providers.ImageBaseURL,
			cfg.Providers.ImageAPIKey,
			providers.WithPolling(cfg.Poll.Interval, cfg.Poll.Attempts),
		), nil
	})

	// Executor registry wired against the provider registries.
	executorRegistry := executors.NewMapRegistry()
	executors.RegisterDefaults(executorRegistry, textRegistry.Get, imageRegistry.Get)

	// Event bus, backing both the HTTP-visible lifecycle events and the
	// NATS streaming bridge.
	eventBus := eventbus.New()

	// NATS publisher/subscriber for the run event channel.
	wmLogger := watermill.NewStdLogger(false, false)
	publisher, err := nats.NewPublisher(cfg.NATS.URL, wmLogger)
	if err != nil {
		log.Fatalf("failed to create NATS publisher: %v", err)
	}
	defer publisher.Close()

	subscriber, err := nats.NewSubscriber(cfg.NATS.URL, "graphrun-server", wmLogger)
	if err != nil {
		log.Fatalf("failed to create NATS subscriber: %v", err)
	}
	defer subscriber.Close()

	bridge := streaming.NewBridge(eventBus, publisher)
	bridge.Start()
	fmt.Println("NATS publisher/subscriber connected, streaming bridge started")

	// Runner, wired with optional Redis model-resolution caching and
	// optional Postgres cached-output persistence.
	graphRunner := runner.New(executorRegistry, eventBus)

	if redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Printf("model-resolution cache disabled (redis unavailable: %v)", err)
	} else {
		graphRunner.ModelCache = cache.NewModelCache(redisCache, 15*time.Minute)
		fmt.Println("model-resolution cache connected")
	}

	if pool, err := postgres.NewPool(ctx, postgres.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
	}); err != nil {
		log.Printf("cached-output persistence disabled (database unavailable: %v)", err)
	} else {
		defer postgres.Close(pool)
		graphRunner.Outputs = outputs.NewStore(pool)
		fmt.Println("cached-output store connected")
	}

	manager := runner.NewManager(graphRunner, eventBus)

	// Prometheus metrics and staleness sweep over in-flight runs.
	metrics := monitoring.NewMetrics("graphrun")

	sweeper := monitoring.NewSweeper("graphrun", manager, 10*time.Minute)
	if err := sweeper.Start("*/1 * * * *"); err != nil {
		log.Printf("sweeper not started: %v", err)
	}

	if cfg.Tracing.Enabled {
		shutdownTracing, err := monitoring.NewTracerProvider(ctx, cfg.Tracing.Endpoint)
		if err != nil {
			log.Printf("tracing disabled: %v", err)
		} else {
			defer shutdownTracing(ctx)
			fmt.Println("tracing enabled, exporting to", cfg.Tracing.Endpoint)
		}
	}

	// HTTP handlers.
	runHandler := handlers.NewRunHandler(manager)
	streamHandler := handlers.NewStreamHandler(subscriber)
	systemHandler := handlers.NewSystemHandler(GetVersion().ShortVersion())

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler()

	e.Use(otelecho.Middleware("graphrun-server"))
	e.Use(middleware.Logger())
	e.Use(middleware.Metrics(metrics))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.JWT(middleware.AuthConfig{
		JWTSecret: cfg.Auth.Secret,
		Enabled:   cfg.Auth.Enabled,
		SkipPaths: []string{"/ok", "/info", "/metrics"},
	}))

	e.GET("/ok", systemHandler.Ok)
	e.GET("/info", systemHandler.Info)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.POST("/runs", runHandler.Submit, middleware.RunRateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	api.GET("/runs/:run_id/stream", streamHandler.Stream)

	go func() {
		fmt.Printf("listening on %s\n", cfg.ServerAddr())
		if err := e.Start(cfg.ServerAddr()); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	fmt.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sweeper.Stop(shutdownCtx)
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	fmt.Println("shutdown complete")
}
