package main

import (
	"context"

	"github.com/spycce/SMPost/internal/config"
	"github.com/spycce/SMPost/internal/content"
	"github.com/spycce/SMPost/internal/database"
	"github.com/spycce/SMPost/internal/events"
	"github.com/spycce/SMPost/internal/generate"
	"github.com/spycce/SMPost/internal/handlers"
	"github.com/spycce/SMPost/internal/logging"
	"github.com/spycce/SMPost/internal/monitoring"
	"github.com/spycce/SMPost/internal/publish"
	"github.com/spycce/SMPost/internal/scheduler"
	"github.com/spycce/SMPost/internal/server"
	"github.com/spycce/SMPost/internal/version"
)

func main() {
	logger := logging.NewLoggerWithService("smpost")
	config.LoadEnv(logger)
	cfg := config.LoadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthChecker := monitoring.NewHealthChecker("smpost", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("smpost", version.Version, version.GitCommit)

	var store content.Store
	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("Using in-memory store, data will not survive restarts")
		store = content.NewMemoryStore()
	default:
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.DatabaseURL
		db := database.MustConnect(dbCfg, logger)
		defer db.Close()
		healthChecker.AddCheck("database", monitoring.DatabaseHealthCheck(db))
		store = content.NewPostgresStore(db)
	}

	if err := store.SeedAccounts(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to seed social accounts")
	}

	// A missing API key only degrades the AI endpoints, it must not take
	// the whole service out of rotation.
	healthChecker.AddCheck("gemini", func() monitoring.CheckResult {
		if cfg.GeminiAPIKey == "" {
			return monitoring.CheckResult{
				Status:  monitoring.StatusDegraded,
				Message: "GEMINI_API_KEY not configured, AI endpoints disabled",
			}
		}
		return monitoring.CheckResult{Status: monitoring.StatusHealthy}
	})

	geminiClient := generate.NewGeminiClient(generate.GeminiConfig{
		APIKey:     cfg.GeminiAPIKey,
		APIURL:     cfg.GeminiAPIURL,
		Model:      cfg.GeminiModel,
		ImageModel: cfg.GeminiImageModel,
	})
	generator := generate.NewService(geminiClient, logger)

	publisher := publish.NewMockPublisher(publish.MockPublisherConfig{
		MinDelay: cfg.PublishMinDelay,
		MaxDelay: cfg.PublishMaxDelay,
		Logger:   logger,
	})

	producer, err := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaClusterID, cfg.PostEventsTopic, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Kafka")
	}
	if producer != nil {
		defer producer.Close()
		logger.WithField("topic", cfg.PostEventsTopic).Info("Post event stream enabled")
	}

	sched := scheduler.New(scheduler.Config{
		Interval:       cfg.SchedulerInterval,
		BatchSize:      cfg.SchedulerBatch,
		PublishTimeout: cfg.PublishTimeout,
		Store:          store,
		Publisher:      publisher,
		Events:         producer,
		Metrics:        metricsCollector,
		Logger:         logger,
	})
	sched.Start(ctx)
	defer sched.Stop()

	apiMetrics := &handlers.APIMetrics{
		PostRequests:       metricsCollector.NewCounter("post_requests_total", "Post API requests", []string{"op", "status"}),
		AccountRequests:    metricsCollector.NewCounter("account_requests_total", "Account API requests", []string{"op", "status"}),
		AIRequests:         metricsCollector.NewCounter("ai_requests_total", "AI proxy requests", []string{"op", "status"}),
		AutomationRequests: metricsCollector.NewCounter("automation_requests_total", "Auto-pilot runs", []string{"status"}),
	}

	app := server.SetupServiceRouter(logger, "smpost", healthChecker, metricsCollector)

	handlers.Routes{
		Posts:      handlers.NewPostsHandler(store, logger, apiMetrics),
		Accounts:   handlers.NewAccountsHandler(store, logger, apiMetrics),
		Auth:       handlers.NewAuthHandler(store, []byte(cfg.JWTSecret), cfg.FrontendURL, logger, apiMetrics),
		AI:         handlers.NewAIHandler(generator, logger, apiMetrics),
		Automation: handlers.NewAutomationHandler(store, generator, cfg.AutomationIndustry, logger, apiMetrics),
	}.Register(app)

	serverConfig := server.DefaultConfig("smpost", cfg.Port)
	if err := server.Start(serverConfig, app, logger); err != nil {
		logger.Fatal(err.Error())
	}
}
