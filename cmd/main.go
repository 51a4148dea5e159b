package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"analytics-service/internal/ai/gemini"
	"analytics-service/internal/authz"
	"analytics-service/internal/config"
	"analytics-service/internal/database/postgres"
	redisdb "analytics-service/internal/database/redis"
	"analytics-service/internal/handlers"
	"analytics-service/internal/nlp"
	"analytics-service/internal/planner"
	"analytics-service/internal/region"
	"analytics-service/internal/registry"
	"analytics-service/internal/repository"
	"analytics-service/internal/services"
	"analytics-service/internal/worker"

	"github.com/gofiber/fiber/v3"
)

func setupLogging(logDir string) (*os.File, error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
		}
	}()

	fmt.Println("Log directory:", logDir)
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	slog.SetDefault(slog.New(slog.NewTextHandler(file, nil)))

	return file, nil
}

func main() {
	cfg := config.New()

	logFile, err := setupLogging(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	regions := region.NewAuthority()
	if cfg.StatesCSV != "" {
		if err := regions.LoadStatesCSV(cfg.StatesCSV); err != nil {
			log.Printf("failed to load states CSV, using built-in registry: %v", err)
		}
	}
	if cfg.DistrictsCSV != "" {
		if err := regions.LoadDistrictsCSV(cfg.DistrictsCSV); err != nil {
			log.Printf("failed to load districts CSV: %v", err)
		}
	}
	regions.CompilePatterns()

	backend, snapshot := buildBackend(cfg)

	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	defer stopRefresh()
	if snapshot != nil && cfg.SnapshotRefreshMinutes > 0 {
		scheduler := worker.NewRefreshScheduler("snapshot-refresh", time.Duration(cfg.SnapshotRefreshMinutes)*time.Minute)
		scheduler.AddJob(snapshot.Reload)
		go scheduler.Run(refreshCtx)
	}

	redisPingTimeout := time.Duration(cfg.RedisCfg.PingTimeoutSeconds) * time.Second
	if client, err := redisdb.NewRedisClient(cfg.RedisCfg.Host, cfg.RedisCfg.Port, cfg.RedisCfg.Password, cfg.RedisCfg.DB, redisPingTimeout); err != nil {
		log.Printf("redis unavailable, result caching disabled: %v", err)
	} else {
		ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
		backend = repository.NewResultCache(backend, client.GetClient(), ttl)
		log.Printf("result caching enabled, ttl=%s", ttl)
	}

	var intentModel nlp.IntentModel
	var textModel nlp.TextModel
	if selector := buildGeminiSelector(cfg); selector != nil {
		intentModel = gemini.NewClassifier(selector)
		textModel = gemini.NewTextGenerator(selector)
		log.Printf("Gemini model path enabled with %d clients", selector.GetClientCount())
	} else {
		log.Printf("no Gemini keys configured, running rule-based only")
	}

	reg := registry.Default()
	modelTimeout := time.Duration(cfg.ModelTimeoutSeconds) * time.Second

	analyticsService := services.NewAnalyticsService(
		reg,
		regions,
		nlp.NewResolver(reg, regions, intentModel, modelTimeout, cfg.DefaultTopN),
		authz.NewGuard(regions),
		planner.NewPlanner(reg),
		nlp.NewNarrator(textModel, modelTimeout),
		nlp.NewConversationalist(textModel, modelTimeout),
		backend,
		cfg.DefaultLGDCode,
	)

	app := fiber.New()
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		if err := backend.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).SendString("Analytics service data source unavailable")
		}
		return c.Status(fiber.StatusOK).SendString("Analytics service is healthy")
	})

	chatHandler := handlers.NewChatHandler(analyticsService)
	chatHandler.Register(app)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := app.Listen(fmt.Sprintf("0.0.0.0:%s", cfg.Port)); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutting down server...")
}

func buildBackend(cfg *config.AnalyticsServiceConfig) (repository.Backend, *repository.SnapshotStore) {
	if cfg.DataSource == "csv" {
		log.Printf("using CSV snapshot data source")
		store := repository.NewSnapshotStore(map[string]string{
			registry.TableCropArea:   cfg.CropAreaCSV,
			registry.TableAggregate:  cfg.AggregateCSV,
			registry.TableCultivated: cfg.CultivatedCSV,
		})
		return store, store
	}

	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	repo := repository.NewAnalyticsRepository(db)
	if err != nil {
		log.Printf("error connect to database: %s", err)
		// Requests answer with an explicit error until the retry loop
		// lands a connection and hands it to the repository.
		go func() {
			postgres.RetryConnectOnFailed(30*time.Second, &db, cfg.PostgresCfg)
			repo.SetDB(db)
		}()
	}
	return repo, nil
}

func buildGeminiSelector(cfg *config.AnalyticsServiceConfig) *gemini.ClientSelector {
	if len(cfg.GeminiAPICfg.APIKeys) == 0 {
		return nil
	}

	ctx := context.Background()
	var clients []*gemini.Client
	for i, key := range cfg.GeminiAPICfg.APIKeys {
		client, err := gemini.NewClient(ctx, key, cfg.GeminiAPICfg.ModelName)
		if err != nil {
			log.Printf("failed to init Gemini client %d: %v", i, err)
			continue
		}
		clients = append(clients, client)
	}
	if len(clients) == 0 {
		return nil
	}
	return gemini.NewClientSelector(clients)
}
