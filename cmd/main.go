package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fathima-sithara/media-service/internal/auth"
	"github.com/fathima-sithara/media-service/internal/config"
	"github.com/fathima-sithara/media-service/internal/events"
	"github.com/fathima-sithara/media-service/internal/handlers"
	"github.com/fathima-sithara/media-service/internal/ingest"
	"github.com/fathima-sithara/media-service/internal/metrics"
	"github.com/fathima-sithara/media-service/internal/middleware"
	"github.com/fathima-sithara/media-service/internal/repository"
	service "github.com/fathima-sithara/media-service/internal/services"
	"github.com/fathima-sithara/media-service/internal/storage"
	utils "github.com/fathima-sithara/media-service/internal/utis"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// load config
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}
	dev := cfg.App.Env == "development"

	// logger
	logger, err := utils.NewLogger(dev, cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// record store
	var store repository.Store
	var closeStore func(context.Context)
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pg, err := repository.NewPostgresVideoStore(ctx, cfg.Postgres.DSN)
		if err != nil {
			logger.Fatalf("postgres init: %v", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatalf("postgres schema: %v", err)
		}
		store = pg
		closeStore = func(ctx context.Context) { _ = pg.Close(ctx) }
	default:
		mc, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			logger.Fatalf("mongo connect: %v", err)
		}
		if err := mc.Ping(ctx, nil); err != nil {
			logger.Fatalf("mongo ping: %v", err)
		}
		col := mc.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		store = repository.NewMediaRepo(mc, col)
		closeStore = func(ctx context.Context) { _ = mc.Disconnect(ctx) }
	}

	// ingestion, validated once for both media kinds
	var ingester service.Ingester
	if err := cfg.ValidateIngest(); err != nil {
		logger.Errorw("ingestion disabled, uploads will fail", "provider", cfg.Ingest.Provider, "error", err)
	} else {
		up, err := newUploader(ctx, cfg)
		if err != nil {
			logger.Fatalf("%s init: %v", cfg.Ingest.Provider, err)
		}
		ingester = ingest.NewBridge(up, ingest.Folders{Image: cfg.Ingest.ImageFolder, Video: cfg.Ingest.VideoFolder})
	}

	// metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg)

	// events; a nil publisher drops them
	var publisher *events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	// service
	msvc := service.NewUploadService(ingester, store, rec, publisher, logger)

	// JWT Verifier
	verifier, err := auth.NewJWTVerifier(cfg.JWT.PublicKeyPath)
	if err != nil {
		logger.Fatalf("jwt init: %v", err)
	}

	// optional rate limit
	var limiters []fiber.Handler
	var rdb *redis.Client
	if cfg.Redis.Addr != "" && cfg.RateLimit.Limit > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatalf("redis ping: %v", err)
		}
		rl := middleware.NewRateLimiter(middleware.RedisCounter{Redis: rdb}, cfg.RateLimit.Prefix, cfg.RateLimit.Limit, cfg.RateLimitWindow)
		limiters = append(limiters, rl.MiddlewareByKey(middleware.ClientIP))
	}

	// fiber app & routes
	app := fiber.New(fiber.Config{
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    cfg.BodyLimitBytes(),
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.RequestLogger(logger))

	h := handlers.NewHandler(auth.NewJWTGate(verifier), msvc, logger)
	h.Register(app, limiters...)
	app.Get("/metrics", rec.Handler())
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	// start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		logger.Infof("starting media service on %s", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatalf("listen failed: %v", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown requested")
	timeoutCtx, cancel2 := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel2()

	if err := app.ShutdownWithContext(timeoutCtx); err != nil {
		logger.Errorw("fiber shutdown", "error", err)
	}
	closeStore(timeoutCtx)
	if err := publisher.Close(); err != nil {
		logger.Errorw("kafka writer close", "error", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	logger.Info("shutdown completed")
}

func newUploader(ctx context.Context, cfg *config.Config) (ingest.Uploader, error) {
	if cfg.Ingest.Provider == config.ProviderS3 {
		return storage.NewS3Uploader(ctx, cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.Endpoint)
	}
	return storage.NewCloudinaryUploader(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
}
