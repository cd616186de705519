package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Drivers
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	// Instrumentation
	"github.com/exaring/otelpgx"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	// Interne
	"github.com/jupiterclapton/cenackle/services/social-service/config"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/adapters/primary/health"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/adapters/primary/rest"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/adapters/secondary/eventbroker"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/adapters/secondary/repository"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/adapters/secondary/security"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/adapters/secondary/storage"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/adapters/secondary/users"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/ports"
	"github.com/jupiterclapton/cenackle/services/social-service/internal/core/services"
	"github.com/jupiterclapton/cenackle/services/social-service/pkg/logger"
	"github.com/jupiterclapton/cenackle/services/social-service/pkg/telemetry"
)

const startupTimeout = 10 * time.Second

func main() {
	// 1. Config & Logger
	_ = godotenv.Load() // .env optionnel
	cfg := config.Load()
	logger.Init(cfg.Env)
	slog.Info("🚀 Starting Social Service", "config", cfg)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Télémétrie (Tracing)
	tp, err := telemetry.InitTracer(ctx, "social-service", cfg.Env, cfg.OtelEndpoint)
	if err != nil {
		slog.Error("Failed to init tracer", "error", err)
	} else {
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	// 3. Infrastructure: MongoDB (posts et/ou users)
	var mongoDB *mongo.Database
	if cfg.StoreDriver == "mongo" || cfg.UserDirectory == "mongo" {
		client, err := connectMongo(ctx, cfg.MongoURI)
		if err != nil {
			slog.Error("Unable to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		mongoDB = client.Database(cfg.MongoDatabase)
		slog.Info("✅ Connected to MongoDB", "database", cfg.MongoDatabase)
	}

	// 4. Post Store (+ cache Redis optionnel)
	var postRepo ports.PostRepository
	if cfg.StoreDriver == "mongo" {
		mongoRepo := repository.NewMongoRepo(mongoDB)
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			slog.Warn("Unable to create indexes", "error", err)
		}
		postRepo = mongoRepo
	} else {
		slog.Warn("⚠️ In-memory post store: data is lost on restart")
		postRepo = repository.NewMemoryRepo()
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisotel.InstrumentTracing(rdb); err != nil {
			slog.Warn("Unable to instrument Redis", "error", err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("Unable to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		postRepo = repository.NewCachedRepo(postRepo, rdb, cfg.PostCacheTTL)
		slog.Info("✅ Connected to Redis", "ttl", cfg.PostCacheTTL)
	}

	// 5. User Directory (+ cache Memcached optionnel)
	var userDir ports.UserDirectory
	if cfg.UserDirectory == "postgres" {
		dbPool, err := connectPostgres(ctx, cfg.DBUrl)
		if err != nil {
			slog.Error("Unable to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()
		userDir = users.NewPostgresDirectory(dbPool)
		slog.Info("✅ Connected to Postgres")
	} else {
		userDir = users.NewMongoDirectory(mongoDB)
	}

	if cfg.MemcachedAddr != "" {
		mc := memcache.New(cfg.MemcachedAddr)
		if err := mc.Ping(); err != nil {
			slog.Warn("Memcached unreachable, user cache will miss", "error", err)
		}
		userDir = users.NewCachedDirectory(userDir, mc, int32(cfg.UserCacheTTL.Seconds()))
		slog.Info("✅ Memcached user cache enabled", "ttl", cfg.UserCacheTTL)
	}

	// 6. Event Broker
	var eventPub ports.EventPublisher
	switch cfg.EventBroker {
	case "nats":
		nc, err := nats.Connect(cfg.NatsUrl)
		if err != nil {
			slog.Error("Unable to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer nc.Close()
		eventPub = eventbroker.NewNatsPublisher(nc)
		slog.Info("✅ Connected to NATS")
	case "rabbitmq":
		conn, err := amqp.Dial(cfg.RabbitURL)
		if err != nil {
			slog.Error("Unable to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer conn.Close()
		ch, err := conn.Channel()
		if err != nil {
			slog.Error("Unable to open RabbitMQ channel", "error", err)
			os.Exit(1)
		}
		defer ch.Close()
		pub, err := eventbroker.NewRabbitPublisher(ch)
		if err != nil {
			slog.Error("Unable to set up RabbitMQ exchange", "error", err)
			os.Exit(1)
		}
		eventPub = pub
		slog.Info("✅ Connected to RabbitMQ", "exchange", eventbroker.ExchangeName)
	default:
		eventPub = eventbroker.NoopPublisher{}
	}

	// 7. Sécurité (JWT)
	verifier, err := newVerifier(cfg)
	if err != nil {
		slog.Error("Unable to set up JWT verification", "error", err)
		os.Exit(1)
	}

	// 8. Core (Domain Logic)
	postService := services.NewPostService(postRepo, userDir, eventPub)

	// 9. Primary Adapter (HTTP)
	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics := telemetry.NewMetrics()
	restServer := rest.NewServer(postService, storage.NewDiskStore(cfg.UploadDir), verifier, metrics, rest.Options{
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	var h http.Handler = restServer.Router()
	// A. CORS
	h = cors.New(rest.CORSOptions(cfg.CORSAllowedOrigins)).Handler(h)
	// B. OTEL HTTP (Racine)
	h = otelhttp.NewHandler(h, "social-service", otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
		return fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path)
	}))

	srvHTTP := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 10. Health gRPC
	healthServer := health.NewServer()
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		slog.Error("Failed to listen", "error", err)
		os.Exit(1)
	}

	// 11. Démarrage
	go func() {
		slog.Info("📡 Social Service listening", "port", cfg.Port)
		if err := srvHTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()
	go func() {
		slog.Info("📡 Health gRPC listening", "port", cfg.GRPCPort)
		if err := healthServer.GRPC.Serve(lis); err != nil {
			slog.Error("gRPC server error", "error", err)
			os.Exit(1)
		}
	}()
	healthServer.SetServing(true)

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("🛑 Shutting down server...")

	healthServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srvHTTP.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	slog.Info("👋 Server exited")
}

// --- HELPERS ---

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

func connectPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	dbConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse DB config: %w", err)
	}
	// Instrumentation SQL (Pour voir les requêtes dans Jaeger)
	dbConfig.ConnConfig.Tracer = otelpgx.NewTracer()

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// newVerifier : en local sans clé, un secret de dev est utilisé (jamais hors local, cf. cfg.Validate).
func newVerifier(cfg config.Config) (*security.JWTVerifier, error) {
	var publicKey []byte
	if cfg.JWTPublicKeyPath != "" {
		data, err := os.ReadFile(cfg.JWTPublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read public key: %w", err)
		}
		publicKey = data
	}

	secret := cfg.JWTSecret
	if secret == "" && publicKey == nil {
		slog.Warn("⚠️ No JWT key configured, using the local development secret")
		secret = "local-dev-secret"
	}
	return security.NewJWTVerifier([]byte(secret), publicKey)
}
