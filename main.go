package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogoblog/handlers"
	"github.com/gogotex/gogoblog/internal/config"
	"github.com/gogotex/gogoblog/internal/database"
	"github.com/gogotex/gogoblog/internal/oidc"
	"github.com/gogotex/gogoblog/internal/post"
	posthandler "github.com/gogotex/gogoblog/internal/post/handler"
	"github.com/gogotex/gogoblog/internal/post/repository"
	"github.com/gogotex/gogoblog/internal/post/service"
	"github.com/gogotex/gogoblog/internal/render"
	"github.com/gogotex/gogoblog/internal/sessions"
	"github.com/gogotex/gogoblog/internal/tokens"
	"github.com/gogotex/gogoblog/internal/users"
	"github.com/gogotex/gogoblog/pkg/logger"
	"github.com/gogotex/gogoblog/pkg/metrics"
	"github.com/gogotex/gogoblog/pkg/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Infof("config loaded: store=%s keycloak=%v mongo=%v redis=%v", cfg.Store.Driver, cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "")

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := gin.New()
	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	checks := map[string]handlers.Check{}

	// Redis is optional: token blacklist and the shared rate limiter.
	var redisClient *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
		} else {
			logger.Infof("connected to Redis at %s", addr)
		}
		defer func() { _ = redisClient.Close() }()
		sessions.SetBlacklistClient(redisClient)
		checks["redis"] = func(ctx context.Context) bool { return redisClient.Ping(ctx).Err() == nil }
	} else {
		checks["redis"] = handlers.Ready
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
			logger.Infof("rate limiter enabled (redis, window=%s)", win)
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
			logger.Infof("rate limiter enabled (memory)")
		}
	}

	// MongoDB backs users whenever it is reachable, and posts when selected.
	var mongoClient *mongo.Client
	if cfg.MongoDB.URI != "" {
		mongoClient, err = connectMongoWithRetry(ctx, cfg.MongoDB)
		if err != nil {
			logger.Warnf("could not connect to MongoDB: %v", err)
		} else {
			defer func() { _ = mongoClient.Disconnect(context.Background()) }()
			checks["mongo"] = func(ctx context.Context) bool { return mongoClient.Ping(ctx, nil) == nil }
		}
	}

	userSvc := newUserService(ctx, cfg, mongoClient)
	checks["users"] = handlers.Ready

	repo, storeCheck, closeStore := newPostRepository(ctx, cfg, mongoClient)
	defer closeStore()
	checks["store"] = storeCheck

	postSvc := service.New(repo, userSvc)

	verifier := newVerifier(ctx, cfg)
	if cfg.Keycloak.URL != "" {
		_, isOIDC := verifier.(*oidc.Verifier)
		oidcReady := isOIDC || cfg.AllowInsecureToken
		checks["oidc"] = func(context.Context) bool { return oidcReady }
	} else {
		checks["oidc"] = handlers.Ready
	}

	var requireUser gin.HandlerFunc
	if verifier != nil {
		requireUser = middleware.AuthMiddleware(verifier, userSvc)
	} else {
		logger.Warnf("no token verifier configured: creating and editing posts is disabled")
	}

	rnd, err := render.New()
	if err != nil {
		logger.Fatalf("failed to load templates: %v", err)
	}

	handlers.RegisterHealth(r, checks)
	handlers.RegisterSwagger(r)
	if requireUser != nil {
		handlers.NewAuthHandler(requireUser).Register(r.Group("/"))
	} else {
		r.GET("/api/v1/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "authentication not configured"})
		})
	}
	posthandler.RegisterPostRoutes(r, postSvc, rnd, cfg.Blog.PageSize, requireUser)
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, post.MustReverse(post.RouteList))
	})

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("starting blog on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Infof("shutting down (timeout %s)", cfg.Server.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
	logger.Infof("server exited")
}

// connectMongoWithRetry retries with exponential backoff to tolerate startup races.
func connectMongoWithRetry(ctx context.Context, mc config.MongoDBConfig) (*mongo.Client, error) {
	const maxAttempts = 5
	backoff := time.Second
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, err := database.ConnectMongo(ctx, mc.URI, mc.Timeout)
		if err == nil {
			return client, nil
		}
		lastErr = err
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, err)
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, lastErr
}

func newUserService(ctx context.Context, cfg *config.Config, client *mongo.Client) *users.Service {
	if client != nil {
		repo, err := users.NewMongoUserRepository(ctx, client.Database(cfg.MongoDB.Database).Collection("users"))
		if err == nil {
			logger.Infof("users: mongo")
			return users.NewService(repo)
		}
		logger.Warnf("users: mongo repository unavailable, using memory: %v", err)
	}
	return users.NewService(users.NewMemoryUserRepository())
}

// newPostRepository picks the post store for cfg.Store.Driver. A selected Mongo
// store that cannot be reached falls back to memory; Postgres is required once selected.
func newPostRepository(ctx context.Context, cfg *config.Config, client *mongo.Client) (repository.Repository, handlers.Check, func()) {
	noop := func() {}
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := database.ConnectPostgres(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			logger.Fatalf("failed to connect to Postgres: %v", err)
		}
		repo, err := repository.NewPostgresRepo(ctx, pool)
		if err != nil {
			pool.Close()
			logger.Fatalf("failed to prepare Postgres store: %v", err)
		}
		logger.Infof("posts: postgres")
		return repo, pingPool(pool), pool.Close
	case config.DriverMongo:
		if client != nil {
			db := client.Database(cfg.MongoDB.Database)
			repo, err := repository.NewMongoRepo(ctx, db.Collection("posts"), db.Collection("counters"))
			if err == nil {
				logger.Infof("posts: mongo")
				return repo, func(ctx context.Context) bool { return client.Ping(ctx, nil) == nil }, noop
			}
			logger.Warnf("posts: mongo repository unavailable: %v", err)
		}
		logger.Warnf("posts: falling back to memory store")
	}
	return repository.NewMemoryRepo(), handlers.Ready, noop
}

func pingPool(pool *pgxpool.Pool) handlers.Check {
	return func(ctx context.Context) bool { return pool.Ping(ctx) == nil }
}

// newVerifier prefers Keycloak OIDC, then the insecure parser for integration
// runs, then locally signed HS256 tokens.
func newVerifier(ctx context.Context, cfg *config.Config) middleware.Verifier {
	if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, oidc.KeycloakIssuer(cfg.Keycloak), cfg.Keycloak.ClientID)
		if err == nil {
			logger.Infof("auth: keycloak OIDC")
			return ver
		}
		logger.Warnf("failed to initialize OIDC verifier: %v", err)
	}
	if cfg.AllowInsecureToken {
		logger.Warnf("auth: enabling insecure token verifier (integration mode)")
		return oidc.NewInsecureVerifier()
	}
	if cfg.JWT.Secret != "" {
		ver, err := tokens.NewHMACVerifier(cfg.JWT.Secret)
		if err == nil {
			logger.Infof("auth: HS256 tokens")
			return ver
		}
	}
	return nil
}
