package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"atomichabits/config"
	"atomichabits/demo"
	"atomichabits/handler"
	"atomichabits/middleware"
	"atomichabits/repository"
	"atomichabits/services"
	"atomichabits/usecase"
	"atomichabits/utils"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func init() {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal("failed to load .env file", "err", err)
	}
}

// app holds the wired dependencies and how to release them.
type app struct {
	router  *gin.Engine
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}
	if _, err := utils.InitLogger(cfg.Log); err != nil {
		log.Fatal("failed to initialise logger", "err", err)
	}
	utils.InitValidator()
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatal("failed to start", "err", err)
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := runServer(ctx, srv); err != nil {
		log.Error("server stopped", "err", err)
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	clock := repository.SystemClock(cfg.Location)

	rdb := connectRedis(ctx, cfg.Redis)
	if rdb != nil {
		a.closers = append(a.closers, func() { rdb.Close() })
	}
	var cache usecase.StatsCache
	if rdb != nil {
		cache = services.NewStatsCache(rdb, cfg.Redis.StatsTTL)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	go limiter.Cleanup(ctx)

	r := routes{cfg: cfg, rateLimit: limiter}

	if cfg.DemoMode {
		var seed repository.SeedFunc
		if cfg.LocalStore.Seed {
			seed = demo.DefaultOptions().Generate
		}
		store, err := repository.OpenLocalStore(cfg.LocalStore.Path, clock, seed)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { store.Close() })

		log.Info("running in demo mode", "store", cfg.LocalStore.Path, "user", cfg.DemoUserID)
		r.habits = handler.NewHabitHandler(usecase.NewHabitsService(store, cache))
		r.protect = middleware.DemoAuthMiddleware(cfg.DemoUserID)
		r.health = handler.NewHealthHandler(nil, rdb, "demo")
		a.router = setupRouter(r)
		return a, nil
	}

	client, err := repository.Connect(ctx, cfg.Database)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Warn("failed to disconnect from MongoDB", "err", err)
		}
	})
	if err := repository.SetupIndexes(ctx, client.Database(cfg.Database.DatabaseName), cfg.Database); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to set up indexes: %w", err)
	}

	tokens := services.NewTokenService(cfg.JWT)
	var revoker handler.TokenRevoker
	if rdb != nil {
		revoker = services.NewTokenBlacklist(rdb, tokens)
	}
	sessions := repository.GetSessionRepo(client, cfg.Database)
	users := usecase.NewUserService(repository.GetUserRepo(client, cfg.Database))

	r.habits = handler.NewHabitHandler(usecase.NewHabitsService(repository.GetHabitsRepo(client, cfg.Database, clock), cache))
	r.auth = handler.NewAuthHandler(users, tokens, revoker, sessions)
	r.protect = middleware.AuthMiddleware(tokens, revoker)
	r.sessions = sessions
	r.health = handler.NewHealthHandler(client, rdb, "mongo")
	a.router = setupRouter(r)
	return a, nil
}

// connectRedis returns nil when Redis is unconfigured or unreachable; the
// stats cache and token blacklist are then disabled.
func connectRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.URL == "" {
		return nil
	}
	rdb, err := services.NewRedisClient(ctx, cfg.URL)
	if err != nil {
		log.Warn("redis unavailable, continuing without cache and token blacklist", "err", err)
		return nil
	}
	return rdb
}
