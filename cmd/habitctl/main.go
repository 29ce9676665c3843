// Command habitctl runs maintenance tasks against the habit store: index
// setup, demo seeding, the periodic reset and stats reports.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"atomichabits/config"
	"atomichabits/repository"
	"atomichabits/services"
	"atomichabits/usecase"
	"atomichabits/utils"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var CLI struct {
	Demo      bool   `help:"Use the local SQLite store instead of MongoDB."`
	LocalPath string `help:"Path of the local SQLite store (implies --demo)." type:"path"`

	InitDB InitDBCmd `cmd:"" name:"init-db" help:"Create indexes or the local store schema."`
	Seed   SeedCmd   `cmd:"" help:"Write generated sample habits for a user."`
	Reset  ResetCmd  `cmd:"" help:"Run the periodic reset for one user or everyone."`
	Stats  StatsCmd  `cmd:"" help:"Print activity stats for a user."`
}

// ownerStore is a HabitStore that can also enumerate its users.
type ownerStore interface {
	repository.HabitStore
	UserIDsWithHabits(ctx context.Context) ([]string, error)
}

// Context is handed to every command's Run method.
type Context struct {
	Ctx    context.Context
	Config *config.Config
	Store  ownerStore
	// Cache is nil unless REDIS_URL is set and reachable. Commands that
	// write habits invalidate it so the API does not serve stale stats.
	Cache usecase.StatsCache

	// mongo is nil in demo mode; local is nil otherwise.
	mongo *mongo.Client
	local *repository.LocalStore
	redis *redis.Client
}

func openStore(ctx context.Context, cfg *config.Config) (*Context, error) {
	app := &Context{Ctx: ctx, Config: cfg}
	clock := repository.SystemClock(cfg.Location)

	if cfg.Redis.URL != "" {
		rdb, err := services.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn("redis unavailable, stats cache will not be invalidated", "err", err)
		} else {
			app.redis = rdb
			app.Cache = services.NewStatsCache(rdb, cfg.Redis.StatsTTL)
		}
	}

	if cfg.DemoMode {
		store, err := repository.OpenLocalStore(cfg.LocalStore.Path, clock, nil)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.local = store
		app.Store = store
		return app, nil
	}

	client, err := repository.Connect(ctx, cfg.Database)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.mongo = client
	app.Store = repository.GetHabitsRepo(client, cfg.Database, clock)
	return app, nil
}

func (c *Context) Close() {
	if c.redis != nil {
		c.redis.Close()
	}
	if c.local != nil {
		c.local.Close()
	}
	if c.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.mongo.Disconnect(ctx); err != nil {
			log.Warn("failed to disconnect from MongoDB", "err", err)
		}
	}
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("habitctl"),
		kong.Description("Maintenance commands for the habit tracker."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: failed to load .env: %v\n", err)
		os.Exit(1)
	}
	if CLI.Demo || CLI.LocalPath != "" {
		os.Setenv("DEMO_MODE", "true")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if CLI.LocalPath != "" {
		cfg.LocalStore.Path = CLI.LocalPath
	}
	if _, err := utils.InitLogger(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := openStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = kctx.Run(app)
	app.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
