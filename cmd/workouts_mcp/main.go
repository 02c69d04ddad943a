// Package main runs the fittrack MCP server over stdio (for local MCP clients).
// The same MCP server is also mounted on the main backend at /mcp over HTTP.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/calories"
	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/logging"
	"github.com/2beens/fittrack/internal/mcp"
	"github.com/2beens/fittrack/internal/stats"
	"github.com/2beens/fittrack/internal/storage"
	"github.com/2beens/fittrack/internal/workouts"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	// stdout carries the MCP protocol
	log.SetOutput(os.Stderr)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
		Console:       os.Stderr,
		Environment:   cfg.Environment,
	})

	location, err := cfg.Location()
	if err != nil {
		log.Fatalf("location: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	kv, closeKV, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("open %s storage: %v", cfg.StorageBackend, err)
	}
	defer closeKV()

	estimator := calories.NewEstimator(calories.DefaultRules)
	workoutsService := workouts.NewService(workouts.NewStore(kv, cfg.WorkoutsKey), estimator)
	statsService := stats.NewService(workoutsService, location)

	server := mcp.NewServer(statsService, workoutsService, estimator, "stdio")
	if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil {
		log.Errorf("mcp server: %v", err)
	}
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.KV, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageFile:
		kv, err := storage.NewFile(cfg.StoragePath)
		return kv, func() {}, err
	case config.StorageBadger:
		kv, err := storage.OpenBadger(cfg.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { _ = kv.Close() }, nil
	case config.StorageRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisHost + ":" + cfg.RedisPort,
			Password: os.Getenv("FITTRACK_REDIS_PASS"),
		})
		return storage.NewRedis(rdb), func() { _ = rdb.Close() }, nil
	case config.StoragePostgres:
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:     cfg.PostgresHost,
			DBPort:     cfg.PostgresPort,
			DBName:     cfg.PostgresDBName,
			DBPassword: os.Getenv("FITTRACK_POSTGRES_PASS"),
		})
		if err != nil {
			return nil, nil, err
		}
		return storage.NewPostgres(dbPool), dbPool.Close, nil
	default:
		log.Warnln("in-memory storage: the MCP server will see an empty workout log")
		return storage.NewMemory(), func() {}, nil
	}
}
