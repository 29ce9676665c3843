package config

import (
	"time"

	"atomichabits/utils"
)

type DatabaseConfig struct {
	URI             string
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
	DatabaseName    string
	RetryWrites     bool

	HabitsCollection      string
	CompletionsCollection string
	UsersCollection       string
	SessionsCollection    string
}

func LoadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URI:             utils.GetEnvAsString("MONGO_URI", "mongodb://localhost:27017"),
		MaxPoolSize:     utils.GetEnvAsUint64("MONGO_MAX_POOL_SIZE", 100),
		MinPoolSize:     utils.GetEnvAsUint64("MONGO_MIN_POOL_SIZE", 10),
		MaxConnIdleTime: time.Duration(utils.GetEnvAsInt("MONGO_MAX_CONN_IDLE_TIME", 60)) * time.Second,
		DatabaseName:    utils.GetEnvAsString("MONGO_DB", "atomichabits"),
		RetryWrites:     utils.GetEnvAsBool("MONGO_RETRY_WRITES", true),

		HabitsCollection:      utils.GetEnvAsString("HABITS_COLLECTION", "habits"),
		CompletionsCollection: utils.GetEnvAsString("COMPLETIONS_COLLECTION", "habit_completions"),
		UsersCollection:       utils.GetEnvAsString("USERS_COLLECTION", "users"),
		SessionsCollection:    utils.GetEnvAsString("SESSION_COLLECTION", "sessions"),
	}
}

// LocalStoreConfig configures the SQLite-backed demo store.
type LocalStoreConfig struct {
	Path string
	Seed bool
}

func LoadLocalStoreConfig() LocalStoreConfig {
	return LocalStoreConfig{
		Path: utils.GetEnvAsString("LOCAL_STORE_PATH", "data/atomichabits.db"),
		Seed: utils.GetEnvAsBool("LOCAL_STORE_SEED", true),
	}
}

type RedisConfig struct {
	URL      string
	StatsTTL time.Duration
}

func LoadRedisConfig() RedisConfig {
	return RedisConfig{
		URL:      utils.GetEnvAsString("REDIS_URL", ""),
		StatsTTL: utils.GetEnvAsDuration("STATS_CACHE_TTL", 10*time.Minute),
	}
}
