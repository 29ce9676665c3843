package handler

import (
	"context"
	"net/http"
	"time"

	"atomichabits/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// HealthHandler reports dependency status. Nil clients are reported as
// disabled rather than down.
type HealthHandler struct {
	mongo *mongo.Client
	redis *redis.Client
	mode  string
}

func NewHealthHandler(mongoClient *mongo.Client, redisClient *redis.Client, mode string) *HealthHandler {
	return &HealthHandler{mongo: mongoClient, redis: redisClient, mode: mode}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	healthy := true
	checks := gin.H{}

	switch {
	case h.mongo == nil:
		checks["mongo"] = "disabled"
	case h.mongo.Ping(ctx, readpref.Primary()) != nil:
		checks["mongo"] = "down"
		healthy = false
	default:
		checks["mongo"] = "up"
	}

	switch {
	case h.redis == nil:
		checks["redis"] = "disabled"
	case h.redis.Ping(ctx).Err() != nil:
		// the cache and blacklist degrade gracefully without redis
		checks["redis"] = "down"
	default:
		checks["redis"] = "up"
	}

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":      status,
		"mode":        h.mode,
		"checks":      checks,
		"cpu_percent": utils.GetCPUUsage(),
	})
}
