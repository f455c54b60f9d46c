package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports liveness and readiness. db and redis are optional:
// a file-sourced catalog runs without postgres, and disabling rate limiting
// drops the redis dependency.
type HealthHandler struct {
	db        *pgxpool.Pool
	redis     *redis.Client
	linkCount int
}

type HealthResponse struct {
	Status   string           `json:"status"`
	Checks   map[string]Check `json:"checks"`
	Metadata Metadata         `json:"metadata"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type Metadata struct {
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

func NewHealthHandler(db *pgxpool.Pool, redis *redis.Client, linkCount int) *HealthHandler {
	return &HealthHandler{
		db:        db,
		redis:     redis,
		linkCount: linkCount,
	}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]Check)
	allHealthy := true

	checks["links"] = Check{
		Status:  "up",
		Message: fmt.Sprintf("%d links loaded", h.linkCount),
	}

	if h.db != nil {
		dbCheck := h.checkDatabase(ctx)
		checks["database"] = dbCheck
		if dbCheck.Status != "up" {
			allHealthy = false
		}
	}

	if h.redis != nil {
		redisCheck := h.checkRedis(ctx)
		checks["redis"] = redisCheck
		if redisCheck.Status != "up" {
			allHealthy = false
		}
	}

	response := HealthResponse{
		Status: "up",
		Checks: checks,
		Metadata: Metadata{
			Version:   "1.0.0",
			Timestamp: time.Now().Format(time.RFC3339),
		},
	}

	if !allHealthy {
		response.Status = "down"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	if err := h.db.Ping(ctx); err != nil {
		return Check{
			Status:  "down",
			Message: err.Error(),
		}
	}

	return Check{
		Status:  "up",
		Message: "connected",
	}
}

func (h *HealthHandler) checkRedis(ctx context.Context) Check {
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return Check{
			Status:  "down",
			Message: err.Error(),
		}
	}

	return Check{
		Status:  "up",
		Message: "connected",
	}
}
