package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/fieldsales/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Database is what the health check reads from the connection pool
type Database interface {
	Ping(ctx context.Context) error
	Stats() sql.DBStats
}

// PoolStats is the connection pool section of the health response
type PoolStats struct {
	MaxOpen        int   `json:"max_open"`
	Open           int   `json:"open"`
	InUse          int   `json:"in_use"`
	Idle           int   `json:"idle"`
	WaitCount      int64 `json:"wait_count"`
	WaitDurationMS int64 `json:"wait_duration_ms"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Pool     PoolStats `json:"pool"`
}

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	db      Database
	timeout time.Duration
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Database) *HealthHandler {
	return &HealthHandler{db: db, timeout: 2 * time.Second}
}

// Health handles GET /health. Pool statistics are reported either way.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	s := h.db.Stats()
	resp := HealthResponse{
		Status:   "healthy",
		Database: "connected",
		Pool: PoolStats{
			MaxOpen:        s.MaxOpenConnections,
			Open:           s.OpenConnections,
			InUse:          s.InUse,
			Idle:           s.Idle,
			WaitCount:      s.WaitCount,
			WaitDurationMS: s.WaitDuration.Milliseconds(),
		},
	}

	if err := h.db.Ping(ctx); err != nil {
		logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
