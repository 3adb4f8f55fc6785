// Package api serves the status endpoints consumed by the external
// dashboard. It only exposes data; rendering happens elsewhere.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/tradewatch/signal-monitor-go/internal/database"
	"github.com/tradewatch/signal-monitor-go/internal/history"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Services  Services  `json:"services"`
	System    System    `json:"system"`
}

type Services struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

type System struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
}

// SetupRoutes registers the status endpoints.
func SetupRoutes(router *gin.Engine, db *database.PostgresDB, redis *database.RedisClient, store *history.Store) {
	// Health check endpoint
	router.GET("/health", healthCheck(db, redis))

	v1 := router.Group("/api/v1")
	{
		performance := v1.Group("/performance")
		{
			performance.GET("/latest", getLatestReport(store))
			performance.GET("/history", getReportHistory(store))
		}
	}
}

func healthCheck(db *database.PostgresDB, redis *database.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
			Services: Services{
				Database: "ok",
				Redis:    "ok",
			},
			System: collectSystemStats(),
		}

		// Check database health
		if db == nil {
			response.Services.Database = "not configured"
		} else if err := db.HealthCheck(c.Request.Context()); err != nil {
			response.Services.Database = "error"
			response.Status = "degraded"
		}

		// Check Redis health
		if redis == nil {
			response.Services.Redis = "not configured"
		} else if err := redis.HealthCheck(c.Request.Context()); err != nil {
			response.Services.Redis = "error"
			response.Status = "degraded"
		}

		statusCode := http.StatusOK
		if response.Status == "degraded" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}

func getLatestReport(store *history.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry, ok := store.Latest()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no report computed yet"})
			return
		}
		c.JSON(http.StatusOK, entry)
	}
}

func getReportHistory(store *history.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"count":   store.Len(),
			"entries": store.All(),
		})
	}
}

// collectSystemStats samples process host CPU and memory usage for the
// health payload. Sampling errors degrade to zeros.
func collectSystemStats() System {
	var sys System
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		sys.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		sys.MemoryPercent = vm.UsedPercent
	}
	return sys
}
