package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewatch/signal-monitor-go/internal/config"
	"github.com/tradewatch/signal-monitor-go/internal/database"
	"github.com/tradewatch/signal-monitor-go/internal/history"
	"github.com/tradewatch/signal-monitor-go/internal/models"
)

func setupTestRouter(store *history.Store, redis *database.RedisClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, nil, redis, store)
	return router
}

func TestHealthCheck_NotConfigured(t *testing.T) {
	router := setupTestRouter(history.NewStore(config.HistoryConfig{}), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	// Collaborators that are not wired are reported but do not degrade
	// the status.
	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "not configured", resp.Services.Database)
	assert.Equal(t, "not configured", resp.Services.Redis)
}

func TestHealthCheck_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	redis := &database.RedisClient{Client: client}

	router := setupTestRouter(history.NewStore(config.HistoryConfig{}), redis)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Services.Redis)
}

func TestHealthCheck_DegradedRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	redis := &database.RedisClient{Client: client}
	mr.Close()

	router := setupTestRouter(history.NewStore(config.HistoryConfig{}), redis)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "error", resp.Services.Redis)
}

func TestGetLatestReport(t *testing.T) {
	store := history.NewStore(config.HistoryConfig{})
	router := setupTestRouter(store, nil)

	// Empty store: 404.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/performance/latest", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	store.Append(models.PerformanceReport{
		GeneratedAt: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
		Aggregate:   models.PerformanceStats{TotalSignals: 7, SuccessRate: 57.1},
	})

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/performance/latest", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var entry history.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	assert.Equal(t, 7, entry.Report.Aggregate.TotalSignals)
}

func TestGetReportHistory(t *testing.T) {
	store := history.NewStore(config.HistoryConfig{})
	store.Append(models.PerformanceReport{Aggregate: models.PerformanceStats{TotalSignals: 3}})
	store.Append(models.PerformanceReport{Aggregate: models.PerformanceStats{TotalSignals: 5}})

	router := setupTestRouter(store, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/performance/history", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count   int             `json:"count"`
		Entries []history.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, 5, resp.Entries[1].Report.Aggregate.TotalSignals)
}
