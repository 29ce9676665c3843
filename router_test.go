package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"atomichabits/config"
	"atomichabits/handler"
	"atomichabits/middleware"
	"atomichabits/repository"
	"atomichabits/usecase"
	"atomichabits/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type habitBody struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Streak     int    `json:"streak"`
	Completed  bool   `json:"completed"`
	IsArchived bool   `json:"is_archived"`
}

func newDemoRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitValidator()

	store, err := repository.OpenLocalStore(filepath.Join(t.TempDir(), "demo.db"), repository.SystemClock(time.UTC), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{
		DemoMode:       true,
		DemoUserID:     "demo-user",
		Location:       time.UTC,
		CORSOrigins:    []string{"*"},
		MaxRequestSize: 1 << 20,
	}
	return setupRouter(routes{
		cfg:     cfg,
		habits:  handler.NewHabitHandler(usecase.NewHabitsService(store, nil)),
		protect: middleware.DemoAuthMiddleware(cfg.DemoUserID),
		health:  handler.NewHealthHandler(nil, nil, "demo"),
	})
}

func do(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func createTestHabit(t *testing.T, router *gin.Engine, title string) habitBody {
	t.Helper()
	w, env := do(t, router, http.MethodPost, "/api/habits", map[string]string{
		"title":       title,
		"description": "Every day",
		"frequency":   "daily",
		"category":    "Health",
		"time_of_day": "07:30",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Location"), "/api/habits/")

	var h habitBody
	require.NoError(t, json.Unmarshal(env.Data, &h))
	return h
}

func TestHabitLifecycle(t *testing.T) {
	router := newDemoRouter(t)
	h := createTestHabit(t, router, "Drink water")
	assert.False(t, h.Completed)
	assert.Zero(t, h.Streak)

	w, env := do(t, router, http.MethodGet, "/api/habits", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []habitBody
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, h.ID, list[0].ID)

	w, env = do(t, router, http.MethodPost, "/api/habits/"+h.ID+"/complete", map[string]bool{"completed": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var done habitBody
	require.NoError(t, json.Unmarshal(env.Data, &done))
	assert.True(t, done.Completed)
	assert.Equal(t, 1, done.Streak)

	w, env = do(t, router, http.MethodPut, "/api/habits/"+h.ID, map[string]interface{}{"title": "Drink more water"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated habitBody
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Drink more water", updated.Title)
	assert.True(t, updated.Completed)

	w, env = do(t, router, http.MethodPost, "/api/habits/"+h.ID+"/archive", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var archived map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &archived))
	assert.Equal(t, true, archived["is_archived"])
	assert.Equal(t, "Habit archived successfully", archived["message"])

	w, env = do(t, router, http.MethodPost, "/api/habits/"+h.ID+"/complete", map[string]bool{"completed": false})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "cannot complete an archived habit", env.Error)

	w, env = do(t, router, http.MethodGet, "/api/habits?archived=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	w, _ = do(t, router, http.MethodDelete, "/api/habits/"+h.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = do(t, router, http.MethodGet, "/api/habits/"+h.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateHabitValidation(t *testing.T) {
	router := newDemoRouter(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"unknown frequency", map[string]string{"title": "x", "description": "y", "frequency": "hourly", "category": "Health"}},
		{"unknown category", map[string]string{"title": "x", "description": "y", "frequency": "daily", "category": "Hobbies"}},
		{"missing title", map[string]string{"description": "y", "frequency": "daily", "category": "Health"}},
		{"bad clock", map[string]string{"title": "x", "description": "y", "frequency": "daily", "category": "Health", "time_of_day": "25:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := do(t, router, http.MethodPost, "/api/habits", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListQueryValidation(t *testing.T) {
	router := newDemoRouter(t)

	w, _ := do(t, router, http.MethodGet, "/api/habits?limit=101", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, router, http.MethodGet, "/api/habits?category=Hobbies", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, router, http.MethodGet, "/api/habits?category=Health&limit=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatsAndCategories(t *testing.T) {
	router := newDemoRouter(t)
	h := createTestHabit(t, router, "Stretch")
	w, _ := do(t, router, http.MethodPost, "/api/habits/"+h.ID+"/complete", map[string]bool{"completed": true})
	require.Equal(t, http.StatusOK, w.Code)

	w, env := do(t, router, http.MethodGet, "/api/habits/stats?range=rolling", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stats struct {
		Samples       []map[string]interface{} `json:"samples"`
		CurrentStreak int                      `json:"current_streak"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Len(t, stats.Samples, 366)
	assert.Equal(t, 1, stats.CurrentStreak)

	w, _ = do(t, router, http.MethodGet, "/api/habits/stats?range=forever", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, router, http.MethodGet, "/api/habits/stats?from=1990-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, router, http.MethodGet, "/api/habits/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var counts struct {
		All        int            `json:"all"`
		ByCategory map[string]int `json:"by_category"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &counts))
	assert.Equal(t, 1, counts.All)
	assert.Equal(t, 1, counts.ByCategory["Health"])
}

func TestResetEndpoint(t *testing.T) {
	router := newDemoRouter(t)
	createTestHabit(t, router, "Read")

	w, env := do(t, router, http.MethodPost, "/api/habits/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reset struct {
		ResetCount int    `json:"reset_count"`
		Message    string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &reset))
	assert.Zero(t, reset.ResetCount)
}

func TestDemoModeHasNoAuthRoutes(t *testing.T) {
	router := newDemoRouter(t)

	w, env := do(t, router, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.c", "password": "password123"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", env.Error)

	w, _ = do(t, router, http.MethodGet, "/api/user", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router := newDemoRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "demo", health["mode"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
