package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/franklioxygen/MyTube-sub001/internal/application/services"
	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: "0", Mode: "release"},
		Storage:  config.StorageConfig{DataDir: t.TempDir(), MediaDir: t.TempDir()},
		Download: config.DownloadConfig{Concurrency: 2, QueueSize: 0},
		Task:     config.TaskConfig{ItemDelaySeconds: 0, WindowSize: 3},
		Ytdlp: config.YtdlpConfig{
			BinaryPath:             "yt-dlp",
			Format:                 "best",
			MetadataTimeoutSeconds: 5,
			QPS:                    5,
		},
	}

	container, err := services.NewServiceContainer(cfg)
	require.NoError(t, err, "build service container")
	t.Cleanup(container.Close)

	return NewRouter(container)
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "decode response %q", w.Body.String())
	return body
}

func TestHealthEndpoint(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	// yt-dlp二进制在测试机上可有可无,数据库必须健康
	assert.Contains(t, []interface{}{"healthy", "degraded"}, body["status"])

	components, ok := body["components"].([]interface{})
	require.True(t, ok, "health response has components array")
	foundDB := false
	for _, raw := range components {
		comp, _ := raw.(map[string]interface{})
		if comp["name"] == "database" {
			foundDB = true
			assert.Equal(t, "healthy", comp["status"], "database component")
		}
	}
	assert.True(t, foundDB, "health response lists database component")
}

func TestCreateTaskRejectsBadRequests(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"url": `},
		{"missing url and subscription", `{}`},
		{"unsupported scheme", `{"url": "ftp://example.com/feed"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPost, "/api/v1/tasks", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, "body %s", w.Body.String())

			body := decodeBody(t, w)
			assert.Equal(t, "INVALID_REQUEST", body["code"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestGetTaskNotFoundStatus(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/tasks/no-such-task", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeBody(t, w)["code"])
}

func TestSubscriptionLifecycleOverHTTP(t *testing.T) {
	router := setupRouter(t)
	const createBody = `{"url": "https://youtube.com/@somechannel", "name": "Some Channel", "kind": "channel"}`

	w := doRequest(t, router, http.MethodPost, "/api/v1/subscriptions", createBody)
	require.Equal(t, http.StatusOK, w.Code, "create failed: %s", w.Body.String())

	data, _ := decodeBody(t, w)["data"].(map[string]interface{})
	subID, _ := data["id"].(string)
	require.NotEmpty(t, subID, "created subscription id")
	assert.Equal(t, "channel", data["kind"])

	// 同URL重复注册返回冲突
	w = doRequest(t, router, http.MethodPost, "/api/v1/subscriptions", createBody)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", decodeBody(t, w)["code"])

	w = doRequest(t, router, http.MethodGet, "/api/v1/subscriptions", "")
	require.Equal(t, http.StatusOK, w.Code)
	listData, _ := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), listData["total_count"])

	w = doRequest(t, router, http.MethodDelete, "/api/v1/subscriptions/"+subID, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodDelete, "/api/v1/subscriptions/"+subID, "")
	assert.Equal(t, http.StatusNotFound, w.Code, "second delete")
}

func TestListEndpointsStartEmpty(t *testing.T) {
	router := setupRouter(t)

	paths := []string{
		"/api/v1/tasks",
		"/api/v1/downloads",
		"/api/v1/videos",
		"/api/v1/collections",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := doRequest(t, router, http.MethodGet, path, "")
			require.Equal(t, http.StatusOK, w.Code, "body %s", w.Body.String())

			body := decodeBody(t, w)
			assert.Equal(t, float64(0), body["code"], "envelope code")
			data, _ := body["data"].(map[string]interface{})
			assert.Equal(t, float64(0), data["total_count"])
		})
	}
}

func TestHistoryPaginationDefaultsOverHTTP(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/history", "")
	require.Equal(t, http.StatusOK, w.Code)

	data, _ := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(50), data["limit"], "default page size")
	assert.Equal(t, float64(0), data["offset"])
}

func TestDeleteVideoQueryValidation(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodDelete, "/api/v1/videos/some-id?remove_file=maybe", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeBody(t, w)["code"])
}

func TestCORSPreflight(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodOptions, "/api/v1/tasks", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
