package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-chat-be/internal/bootstrap"
	"ai-chat-be/internal/config"
	"ai-chat-be/internal/controller"
	"ai-chat-be/internal/handler"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	log := logger.NewNop()
	container := &bootstrap.Container{
		ChatController:    controller.NewChatController(nil, nil, log),
		MessageController: controller.NewMessageController(nil, log),
		ChatFeedHandler:   handler.NewChatFeedHandler(websocket.NewHub(nil, log), log),
		Logger:            log,
	}
	cfg := &config.Config{App: config.AppConfig{Port: "0", CorsAllowedOrigins: "*"}}
	return New(cfg, container)
}

func TestRootReportsRunning(t *testing.T) {
	resp, err := newTestServer().GetApp().Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"LLM API is running"}`, string(body))
}

func TestUnknownRouteIsJSON(t *testing.T) {
	resp, err := newTestServer().GetApp().Test(httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), `"error"`)
}

func TestChatFeedRequiresUpgrade(t *testing.T) {
	resp, err := newTestServer().GetApp().Test(httptest.NewRequest(http.MethodGet, "/api/ws/chats", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestCorsPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := newTestServer().GetApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
