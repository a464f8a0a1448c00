package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mosaic "github.com/atilaykosker/Mosaic"
)

func newPreviewComponent(t *testing.T) (*mosaic.Runtime, *mosaic.Component) {
	t.Helper()

	runtime := mosaic.NewRuntime()
	def := runtime.MustDefine(mosaic.Options{
		Name: "demo-clock",
		Data: map[string]interface{}{"tick": 0},
		View: func(c *mosaic.Component) mosaic.View {
			tick, _ := c.Get("tick")
			return mosaic.NewView([]string{"<p>", "</p>"}, tick)
		},
	})

	comp := def.New()
	require.NoError(t, comp.Mount(context.Background()))
	return runtime, comp
}

func TestNewRequiresMountedComponent(t *testing.T) {
	runtime, _ := newPreviewComponent(t)

	_, err := New(DefaultConfig(), runtime, nil)
	assert.Error(t, err)

	def, ok := runtime.Definition("demo-clock")
	require.True(t, ok)
	_, err = New(DefaultConfig(), runtime, def.New())
	assert.Error(t, err)
}

func TestHandleIndex(t *testing.T) {
	runtime, comp := newPreviewComponent(t)
	server, err := New(DefaultConfig(), runtime, comp)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<p>0</p>")
	assert.Contains(t, rec.Body.String(), "mosaic preview")
	assert.Contains(t, rec.Body.String(), "/ws")
}

func TestHandleIndexRejectsOtherPaths(t *testing.T) {
	runtime, comp := newPreviewComponent(t)
	server, err := New(DefaultConfig(), runtime, comp)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	runtime, comp := newPreviewComponent(t)
	server, err := New(DefaultConfig(), runtime, comp)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "demo-clock", payload["component"])
	assert.EqualValues(t, 0, payload["clients"])
}

func TestHandleStaticRejectsTraversal(t *testing.T) {
	runtime, comp := newPreviewComponent(t)
	cfg := DefaultConfig()
	cfg.AssetDir = t.TempDir()

	server, err := New(cfg, runtime, comp)
	require.NoError(t, err)
	defer server.watcher.Stop()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "http://localhost/static/x", nil)
	req.URL.Path = "/static/../secret"
	server.handleStatic(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckOrigin(t *testing.T) {
	runtime, comp := newPreviewComponent(t)
	cfg := DefaultConfig()
	cfg.AllowedOrigins = []string{"http://app.example.test:3000"}

	server, err := New(cfg, runtime, comp)
	require.NoError(t, err)

	tests := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{name: "own host", origin: "http://localhost:8080", allowed: true},
		{name: "loopback", origin: "http://127.0.0.1:8080", allowed: true},
		{name: "configured origin", origin: "http://app.example.test:3000", allowed: true},
		{name: "missing origin", origin: "", allowed: false},
		{name: "other host", origin: "http://evil.example.com", allowed: false},
		{name: "wrong scheme", origin: "ftp://localhost:8080", allowed: false},
		{name: "unparseable", origin: "http://[::1:8080", allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.allowed, server.checkOrigin(req))
		})
	}
}

func TestWebSocketRejectsBadOrigin(t *testing.T) {
	runtime, comp := newPreviewComponent(t)
	server, err := New(DefaultConfig(), runtime, comp)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRepaintPushesRenderToClients(t *testing.T) {
	runtime, comp := newPreviewComponent(t)
	cfg := DefaultConfig()

	server, err := New(cfg, runtime, comp)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go server.runHub(ctx)

	ts := httptest.NewServer(server.Handler())
	defer ts.Close()
	cfg.AllowedOrigins = []string{ts.URL}

	conn, _, err := websocket.Dial(ctx, ts.URL+"/ws", &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{ts.URL}},
	})
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool {
		server.clientsMutex.RLock()
		defer server.clientsMutex.RUnlock()
		return len(server.clients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, comp.Set(ctx, "tick", 1))

	readCtx, readCancel := context.WithTimeout(ctx, 3*time.Second)
	defer readCancel()
	_, data, err := conn.Read(readCtx)
	require.NoError(t, err)

	var msg UpdateMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "render", msg.Type)
	assert.Contains(t, msg.Content, "<p>1</p>")
}

func TestShutdownClosesClientsAndStopsPushing(t *testing.T) {
	runtime, comp := newPreviewComponent(t)
	cfg := DefaultConfig()

	server, err := New(cfg, runtime, comp)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go server.runHub(ctx)

	ts := httptest.NewServer(server.Handler())
	defer ts.Close()
	cfg.AllowedOrigins = []string{ts.URL}

	conn, _, err := websocket.Dial(ctx, ts.URL+"/ws", &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{ts.URL}},
	})
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool {
		server.clientsMutex.RLock()
		defer server.clientsMutex.RUnlock()
		return len(server.clients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, server.Shutdown(ctx))
	require.NoError(t, server.Shutdown(ctx))

	readCtx, readCancel := context.WithTimeout(ctx, 2*time.Second)
	defer readCancel()
	_, _, err = conn.Read(readCtx)
	assert.Error(t, err)
}
