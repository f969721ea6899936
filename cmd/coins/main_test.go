package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lonng/coins/internal/log"
	"github.com/lonng/coins/test/client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestServe(t *testing.T) {
	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<h1>coins</h1>"), 0644))

	cfg, err := loadConfig(viper.New(), "", map[string]any{"static": static, "audit": time.Duration(0)})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	e, err := newEngine(cfg, log.NewZapLogger(zaptest.NewLogger(t)), reg)
	require.NoError(t, err)
	require.NoError(t, e.Startup())
	defer e.Shutdown()

	server := httptest.NewServer(newMux(e, cfg, reg))
	defer server.Close()

	t.Run("static", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "<h1>coins</h1>")
	})

	t.Run("websocket", func(t *testing.T) {
		cl, err := client.Dial("ws"+strings.TrimPrefix(server.URL, "http")+cfg.Path, nil)
		require.NoError(t, err)
		defer cl.Close()

		require.NoError(t, cl.Increment())
		require.NoError(t, cl.Increment())
		total, err := cl.Query(5 * time.Second)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(server.URL + cfg.Metrics)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "coins_increments_total 2")
		assert.Contains(t, string(body), "coins_sessions_created_total 1")
	})
}

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{true, false} {
		l, err := newLogger(debug)
		require.NoError(t, err)
		assert.NotNil(t, l)
	}
}
