package goghostex

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadAPIConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goghostex.yaml")
	content := []byte(`
endpoint: https://testnet.binance.vision
api_key: file-key
api_secret_key: file-secret
recv_window: 3000
timezone: UTC
log_level: debug
ws_write_timeout: 3s
ws_dump: true
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("GOGHOSTEX_API_KEY", "env-key")

	config, err := LoadAPIConfig(path, map[string]interface{}{
		"ws_endpoint": "wss://example.invalid",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://testnet.binance.vision", config.Endpoint)
	assert.Equal(t, "wss://example.invalid", config.WsEndpoint)
	assert.Equal(t, "env-key", config.ApiKey)
	assert.Equal(t, "file-secret", config.ApiSecretKey)
	assert.Equal(t, int64(3000), config.RecvWindow)
	assert.Equal(t, "UTC", config.Location.String())
	assert.NotNil(t, config.HttpClient)
	assert.NotNil(t, config.Logger)
	assert.True(t, config.Logger.Core().Enabled(zapcore.DebugLevel))
	assert.Equal(t, 3*time.Second, config.WsWriteTimeout)
	assert.Equal(t, DEFAULT_WS_HANDSHAKE_TIMEOUT, config.WsHandshakeTimeout)

	wsConfig := config.WsConfig()
	assert.Equal(t, 3*time.Second, wsConfig.WriteTimeout)
	assert.True(t, wsConfig.IsDump)
}

func TestLoadAPIConfig_Defaults(t *testing.T) {
	config, err := LoadAPIConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(DEFAULT_RECV_WINDOW_MS), config.RecvWindow)
	assert.Empty(t, config.ApiKey)
	assert.NotNil(t, config.Location)
}

func TestLoadAPIConfig_Errors(t *testing.T) {
	_, err := LoadAPIConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "goghostex.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timezone: Nowhere/Land\n"), 0o600))
	_, err = LoadAPIConfig(path, nil)
	assert.Error(t, err)
}

func TestAPIConfig_Init(t *testing.T) {
	config := (&APIConfig{ProxyUrl: "socks5://127.0.0.1:1090"}).Init()
	assert.Equal(t, int64(DEFAULT_RECV_WINDOW_MS), config.RecvWindow)
	require.NotNil(t, config.HttpClient)
	assert.NotNil(t, config.Logger)

	wsConfig := config.WsConfig()
	assert.Equal(t, "socks5://127.0.0.1:1090", wsConfig.ProxyUrl)
	assert.Same(t, config.Logger, wsConfig.Logger)
	assert.Equal(t, DEFAULT_WS_HANDSHAKE_TIMEOUT, wsConfig.HandshakeTimeout)
	assert.Equal(t, DEFAULT_WS_WRITE_TIMEOUT, wsConfig.WriteTimeout)
	assert.Equal(t, []string{DEFAULT_USER_AGENT}, wsConfig.ReqHeaders["User-Agent"])
	assert.False(t, wsConfig.IsDump)
}

func TestNewLogger_Level(t *testing.T) {
	assert.True(t, NewLogger("DEBUG").Core().Enabled(zapcore.DebugLevel))
	assert.False(t, NewLogger("warn").Core().Enabled(zapcore.InfoLevel))
	assert.False(t, NewLogger("nonsense").Core().Enabled(zapcore.DebugLevel))
	assert.True(t, NewLogger("nonsense").Core().Enabled(zapcore.InfoLevel))
}
