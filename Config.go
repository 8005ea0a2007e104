package goghostex

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const CONFIG_ENV_PREFIX = "GOGHOSTEX"

// fileConfig is the on-disk shape of APIConfig.
type fileConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	FutureEndpoint string `mapstructure:"future_endpoint"`
	WsEndpoint     string `mapstructure:"ws_endpoint"`
	ApiKey         string `mapstructure:"api_key"`
	ApiSecretKey   string `mapstructure:"api_secret_key"`
	ProxyUrl       string `mapstructure:"proxy_url"`
	RecvWindow     int64  `mapstructure:"recv_window"`
	Timezone       string `mapstructure:"timezone"`
	LogLevel       string `mapstructure:"log_level"`

	WsHandshakeTimeout time.Duration `mapstructure:"ws_handshake_timeout"`
	WsWriteTimeout     time.Duration `mapstructure:"ws_write_timeout"`
	WsDump             bool          `mapstructure:"ws_dump"`
}

// LoadAPIConfig reads path (yaml, json or toml) when it is not empty, then
// applies GOGHOSTEX_* environment variables, e.g. GOGHOSTEX_API_KEY.
func LoadAPIConfig(path string, defaults map[string]interface{}) (*APIConfig, error) {
	var v = viper.New()
	v.SetDefault("recv_window", DEFAULT_RECV_WINDOW_MS)
	v.SetDefault("timezone", "Local")
	v.SetDefault("log_level", DEFAULT_LOG_LEVEL)
	v.SetDefault("ws_handshake_timeout", DEFAULT_WS_HANDSHAKE_TIMEOUT)
	v.SetDefault("ws_write_timeout", DEFAULT_WS_WRITE_TIMEOUT)
	v.SetDefault("ws_dump", false)
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(CONFIG_ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about.
	for _, key := range []string{"endpoint", "future_endpoint", "ws_endpoint", "api_key", "api_secret_key", "proxy_url"} {
		_ = v.BindEnv(key)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	location, err := time.LoadLocation(fc.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "load timezone %s", fc.Timezone)
	}

	var config = &APIConfig{
		Endpoint:       fc.Endpoint,
		FutureEndpoint: fc.FutureEndpoint,
		WsEndpoint:     fc.WsEndpoint,
		ApiKey:         fc.ApiKey,
		ApiSecretKey:   fc.ApiSecretKey,
		ProxyUrl:       fc.ProxyUrl,
		RecvWindow:     fc.RecvWindow,
		Location:       location,
		Logger:         NewLogger(fc.LogLevel),

		WsHandshakeTimeout: fc.WsHandshakeTimeout,
		WsWriteTimeout:     fc.WsWriteTimeout,
		WsDump:             fc.WsDump,
	}
	return config.Init(), nil
}
