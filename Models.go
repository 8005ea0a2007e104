package goghostex

import (
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

/*
	models about API config
*/
type APIConfig struct {
	HttpClient     *http.Client
	Endpoint       string // rest endpoint of spot, savings and account apis
	FutureEndpoint string // rest endpoint of usd-m futures apis
	WsEndpoint     string // stream endpoint without the /ws or /stream path
	ApiKey         string
	ApiSecretKey   string
	ProxyUrl       string
	RecvWindow     int64 // milliseconds, signed requests only
	Location       *time.Location
	Logger         *zap.Logger

	WsHandshakeTimeout time.Duration
	WsWriteTimeout     time.Duration
	WsDump             bool // log the websocket handshake response at debug level
}

// Init fills the zero fields with defaults, it is safe to call more than once.
func (config *APIConfig) Init() *APIConfig {
	if config.HttpClient == nil {
		config.HttpClient = newHttpClient(config.ProxyUrl)
	}
	if config.RecvWindow == 0 {
		config.RecvWindow = DEFAULT_RECV_WINDOW_MS
	}
	if config.WsHandshakeTimeout == 0 {
		config.WsHandshakeTimeout = DEFAULT_WS_HANDSHAKE_TIMEOUT
	}
	if config.WsWriteTimeout == 0 {
		config.WsWriteTimeout = DEFAULT_WS_WRITE_TIMEOUT
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Logger == nil {
		config.Logger = NewLogger(DEFAULT_LOG_LEVEL)
	}
	return config
}

// WsConfig derives the websocket dial config sharing proxy and logger.
func (config *APIConfig) WsConfig() *WsConfig {
	var builder = NewWsBuilder().
		WsUrl(config.WsEndpoint).
		ProxyUrl(config.ProxyUrl).
		ReqHeader("User-Agent", DEFAULT_USER_AGENT).
		HandshakeTimeout(config.WsHandshakeTimeout).
		WriteTimeout(config.WsWriteTimeout).
		Logger(config.Logger)
	if config.WsDump {
		builder.Dump()
	}
	return builder.Build()
}

func newHttpClient(proxyUrl string) *http.Client {
	var transport = http.DefaultTransport.(*http.Transport).Clone()
	if proxyUrl != "" {
		if proxy, err := url.Parse(proxyUrl); err == nil {
			transport.Proxy = http.ProxyURL(proxy)
		}
	}
	return &http.Client{
		Transport: transport,
		Timeout:   DEFAULT_HTTP_TIMEOUT_SEC * time.Second,
	}
}
