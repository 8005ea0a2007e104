package goghostex

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WsConfig struct {
	WsUrl            string              // websocket server url, necessary
	ProxyUrl         string              // proxy url, not necessary
	ReqHeaders       map[string][]string // set the head info ,when connecting, not necessary
	HandshakeTimeout time.Duration       // not necessary, default 45 seconds
	WriteTimeout     time.Duration       // deadline of each outbound frame, not necessary
	IsDump           bool                // is print the connect info, not necessary
	Logger           *zap.Logger
}

// websocket build config
type WsBuilder struct {
	wsConfig *WsConfig
}

func NewWsBuilder() *WsBuilder {
	return &WsBuilder{&WsConfig{ReqHeaders: make(map[string][]string)}}
}

func (b *WsBuilder) WsUrl(wsUrl string) *WsBuilder {
	b.wsConfig.WsUrl = wsUrl
	return b
}

func (b *WsBuilder) ProxyUrl(proxyUrl string) *WsBuilder {
	b.wsConfig.ProxyUrl = proxyUrl
	return b
}

func (b *WsBuilder) ReqHeader(key, value string) *WsBuilder {
	b.wsConfig.ReqHeaders[key] = append(b.wsConfig.ReqHeaders[key], value)
	return b
}

func (b *WsBuilder) Dump() *WsBuilder {
	b.wsConfig.IsDump = true
	return b
}

func (b *WsBuilder) HandshakeTimeout(t time.Duration) *WsBuilder {
	b.wsConfig.HandshakeTimeout = t
	return b
}

func (b *WsBuilder) WriteTimeout(t time.Duration) *WsBuilder {
	b.wsConfig.WriteTimeout = t
	return b
}

func (b *WsBuilder) Logger(logger *zap.Logger) *WsBuilder {
	b.wsConfig.Logger = logger
	return b
}

func (b *WsBuilder) Build() *WsConfig {
	var config = *b.wsConfig
	if config.Logger == nil {
		config.Logger = NewLogger(DEFAULT_LOG_LEVEL)
	}
	return &config
}

// Dial opens a connection to wsUrl, or to the configured url when wsUrl is empty.
func (c *WsConfig) Dial(ctx context.Context, wsUrl string) (*websocket.Conn, error) {
	if wsUrl == "" {
		wsUrl = c.WsUrl
	}

	var dialer = *websocket.DefaultDialer
	if c.HandshakeTimeout > 0 {
		dialer.HandshakeTimeout = c.HandshakeTimeout
	}
	if c.ProxyUrl != "" {
		proxy, err := url.Parse(c.ProxyUrl)
		if err != nil {
			return nil, &TransportError{Op: "proxy", Err: err}
		}
		dialer.Proxy = http.ProxyURL(proxy)
	}

	conn, resp, err := dialer.DialContext(ctx, wsUrl, http.Header(c.ReqHeaders))
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: err}
	}

	if c.IsDump && resp != nil {
		dumpData, _ := httputil.DumpResponse(resp, false)
		c.logger().Debug("websocket handshake", zap.String("url", wsUrl), zap.ByteString("response", dumpData))
	}
	return conn, nil
}

// WriteJSON sends v as a text frame, bounded by WriteTimeout when set.
func (c *WsConfig) WriteJSON(conn *websocket.Conn, v interface{}) error {
	if c.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(c.WriteTimeout))
		defer func() { _ = conn.SetWriteDeadline(time.Time{}) }()
	}
	if err := conn.WriteJSON(v); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	return nil
}

func (c *WsConfig) WriteControl(conn *websocket.Conn, messageType int, data []byte) error {
	var deadline = time.Now().Add(time.Second)
	if c.WriteTimeout > 0 {
		deadline = time.Now().Add(c.WriteTimeout)
	}
	if err := conn.WriteControl(messageType, data, deadline); err != nil {
		return &TransportError{Op: "write control", Err: err}
	}
	return nil
}

func (c *WsConfig) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
