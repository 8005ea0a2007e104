package binance

import (
	"context"
	"sort"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	. "github.com/strengthening/goghostex"
)

const (
	WS_METHOD_SUBSCRIBE   = "SUBSCRIBE"
	WS_METHOD_UNSUBSCRIBE = "UNSUBSCRIBE"
)

type commandKind int

const (
	commandSubscribe commandKind = iota
	commandUnsubscribe
	commandList
	commandShutdown
)

type streamCommand struct {
	kind  commandKind
	ctx   context.Context // bounds the dial of a subscribe
	names []string
	reply chan commandResult
}

type commandResult struct {
	names []string
	err   error
}

// WSRequestBN is the SUBSCRIBE / UNSUBSCRIBE control frame.
type WSRequestBN struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	Id     uint64   `json:"id"`
}

type frameKind int

const (
	frameText frameKind = iota
	framePing
	frameError
)

type streamFrame struct {
	kind frameKind
	data []byte
	err  error
}

// streamConn is one socket and the reader goroutine feeding frames.
// retired is closed once the actor stops reading frames.
type streamConn struct {
	ws      *websocket.Conn
	frames  chan streamFrame
	retired chan struct{}
}

// streamActor owns the socket and the subscription set. Only its run loop
// touches them, everything else talks to it through commands.
type streamActor struct {
	id       string
	wsConfig *WsConfig
	baseUrl  string
	handler  StreamHandler
	logger   *zap.Logger

	commands chan streamCommand
	done     chan struct{}

	subscriptions map[string]struct{}
	conn          *streamConn
	requestId     uint64
}

func newStreamActor(wsConfig *WsConfig, baseUrl string, handler StreamHandler, logger *zap.Logger) *streamActor {
	var id = UUID()
	return &streamActor{
		id:            id,
		wsConfig:      wsConfig,
		baseUrl:       strings.TrimRight(baseUrl, "/"),
		handler:       handler,
		logger:        logger.With(zap.String("actor_id", id)),
		commands:      make(chan streamCommand),
		done:          make(chan struct{}),
		subscriptions: make(map[string]struct{}),
	}
}

// run is the actor loop. It ends on a shutdown command or when ctx is done.
func (this *streamActor) run(ctx context.Context) {
	defer close(this.done)
	defer this.disconnect(true)

	this.logger.Debug("stream actor started")
	for {
		var frames <-chan streamFrame
		if this.conn != nil {
			frames = this.conn.frames
		}

		select {
		case <-ctx.Done():
			this.logger.Debug("stream actor stopped", zap.Error(ctx.Err()))
			return
		case cmd := <-this.commands:
			if cmd.kind == commandShutdown {
				cmd.reply <- commandResult{}
				this.logger.Debug("stream actor shut down")
				return
			}
			cmd.reply <- this.apply(cmd)
		case frame := <-frames:
			this.onFrame(frame)
		}
	}
}

func (this *streamActor) apply(cmd streamCommand) commandResult {
	switch cmd.kind {
	case commandSubscribe:
		return commandResult{err: this.subscribe(cmd.ctx, cmd.names)}
	case commandUnsubscribe:
		return commandResult{err: this.unsubscribe(cmd.names)}
	case commandList:
		return commandResult{names: this.list()}
	default:
		return commandResult{}
	}
}

// subscribe adds the names not subscribed yet. A live socket gets a
// SUBSCRIBE frame for them, otherwise the socket is opened on the full set.
func (this *streamActor) subscribe(ctx context.Context, names []string) error {
	var added = make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := this.subscriptions[name]; ok {
			continue
		}
		this.subscriptions[name] = struct{}{}
		added = append(added, name)
	}
	if len(added) == 0 {
		return nil
	}

	if this.conn != nil {
		return this.request(WS_METHOD_SUBSCRIBE, added)
	}
	return this.connect(ctx)
}

func (this *streamActor) unsubscribe(names []string) error {
	var removed = make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := this.subscriptions[name]; !ok {
			continue
		}
		delete(this.subscriptions, name)
		removed = append(removed, name)
	}
	if len(removed) == 0 {
		return nil
	}

	var err error
	if this.conn != nil {
		err = this.request(WS_METHOD_UNSUBSCRIBE, removed)
	}
	if len(this.subscriptions) == 0 {
		this.disconnect(true)
	}
	return err
}

func (this *streamActor) list() []string {
	var names = make([]string, 0, len(this.subscriptions))
	for name := range this.subscriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (this *streamActor) streamUrl() string {
	return this.baseUrl + "/stream?streams=" + strings.Join(this.list(), "/")
}

// connect dials the combined stream url. On failure the names stay in the
// set so the next subscribe retries with all of them.
func (this *streamActor) connect(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var streamUrl = this.streamUrl()
	ws, err := this.wsConfig.Dial(ctx, streamUrl)
	if err != nil {
		this.logger.Warn("stream connect failed", zap.String("url", streamUrl), zap.Error(err))
		return err
	}

	var conn = &streamConn{
		ws:      ws,
		frames:  make(chan streamFrame),
		retired: make(chan struct{}),
	}
	ws.SetPingHandler(func(appData string) error {
		select {
		case conn.frames <- streamFrame{kind: framePing, data: []byte(appData)}:
		case <-conn.retired:
		}
		return nil
	})
	this.conn = conn
	go this.read(conn)

	this.logger.Info("stream connected", zap.String("url", streamUrl))
	return nil
}

func (this *streamActor) read(conn *streamConn) {
	for {
		var _, data, err = conn.ws.ReadMessage()
		var frame = streamFrame{kind: frameText, data: data}
		if err != nil {
			frame = streamFrame{kind: frameError, err: err}
		}
		select {
		case conn.frames <- frame:
		case <-conn.retired:
			return
		}
		if err != nil {
			return
		}
	}
}

func (this *streamActor) request(method string, names []string) error {
	this.requestId++
	var req = WSRequestBN{Method: method, Params: names, Id: this.requestId}
	if err := this.wsConfig.WriteJSON(this.conn.ws, req); err != nil {
		this.logger.Warn("stream request failed", zap.String("method", method), zap.Error(err))
		this.disconnect(false)
		return err
	}
	this.logger.Debug("stream request sent",
		zap.String("method", method), zap.Strings("params", names), zap.Uint64("id", req.Id))
	return nil
}

func (this *streamActor) onFrame(frame streamFrame) {
	switch frame.kind {
	case frameError:
		var err error = &TransportError{Op: "read", Err: frame.err}
		if websocket.IsCloseError(frame.err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			this.logger.Info("stream closed by server", zap.Error(err))
		} else {
			this.logger.Warn("stream disconnected", zap.Error(err))
		}
		this.disconnect(false)
	case framePing:
		if err := this.wsConfig.WriteControl(this.conn.ws, websocket.PongMessage, frame.data); err != nil {
			this.logger.Warn("stream pong failed", zap.Error(err))
		}
	case frameText:
		event, reply, err := decodeFrame(frame.data)
		if err != nil {
			this.logger.Warn("stream frame dropped", zap.Error(err))
			return
		}
		if reply != nil {
			if reply.Error != nil {
				this.logger.Warn("stream request rejected",
					zap.Uint64("id", reply.Id), zap.Int("code", reply.Error.Code), zap.String("msg", reply.Error.Msg))
			} else {
				this.logger.Debug("stream request acknowledged", zap.Uint64("id", reply.Id))
			}
			return
		}
		this.handler(event)
	}
}

// disconnect retires the current socket. graceful sends a close frame first.
func (this *streamActor) disconnect(graceful bool) {
	if this.conn == nil {
		return
	}
	var conn = this.conn
	this.conn = nil
	close(conn.retired)
	if graceful {
		var msg = websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = this.wsConfig.WriteControl(conn.ws, websocket.CloseMessage, msg)
	}
	_ = conn.ws.Close()
	this.logger.Debug("stream disconnected", zap.Bool("graceful", graceful))
}
