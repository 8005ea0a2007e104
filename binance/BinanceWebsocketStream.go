package binance

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	. "github.com/strengthening/goghostex"
)

// SpotStream is the handle of a combined stream. It forwards commands to
// the actor goroutine owning the socket; the handler is never called
// concurrently with itself, also not across a Reconnect.
type SpotStream struct {
	// lifetime bounds every actor generation of the handle
	lifetime context.Context
	wsConfig *WsConfig
	baseUrl  string
	handler  StreamHandler
	logger   *zap.Logger

	mu    sync.Mutex
	actor *streamActor
}

func NewSpotStream(ctx context.Context, config *APIConfig, handler StreamHandler) (*SpotStream, error) {
	if handler == nil {
		return nil, errors.New("stream handler is required")
	}
	config.Init()
	var baseUrl = config.WsEndpoint
	if baseUrl == "" {
		baseUrl = WS_ENDPOINT
	}

	var deliver sync.Mutex
	var stream = &SpotStream{
		lifetime: ctx,
		wsConfig: config.WsConfig(),
		baseUrl:  baseUrl,
		handler: func(event Event) {
			deliver.Lock()
			defer deliver.Unlock()
			handler(event)
		},
		logger: config.Logger.With(zap.String("exchange", BINANCE)),
	}
	stream.spawn()
	return stream, nil
}

// spawn installs and starts a new actor, returning the one it replaced.
func (this *SpotStream) spawn() (actor, previous *streamActor) {
	actor = newStreamActor(this.wsConfig, this.baseUrl, this.handler, this.logger)
	this.mu.Lock()
	previous = this.actor
	this.actor = actor
	this.mu.Unlock()
	go actor.run(this.lifetime)
	return actor, previous
}

func (this *SpotStream) current() *streamActor {
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.actor
}

// send hands cmd to the actor and waits for the result. A stopped actor
// answers ErrStreamClosed.
func (this *SpotStream) send(ctx context.Context, cmd streamCommand) (commandResult, error) {
	return sendCommand(ctx, this.current(), cmd)
}

func sendCommand(ctx context.Context, actor *streamActor, cmd streamCommand) (commandResult, error) {
	cmd.ctx = ctx
	cmd.reply = make(chan commandResult, 1)

	select {
	case actor.commands <- cmd:
	case <-actor.done:
		return commandResult{}, ErrStreamClosed
	case <-ctx.Done():
		return commandResult{}, ctx.Err()
	}

	select {
	case result := <-cmd.reply:
		return result, nil
	case <-ctx.Done():
		return commandResult{}, ctx.Err()
	}
}

// Subscribe adds streams such as "btcusdt@trade". Names already subscribed
// are ignored. The error is the transport error of the actor, if any.
func (this *SpotStream) Subscribe(ctx context.Context, names ...string) error {
	result, err := this.send(ctx, streamCommand{kind: commandSubscribe, names: names})
	if err != nil {
		return err
	}
	return result.err
}

func (this *SpotStream) Unsubscribe(ctx context.Context, names ...string) error {
	result, err := this.send(ctx, streamCommand{kind: commandUnsubscribe, names: names})
	if err != nil {
		return err
	}
	return result.err
}

// ListSubscriptions returns the subscribed stream names, sorted.
func (this *SpotStream) ListSubscriptions(ctx context.Context) ([]string, error) {
	result, err := this.send(ctx, streamCommand{kind: commandList})
	if err != nil {
		return nil, err
	}
	return result.names, nil
}

// Shutdown stops the actor and closes its socket.
func (this *SpotStream) Shutdown(ctx context.Context) error {
	return shutdownActor(ctx, this.current())
}

func shutdownActor(ctx context.Context, actor *streamActor) error {
	if _, err := sendCommand(ctx, actor, streamCommand{kind: commandShutdown}); err != nil {
		return err
	}
	select {
	case <-actor.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until the stream stopped for good, a Reconnect in between
// does not count.
func (this *SpotStream) Wait(ctx context.Context) error {
	for {
		var actor = this.current()
		select {
		case <-actor.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		if this.current() == actor {
			return nil
		}
	}
}

// Reconnect replaces the actor with a fresh one and replays the
// subscriptions. Failing steps are logged and skipped, their errors are
// returned together.
func (this *SpotStream) Reconnect(ctx context.Context) error {
	var errs error

	names, err := this.ListSubscriptions(ctx)
	if err != nil {
		this.logger.Warn("reconnect: list subscriptions", zap.Error(err))
		errs = multierr.Append(errs, err)
	}

	// the new actor is installed first so Wait never sees a gap
	var actor, previous = this.spawn()
	if err := shutdownActor(ctx, previous); err != nil && err != ErrStreamClosed {
		this.logger.Warn("reconnect: shutdown", zap.Error(err))
		errs = multierr.Append(errs, err)
	}

	this.logger.Info("stream reconnecting", zap.String("actor_id", actor.id), zap.Strings("streams", names))
	if len(names) > 0 {
		if err := this.Subscribe(ctx, names...); err != nil {
			this.logger.Warn("reconnect: subscribe", zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
