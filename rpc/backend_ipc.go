package rpc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/EpicStep/discord-integration-go/internal/discordjson"
	"github.com/EpicStep/discord-integration-go/presence"
	"github.com/EpicStep/discord-integration-go/proto"
	"github.com/EpicStep/discord-integration-go/transport"
)

// IPCOptions configures the local socket backend.
type IPCOptions struct {
	Transport transport.Options

	// CommandTimeout bounds each command sent to Discord.
	CommandTimeout time.Duration
}

// IPC returns a factory for a backend speaking Discord's local RPC protocol
// over its socket or named pipe. It needs no native library, but cannot
// send or accept invites nor register launch commands.
func IPC(opts IPCOptions) BackendFactory {
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = 10 * time.Second
	}

	return func(clientID int64, events BackendEvents, logger zerolog.Logger) (Backend, error) {
		return openIPC(clientID, events, logger, opts)
	}
}

var subscribedEvents = []proto.EventType{
	proto.EventTypeActivityJoin,
	proto.EventTypeActivitySpectate,
	proto.EventTypeActivityJoinRequest,
}

type ipcBackend struct {
	conn   *proto.Conn
	events BackendEvents
	logger zerolog.Logger
	pid    int

	commandTimeout time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	runDone chan struct{}
	runErr  error

	// Work for the command goroutine, in submission order.
	commandsMux sync.Mutex
	commands    []func(ctx context.Context)
	stopped     bool
	wake        chan struct{}

	// Completions and events waiting for RunCallbacks.
	queueMux sync.Mutex
	queue    []func()
}

func openIPC(clientID int64, events BackendEvents, logger zerolog.Logger, opts IPCOptions) (Backend, error) {
	ctx, cancel := context.WithCancel(context.Background())

	b := &ipcBackend{
		events:         events,
		logger:         logger,
		pid:            os.Getpid(),
		commandTimeout: opts.CommandTimeout,
		ctx:            ctx,
		cancel:         cancel,
		runDone:        make(chan struct{}),
		wake:           make(chan struct{}, 1),
	}

	b.conn = proto.New(proto.Options{
		ClientID:  strconv.FormatInt(clientID, 10),
		Handler:   proto.HandlerFunc(b.onEvent),
		Logger:    logger,
		Transport: opts.Transport,
	})

	ready := make(chan struct{})

	go func() {
		defer close(b.runDone)

		b.runErr = b.conn.Run(ctx, func(ctx context.Context) error {
			for _, event := range subscribedEvents {
				if err := b.conn.Subscribe(ctx, event); err != nil {
					return err
				}
			}

			close(ready)

			return b.serve(ctx)
		})

		b.stop()
	}()

	select {
	case <-ready:
		return b, nil
	case <-b.runDone:
		cancel()
		return nil, b.runErr
	}
}

// serve runs queued commands one at a time.
func (b *ipcBackend) serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.wake:
		}

		for {
			b.commandsMux.Lock()
			if len(b.commands) == 0 {
				b.commandsMux.Unlock()
				break
			}

			command := b.commands[0]
			b.commands = b.commands[1:]
			b.commandsMux.Unlock()

			command(ctx)
		}
	}
}

// stop fails the commands that will never run.
func (b *ipcBackend) stop() {
	b.commandsMux.Lock()
	commands := b.commands
	b.commands = nil
	b.stopped = true
	b.commandsMux.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, command := range commands {
		command(ctx)
	}
}

func (b *ipcBackend) do(command func(ctx context.Context) error, done func(error)) {
	b.commandsMux.Lock()
	if b.stopped {
		b.commandsMux.Unlock()
		b.enqueue(func() { done(proto.ErrConnectionClosed) })

		return
	}

	b.commands = append(b.commands, func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, b.commandTimeout)
		defer cancel()

		err := command(ctx)
		b.enqueue(func() { done(err) })
	})
	b.commandsMux.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *ipcBackend) enqueue(f func()) {
	b.queueMux.Lock()
	b.queue = append(b.queue, f)
	b.queueMux.Unlock()
}

func (b *ipcBackend) UpdateActivity(activity presence.Activity, done func(error)) error {
	payload := ipcActivity(activity)

	b.do(func(ctx context.Context) error {
		return b.conn.SetActivity(ctx, b.pid, payload)
	}, done)

	return nil
}

func (b *ipcBackend) ClearActivity(done func(error)) error {
	b.do(func(ctx context.Context) error {
		return b.conn.SetActivity(ctx, b.pid, nil)
	}, done)

	return nil
}

func (b *ipcBackend) SendRequestReply(userID int64, reply JoinRequestReply, done func(error)) error {
	id := strconv.FormatInt(userID, 10)

	switch reply {
	case ReplyYes:
		b.do(func(ctx context.Context) error {
			return b.conn.SendActivityJoinInvite(ctx, id)
		}, done)
	case ReplyNo:
		b.do(func(ctx context.Context) error {
			return b.conn.CloseActivityRequest(ctx, id)
		}, done)
	case ReplyIgnore:
		b.enqueue(func() { done(nil) })
	default:
		return fmt.Errorf("unknown join request reply %d", reply)
	}

	return nil
}

func (b *ipcBackend) SendInvite(int64, InviteAction, string, func(error)) error {
	return fmt.Errorf("send invite over ipc: %w", errors.ErrUnsupported)
}

func (b *ipcBackend) AcceptInvite(int64, func(error)) error {
	return fmt.Errorf("accept invite over ipc: %w", errors.ErrUnsupported)
}

func (b *ipcBackend) RegisterCommand(string) error {
	return fmt.Errorf("register command over ipc: %w", errors.ErrUnsupported)
}

func (b *ipcBackend) RegisterSteam(uint32) error {
	return fmt.Errorf("register steam over ipc: %w", errors.ErrUnsupported)
}

// RunCallbacks delivers queued completions and events. It reports the
// error that ended the connection, if any.
func (b *ipcBackend) RunCallbacks() error {
	b.queueMux.Lock()
	queue := b.queue
	b.queue = nil
	b.queueMux.Unlock()

	for _, f := range queue {
		f()
	}

	select {
	case <-b.runDone:
		if b.runErr != nil {
			return fmt.Errorf("discord ipc disconnected: %w", b.runErr)
		}

		return proto.ErrConnectionClosed
	default:
		return nil
	}
}

func (b *ipcBackend) Close() error {
	b.cancel()
	<-b.runDone

	return nil
}

func (b *ipcBackend) onEvent(eventType proto.EventType, data []byte) {
	switch eventType {
	case proto.EventTypeActivityJoin, proto.EventTypeActivitySpectate:
		var event proto.ActivitySecretEvent
		if err := discordjson.Unmarshal(data, &event); err != nil {
			b.logger.Debug().Err(err).Str("event", string(eventType)).Msg("Dropped malformed event")
			return
		}

		handler := b.events.Join
		if eventType == proto.EventTypeActivitySpectate {
			handler = b.events.Spectate
		}

		if handler != nil {
			b.enqueue(func() { handler(event.Secret) })
		}
	case proto.EventTypeActivityJoinRequest:
		var event proto.ActivityJoinRequestEvent
		if err := discordjson.Unmarshal(data, &event); err != nil {
			b.logger.Debug().Err(err).Str("event", string(eventType)).Msg("Dropped malformed event")
			return
		}

		id, err := strconv.ParseInt(event.User.ID, 10, 64)
		if err != nil {
			b.logger.Debug().Err(err).Msg("Dropped join request with invalid user id")
			return
		}

		if b.events.JoinRequest != nil {
			request := newJoinRequest(id, event.User.Username, event.User.Discriminator, event.User.Avatar)
			b.enqueue(func() { b.events.JoinRequest(request) })
		}
	}
}

// ipcActivity converts an activity to its RPC form, where timestamps are
// milliseconds and the party size is a [current, max] pair.
func ipcActivity(a presence.Activity) *proto.Activity {
	out := &proto.Activity{
		Type:     int(a.Type),
		State:    a.State,
		Details:  a.Details,
		Instance: a.Instance,
	}

	if a.Timestamps.Start != 0 || a.Timestamps.End != 0 {
		out.Timestamps = &proto.ActivityTimestamps{
			Start: a.Timestamps.Start * 1000,
			End:   a.Timestamps.End * 1000,
		}
	}

	if a.Assets != (presence.ActivityAssets{}) {
		out.Assets = &proto.ActivityAssets{
			LargeImage: a.Assets.LargeImage,
			LargeText:  a.Assets.LargeText,
			SmallImage: a.Assets.SmallImage,
			SmallText:  a.Assets.SmallText,
		}
	}

	if a.Party.ID != "" || a.Party.Size.MaxSize > 0 {
		out.Party = &proto.ActivityParty{
			ID:      a.Party.ID,
			Privacy: int(a.Party.Privacy),
		}

		if a.Party.Size.MaxSize > 0 {
			out.Party.Size = []int32{a.Party.Size.CurrentSize, a.Party.Size.MaxSize}
		}
	}

	if a.Secrets != (presence.ActivitySecrets{}) {
		out.Secrets = &proto.ActivitySecrets{
			Match:    a.Secrets.Match,
			Join:     a.Secrets.Join,
			Spectate: a.Secrets.Spectate,
		}
	}

	return out
}
