// Package proto speaks Discord's local RPC protocol: a handshake followed by
// JSON command frames correlated by nonce, with dispatched events and
// ping/pong keepalive in between.
package proto

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/EpicStep/discord-integration-go/internal/discordjson"
	"github.com/EpicStep/discord-integration-go/transport"
)

var (
	// ErrNotConnected is returned by Invoke before the handshake completed.
	ErrNotConnected = errors.New("not connected")
	// ErrConnectionClosed is returned by Invoke when Run exits mid-call.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrAlreadyRunning is returned by a second Run.
	ErrAlreadyRunning = errors.New("already running")

	errUnexpectedHandshake = errors.New("unexpected handshake from server")
)

// Conn is one session with the Discord client.
type Conn struct {
	opts Options

	conn  *transport.Conn
	calls *pendingCalls
	pongs chan struct{}

	running   atomic.Bool
	connected atomic.Bool
	done      chan struct{}
}

// Options ...
type Options struct {
	ClientID string
	Handler  Handler

	// Transport picks the socket. Its Logger is replaced by Logger.
	Transport transport.Options
	Logger    zerolog.Logger

	DialTimeout      time.Duration
	HandshakeTimeout time.Duration
	PingTimeout      time.Duration
	PingInterval     time.Duration
}

func (o *Options) setDefaults() {
	if o.Handler == nil {
		o.Handler = discardHandler{}
	}

	if o.DialTimeout <= 0 {
		o.DialTimeout = 5 * time.Second
	}

	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = 10 * time.Second
	}

	if o.PingTimeout <= 0 {
		o.PingTimeout = 10 * time.Second
	}

	if o.PingInterval <= 0 {
		o.PingInterval = time.Minute
	}

	o.Transport.Logger = o.Logger
}

// New returns a Conn. Nothing is dialed until Run.
func New(opts Options) *Conn {
	opts.setDefaults()

	return &Conn{
		opts:  opts,
		calls: newPendingCalls(),
		pongs: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Run dials Discord, performs the handshake and serves the session while f
// runs. The session ends when f returns, ctx is done or the connection
// fails. A Conn can be run once.
func (c *Conn) Run(ctx context.Context, f func(ctx context.Context) error) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}

	defer close(c.done)
	defer c.calls.closeAll()

	dialCtx, cancel := context.WithTimeout(ctx, c.opts.DialTimeout)
	conn, err := transport.New(dialCtx, c.opts.Transport)
	cancel()

	if err != nil {
		return fmt.Errorf("failed to dial: %w", err)
	}

	defer func() {
		_ = conn.Close() //nolint:errcheck
	}()

	c.conn = conn

	if err = c.handshake(ctx); err != nil {
		return fmt.Errorf("failed to handshake: %w", err)
	}

	c.connected.Store(true)
	defer c.connected.Store(false)

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		<-egCtx.Done()
		return c.conn.Close()
	})

	eg.Go(func() error {
		return c.readLoop(egCtx)
	})

	eg.Go(func() error {
		return c.keepalive(egCtx)
	})

	eg.Go(func() error {
		return f(egCtx)
	})

	return eg.Wait()
}

func (c *Conn) readLoop(ctx context.Context) error {
	for {
		opcode, data, err := c.conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			if isTimeout(err) {
				continue
			}

			return err
		}

		if err = c.handle(ctx, opcode, data); err != nil {
			return err
		}
	}
}

func (c *Conn) handle(ctx context.Context, opcode uint32, data []byte) error {
	switch opcode {
	case frameOpcode:
		return c.handleFrame(data)
	case closeOpcode:
		return decodeClose(data)
	case pingOpcode:
		return c.conn.Write(ctx, pongOpcode, data)
	case pongOpcode:
		c.handlePong()
		return nil
	case handshakeOpcode:
		return errUnexpectedHandshake
	default:
		c.opts.Logger.Debug().Uint32("opcode", opcode).Msg("Ignoring unknown opcode")
		return nil
	}
}

// handleFrame routes replies to their caller and dispatched events to the
// handler.
func (c *Conn) handleFrame(data []byte) error {
	var frame framePacket

	if err := discordjson.Unmarshal(data, &frame); err != nil {
		return fmt.Errorf("failed to decode frame: %w", err)
	}

	if frame.Nonce != "" {
		if !c.calls.resolve(frame) {
			c.opts.Logger.Debug().Str("nonce", frame.Nonce).Msg("Dropping reply without caller")
		}

		return nil
	}

	if frame.Command == CommandDispatch && frame.Event != "" {
		c.opts.Logger.Trace().Str("evt", string(frame.Event)).Msg("Dispatching event")
		c.opts.Handler.OnEvent(frame.Event, frame.Data)
	}

	return nil
}

func decodeClose(data []byte) error {
	var closeError Error

	if err := discordjson.Unmarshal(data, &closeError); err != nil {
		return fmt.Errorf("failed to decode close frame: %w", err)
	}

	return closeError
}

func isTimeout(err error) bool {
	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
