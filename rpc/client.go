// Package rpc publishes Rich Presence through the local Discord client.
//
// A Client owns one Backend and drives it from a single goroutine locked to
// its OS thread. Calls are submitted to that goroutine and wait for the
// Discord client to confirm them. Calls made from one goroutine are applied
// in order; calls from different goroutines are not ordered relative to each
// other.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/EpicStep/discord-integration-go/presence"
)

// DefaultPumpInterval runs callbacks about 60 times per second.
const DefaultPumpInterval = time.Second / 60

// Options ...
type Options struct {
	// ClientID is the application id from the developer portal.
	ClientID int64

	// Backend defaults to the Game SDK library next to the executable.
	Backend BackendFactory

	Handler Handler
	Logger  zerolog.Logger

	PumpInterval time.Duration

	// CloseTimeout bounds how long Close waits for the activity to clear.
	CloseTimeout time.Duration
}

func (o *Options) setDefaults() {
	if o.Backend == nil {
		o.Backend = Native("")
	}

	if o.Handler == nil {
		o.Handler = noopHandler{}
	}

	if o.PumpInterval <= 0 {
		o.PumpInterval = DefaultPumpInterval
	}

	if o.CloseTimeout <= 0 {
		o.CloseTimeout = time.Second
	}
}

type request struct {
	apply  func(b Backend, done func(error)) error
	result chan error
}

// Client ...
type Client struct {
	opts Options

	requests chan request
	closing  chan struct{}
	done     chan struct{}

	// mu orders the started and closed transitions of Start and Close.
	mu      sync.Mutex
	started atomic.Bool
	closed  atomic.Bool

	closeOnce sync.Once
	closeErr  error

	// Owned by the loop goroutine.
	activitySet bool
}

// New returns a client. Nothing is loaded until Start.
func New(opts Options) *Client {
	opts.setDefaults()

	return &Client{
		opts:     opts,
		requests: make(chan request),
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start creates the backend, publishes p and starts pumping callbacks. A
// client that fails to start is closed.
func (c *Client) Start(ctx context.Context, p *presence.RichPresence) error {
	if c.closed.Load() {
		return ErrClosed
	}

	activity := p.ToActivity()
	if err := activity.Validate(); err != nil {
		return err
	}

	ready := make(chan error, 1)

	if err := c.launch(ready); err != nil {
		return err
	}

	if err := <-ready; err != nil {
		c.mu.Lock()
		c.closed.Store(true)
		c.mu.Unlock()

		return fmt.Errorf("failed to start backend: %w", err)
	}

	if err := c.updateActivity(ctx, activity); err != nil {
		_ = c.Close() //nolint:errcheck
		return err
	}

	return nil
}

// Update publishes p in place of the current activity.
func (c *Client) Update(ctx context.Context, p *presence.RichPresence) error {
	if err := c.check(); err != nil {
		return err
	}

	activity := p.ToActivity()
	if err := activity.Validate(); err != nil {
		return err
	}

	return c.updateActivity(ctx, activity)
}

func (c *Client) updateActivity(ctx context.Context, activity presence.Activity) error {
	return c.submit(ctx, func(b Backend, done func(error)) error {
		return b.UpdateActivity(activity, func(err error) {
			if err == nil {
				c.activitySet = true
			}

			done(err)
		})
	})
}

// Clear removes the activity.
func (c *Client) Clear(ctx context.Context) error {
	if err := c.check(); err != nil {
		return err
	}

	return c.submit(ctx, func(b Backend, done func(error)) error {
		return b.ClearActivity(func(err error) {
			if err == nil {
				c.activitySet = false
			}

			done(err)
		})
	})
}

// RespondToJoinRequest answers the join request of userID.
func (c *Client) RespondToJoinRequest(ctx context.Context, userID int64, reply JoinRequestReply) error {
	if err := c.check(); err != nil {
		return err
	}

	return c.submit(ctx, func(b Backend, done func(error)) error {
		return b.SendRequestReply(userID, reply, done)
	})
}

// SendInvite invites userID to join or spectate the current activity.
func (c *Client) SendInvite(ctx context.Context, userID int64, action InviteAction, content string) error {
	if err := c.check(); err != nil {
		return err
	}

	return c.submit(ctx, func(b Backend, done func(error)) error {
		return b.SendInvite(userID, action, content, done)
	})
}

// AcceptInvite accepts the pending invite from userID.
func (c *Client) AcceptInvite(ctx context.Context, userID int64) error {
	if err := c.check(); err != nil {
		return err
	}

	return c.submit(ctx, func(b Backend, done func(error)) error {
		return b.AcceptInvite(userID, done)
	})
}

// RegisterCommand registers the command Discord uses to launch the game.
func (c *Client) RegisterCommand(ctx context.Context, command string) error {
	if err := c.check(); err != nil {
		return err
	}

	return c.submit(ctx, func(b Backend, done func(error)) error {
		done(b.RegisterCommand(command))
		return nil
	})
}

// RegisterSteam registers a Steam game id to launch the game through.
func (c *Client) RegisterSteam(ctx context.Context, steamID uint32) error {
	if err := c.check(); err != nil {
		return err
	}

	return c.submit(ctx, func(b Backend, done func(error)) error {
		done(b.RegisterSteam(steamID))
		return nil
	})
}

// Close clears the activity if one was published and releases the backend.
// A second Close returns ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()

	if c.closed.Swap(true) {
		c.mu.Unlock()
		return ErrClosed
	}

	started := c.started.Load()
	c.mu.Unlock()

	if !started {
		return nil
	}

	c.closeOnce.Do(func() {
		close(c.closing)
	})

	<-c.done

	return c.closeErr
}

// launch starts the loop unless the client is already started or closed. A
// Close that returns before launch takes the lock leaves nothing running.
func (c *Client) launch(ready chan<- error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return ErrClosed
	}

	if c.started.Swap(true) {
		return ErrAlreadyStarted
	}

	go c.loop(ready)

	return nil
}

func (c *Client) check() error {
	if c.closed.Load() {
		return ErrClosed
	}

	if !c.started.Load() {
		return ErrNotStarted
	}

	return nil
}

func (c *Client) submit(ctx context.Context, apply func(b Backend, done func(error)) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := request{
		apply:  apply,
		result: make(chan error, 1),
	}

	select {
	case c.requests <- req:
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.result:
		return err
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) loop(ready chan<- error) {
	defer close(c.done)

	// Native libraries expect every call on the thread that created them.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	backend, err := c.opts.Backend(c.opts.ClientID, c.events(), c.opts.Logger)
	if err != nil {
		ready <- err
		return
	}

	ready <- nil

	c.opts.Logger.Debug().Int64("client_id", c.opts.ClientID).Msg("Started presence loop")

	ticker := time.NewTicker(c.opts.PumpInterval)
	defer ticker.Stop()

	var lastErr string

	for {
		select {
		case req := <-c.requests:
			done := func(err error) {
				select {
				case req.result <- err:
				default:
				}
			}

			if err := req.apply(backend, done); err != nil {
				done(err)
			}
		case <-ticker.C:
			if err := backend.RunCallbacks(); err != nil {
				if err.Error() != lastErr {
					c.opts.Logger.Warn().Err(err).Msg("Failed to run callbacks")
				}

				lastErr = err.Error()
			} else {
				lastErr = ""
			}
		case <-c.closing:
			c.closeErr = c.shutdown(backend, ticker)
			return
		}
	}
}

func (c *Client) shutdown(backend Backend, ticker *time.Ticker) error {
	var errs []error

	if c.activitySet {
		cleared := make(chan error, 1)

		if err := backend.ClearActivity(func(err error) { cleared <- err }); err != nil {
			errs = append(errs, fmt.Errorf("failed to clear activity: %w", err))
		} else {
			errs = append(errs, c.awaitClear(backend, ticker, cleared))
		}
	}

	if err := backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close backend: %w", err))
	}

	c.opts.Logger.Debug().Msg("Stopped presence loop")

	return errors.Join(errs...)
}

func (c *Client) awaitClear(backend Backend, ticker *time.Ticker, cleared <-chan error) error {
	timeout := time.NewTimer(c.opts.CloseTimeout)
	defer timeout.Stop()

	for {
		select {
		case err := <-cleared:
			if err != nil {
				return fmt.Errorf("failed to clear activity: %w", err)
			}

			return nil
		case <-timeout.C:
			return errors.New("timed out clearing activity")
		case <-ticker.C:
			_ = backend.RunCallbacks() //nolint:errcheck
		}
	}
}

func (c *Client) events() BackendEvents {
	return BackendEvents{
		Join:        c.opts.Handler.OnJoin,
		Spectate:    c.opts.Handler.OnSpectate,
		JoinRequest: c.opts.Handler.OnJoinRequest,
		Invite:      c.opts.Handler.OnInvite,
	}
}
