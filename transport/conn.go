// Package transport implements the framing of Discord's local IPC socket.
package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// MaxFrameSize is the largest frame payload the Discord client accepts.
const MaxFrameSize = 64 * 1024

const headerSize = 4 + 4

// ErrFrameTooLarge is returned for payloads above MaxFrameSize.
var ErrFrameTooLarge = errors.New("frame too large")

// DialFunc opens the IPC endpoint with the given name, e.g. discord-ipc-0.
type DialFunc func(ctx context.Context, name string) (net.Conn, error)

// Options ...
type Options struct {
	// Dial defaults to the platform socket or named pipe.
	Dial DialFunc

	// Pipes is the number of discord-ipc-N endpoints probed per attempt.
	Pipes int

	// RetryInterval and RetryElapsed bound the backoff between sweeps.
	// A zero RetryElapsed makes a single sweep.
	RetryInterval time.Duration
	RetryElapsed  time.Duration

	Logger zerolog.Logger
}

func (o *Options) setDefaults() {
	if o.Dial == nil {
		o.Dial = openConn
	}

	if o.Pipes <= 0 {
		o.Pipes = 10
	}

	if o.RetryInterval <= 0 {
		o.RetryInterval = 500 * time.Millisecond
	}
}

// Conn is a framed IPC connection.
type Conn struct {
	conn net.Conn

	writeMux sync.Mutex
	readMux  sync.Mutex
}

// New connects to the first Discord client endpoint that answers.
func New(ctx context.Context, opts Options) (*Conn, error) {
	opts.setDefaults()

	var b backoff.BackOff = &backoff.StopBackOff{}

	if opts.RetryElapsed > 0 {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = opts.RetryInterval
		exp.MaxElapsedTime = opts.RetryElapsed
		b = exp
	}

	conn, err := backoff.RetryWithData(func() (net.Conn, error) {
		return sweep(ctx, opts)
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, err
	}

	return NewConn(conn), nil
}

// NewConn wraps an established connection.
func NewConn(conn net.Conn) *Conn {
	return &Conn{
		conn: conn,
	}
}

var errNoEndpoint = errors.New("no discord ipc endpoint available")

func sweep(ctx context.Context, opts Options) (net.Conn, error) {
	errs := make([]error, 0, opts.Pipes)

	for i := 0; i < opts.Pipes; i++ {
		name := "discord-ipc-" + strconv.Itoa(i)

		conn, err := opts.Dial(ctx, name)
		if err == nil {
			opts.Logger.Debug().Str("endpoint", name).Msg("Connected to discord ipc")
			return conn, nil
		}

		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}

		errs = append(errs, err)
	}

	return nil, fmt.Errorf("%w: %w", errNoEndpoint, errors.Join(errs...))
}

func (c *Conn) Write(ctx context.Context, opcode uint32, data []byte) error {
	if len(data) > MaxFrameSize-headerSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(data))
	}

	c.writeMux.Lock()
	defer c.writeMux.Unlock()

	if err := c.conn.SetWriteDeadline(time.Time{}); err != nil {
		return fmt.Errorf("failed to reset write deadline: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetWriteDeadline(deadline); err != nil {
			return fmt.Errorf("failed to set write deadline: %w", err)
		}
	}

	// opcode (uint32) and payload length (uint32) precede the payload.
	writeBuf := make([]byte, 0, headerSize+len(data))

	writeBuf = binary.LittleEndian.AppendUint32(writeBuf, opcode)
	writeBuf = binary.LittleEndian.AppendUint32(writeBuf, uint32(len(data)))
	writeBuf = append(writeBuf, data...)

	if _, err := c.conn.Write(writeBuf); err != nil {
		return fmt.Errorf("failed to write data into conn: %w", err)
	}

	return nil
}

func (c *Conn) Read(ctx context.Context) (opcode uint32, data []byte, err error) {
	c.readMux.Lock()
	defer c.readMux.Unlock()

	if err = c.conn.SetReadDeadline(time.Time{}); err != nil {
		return 0, nil, fmt.Errorf("failed to reset read deadline: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err = c.conn.SetReadDeadline(deadline); err != nil {
			return 0, nil, fmt.Errorf("failed to set read deadline: %w", err)
		}
	}

	header := make([]byte, headerSize)
	if _, err = io.ReadFull(c.conn, header); err != nil {
		return 0, nil, fmt.Errorf("failed to read header: %w", err)
	}

	opcode = binary.LittleEndian.Uint32(header[:4])
	payloadLength := binary.LittleEndian.Uint32(header[4:8])

	if payloadLength > MaxFrameSize-headerSize {
		return 0, nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, payloadLength)
	}

	data = make([]byte, payloadLength)
	if _, err = io.ReadFull(c.conn, data); err != nil {
		return 0, nil, fmt.Errorf("failed to read payload: %w", err)
	}

	return opcode, data, nil
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
