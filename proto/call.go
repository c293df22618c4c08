package proto

import (
	"context"
	"fmt"
	"sync"

	"github.com/nats-io/nuid"

	"github.com/EpicStep/discord-integration-go/internal/discordjson"
)

// pendingCalls maps nonces to the callers waiting for their reply.
type pendingCalls struct {
	mu     sync.Mutex
	calls  map[string]chan framePacket
	closed bool
}

func newPendingCalls() *pendingCalls {
	return &pendingCalls{
		calls: make(map[string]chan framePacket),
	}
}

func (p *pendingCalls) add(nonce string) (<-chan framePacket, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrConnectionClosed
	}

	// One slot, so resolve never blocks the read loop.
	ch := make(chan framePacket, 1)
	p.calls[nonce] = ch

	return ch, nil
}

func (p *pendingCalls) remove(nonce string) {
	p.mu.Lock()
	delete(p.calls, nonce)
	p.mu.Unlock()
}

func (p *pendingCalls) resolve(frame framePacket) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, ok := p.calls[frame.Nonce]
	if !ok {
		return false
	}

	delete(p.calls, frame.Nonce)
	ch <- frame

	return true
}

// closeAll refuses new calls. Waiting callers observe Conn.done.
func (p *pendingCalls) closeAll() {
	p.mu.Lock()
	p.closed = true
	p.calls = make(map[string]chan framePacket)
	p.mu.Unlock()
}

// Invoke sends command with raw args and waits for the reply data. An ERROR
// reply is returned as Error.
func (c *Conn) Invoke(ctx context.Context, command string, args []byte) ([]byte, error) {
	return c.invoke(ctx, command, "", args)
}

func (c *Conn) invoke(ctx context.Context, command string, event EventType, args []byte) ([]byte, error) {
	if !c.connected.Load() {
		return nil, ErrNotConnected
	}

	nonce := nuid.Next()

	packet, err := discordjson.Marshal(framePacket{
		Command: command,
		Args:    args,
		Event:   event,
		Nonce:   nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal frame: %w", err)
	}

	reply, err := c.calls.add(nonce)
	if err != nil {
		return nil, err
	}

	defer c.calls.remove(nonce)

	if err = c.conn.Write(ctx, frameOpcode, packet); err != nil {
		return nil, fmt.Errorf("failed to write frame: %w", err)
	}

	c.opts.Logger.Trace().Str("cmd", command).Str("nonce", nonce).Msg("Sent command")

	select {
	case frame := <-reply:
		return frameResult(frame)
	case <-c.done:
		return nil, ErrConnectionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func frameResult(frame framePacket) ([]byte, error) {
	if frame.Event != EventTypeError {
		return frame.Data, nil
	}

	var e Error

	if err := discordjson.Unmarshal(frame.Data, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal error: %w", err)
	}

	return nil, e
}
