package proto

import (
	"context"
	"fmt"

	"github.com/EpicStep/discord-integration-go/internal/discordjson"
)

// handshake sends the client id and waits for READY. Discord answers a
// rejected handshake with a close frame.
func (c *Conn) handshake(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.HandshakeTimeout)
	defer cancel()

	hello, err := discordjson.Marshal(handshakePacket{
		Version:  defaultRPCVersion,
		ClientID: c.opts.ClientID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal handshake: %w", err)
	}

	if err = c.conn.Write(ctx, handshakeOpcode, hello); err != nil {
		return err
	}

	opcode, data, err := c.conn.Read(ctx)
	if err != nil {
		return err
	}

	switch opcode {
	case frameOpcode:
	case closeOpcode:
		return decodeClose(data)
	default:
		return fmt.Errorf("unexpected opcode %d", opcode)
	}

	var frame framePacket

	if err = discordjson.Unmarshal(data, &frame); err != nil {
		return fmt.Errorf("failed to decode frame: %w", err)
	}

	if frame.Event != EventTypeReady {
		return fmt.Errorf("unexpected event: %s", frame.Event)
	}

	var ready ReadyEvent
	if err = discordjson.Unmarshal(frame.Data, &ready); err == nil {
		c.opts.Logger.Debug().
			Str("user_id", ready.User.ID).
			Str("username", ready.User.Username).
			Msg("Connected to Discord")
	}

	c.opts.Handler.OnEvent(frame.Event, frame.Data)

	return nil
}
