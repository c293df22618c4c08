package proto

import (
	"context"
	"fmt"

	"github.com/EpicStep/discord-integration-go/internal/discordjson"
)

// SetActivity sets the activity of process pid. A nil activity clears it.
func (c *Conn) SetActivity(ctx context.Context, pid int, activity *Activity) error {
	return c.command(ctx, CommandSetActivity, setActivityArgs{PID: pid, Activity: activity})
}

// Subscribe asks Discord to dispatch event.
func (c *Conn) Subscribe(ctx context.Context, event EventType) error {
	_, err := c.invoke(ctx, CommandSubscribe, event, nil)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", event, err)
	}

	return nil
}

// SendActivityJoinInvite accepts the join request of userID.
func (c *Conn) SendActivityJoinInvite(ctx context.Context, userID string) error {
	return c.command(ctx, CommandSendActivityJoinInvite, userArgs{UserID: userID})
}

// CloseActivityRequest rejects the join request of userID.
func (c *Conn) CloseActivityRequest(ctx context.Context, userID string) error {
	return c.command(ctx, CommandCloseActivityRequest, userArgs{UserID: userID})
}

func (c *Conn) command(ctx context.Context, command string, args any) error {
	raw, err := discordjson.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal %s args: %w", command, err)
	}

	if _, err = c.invoke(ctx, command, "", raw); err != nil {
		return fmt.Errorf("failed to invoke %s: %w", command, err)
	}

	return nil
}
