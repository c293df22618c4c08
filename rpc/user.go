package rpc

import (
	"fmt"
	"strconv"

	"github.com/EpicStep/discord-integration-go/presence"
)

const (
	avatarURLFormat        = "https://cdn.discordapp.com/avatars/%d/%s.png"
	defaultAvatarURLFormat = "https://cdn.discordapp.com/embed/avatars/%d.png"
)

// JoinRequest is a user asking to join the current party.
type JoinRequest struct {
	UserID        int64
	Username      string
	Discriminator int
	AvatarURL     string
}

// Invite is an activity invite received from another user.
type Invite struct {
	Action   InviteAction
	UserID   int64
	Username string
	Activity presence.Activity
}

func newJoinRequest(id int64, username, discriminator, avatar string) JoinRequest {
	// Migrated accounts report "0", which parses to the zero discriminator.
	disc, _ := strconv.Atoi(discriminator)

	return JoinRequest{
		UserID:        id,
		Username:      username,
		Discriminator: disc,
		AvatarURL:     AvatarURL(id, disc, avatar),
	}
}

// AvatarURL returns the CDN url of a user's avatar, falling back to the
// default avatar when the user has none.
func AvatarURL(userID int64, discriminator int, avatar string) string {
	if avatar != "" {
		return fmt.Sprintf(avatarURLFormat, userID, avatar)
	}

	index := int64(discriminator % 5)
	if discriminator == 0 {
		index = (userID >> 22) % 6
	}

	return fmt.Sprintf(defaultAvatarURLFormat, index)
}
