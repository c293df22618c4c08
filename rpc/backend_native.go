package rpc

import (
	"github.com/rs/zerolog"

	"github.com/EpicStep/discord-integration-go/presence"
	"github.com/EpicStep/discord-integration-go/sdk"
)

// Native returns a factory for the Game SDK backend. An empty libraryPath
// loads the library from the executable's directory.
func Native(libraryPath string) BackendFactory {
	return func(clientID int64, events BackendEvents, logger zerolog.Logger) (Backend, error) {
		core, err := sdk.Open(sdk.Options{
			ClientID:    clientID,
			Flags:       sdk.CreateFlagsNoRequireDiscord,
			LibraryPath: libraryPath,
			Logger:      logger,
			Events:      nativeEvents(events),
		})
		if err != nil {
			return nil, err
		}

		return &nativeBackend{core: core}, nil
	}
}

func nativeEvents(events BackendEvents) sdk.Events {
	return sdk.Events{
		OnActivityJoin:     events.Join,
		OnActivitySpectate: events.Spectate,
		OnActivityJoinRequest: func(user sdk.User) {
			if events.JoinRequest != nil {
				events.JoinRequest(newJoinRequest(user.ID, user.Username, user.Discriminator, user.Avatar))
			}
		},
		OnActivityInvite: func(action sdk.ActivityActionType, user sdk.User, activity presence.Activity) {
			if events.Invite != nil {
				events.Invite(Invite{
					Action:   action,
					UserID:   user.ID,
					Username: user.Username,
					Activity: activity,
				})
			}
		},
	}
}

type nativeBackend struct {
	core *sdk.Core
}

func resultCallback(done func(error)) func(sdk.Result) {
	return func(r sdk.Result) {
		done(r.Err())
	}
}

func (b *nativeBackend) UpdateActivity(activity presence.Activity, done func(error)) error {
	return b.core.UpdateActivity(activity, resultCallback(done))
}

func (b *nativeBackend) ClearActivity(done func(error)) error {
	return b.core.ClearActivity(resultCallback(done))
}

func (b *nativeBackend) SendRequestReply(userID int64, reply JoinRequestReply, done func(error)) error {
	return b.core.SendRequestReply(userID, reply, resultCallback(done))
}

func (b *nativeBackend) SendInvite(userID int64, action InviteAction, content string, done func(error)) error {
	return b.core.SendInvite(userID, action, content, resultCallback(done))
}

func (b *nativeBackend) AcceptInvite(userID int64, done func(error)) error {
	return b.core.AcceptInvite(userID, resultCallback(done))
}

func (b *nativeBackend) RegisterCommand(command string) error {
	return b.core.RegisterCommand(command)
}

func (b *nativeBackend) RegisterSteam(steamID uint32) error {
	return b.core.RegisterSteam(steamID)
}

func (b *nativeBackend) RunCallbacks() error {
	return b.core.RunCallbacks()
}

func (b *nativeBackend) Close() error {
	return b.core.Close()
}
