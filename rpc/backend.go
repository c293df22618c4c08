package rpc

import (
	"github.com/rs/zerolog"

	"github.com/EpicStep/discord-integration-go/presence"
	"github.com/EpicStep/discord-integration-go/sdk"
)

// JoinRequestReply answers an "Ask to Join" request.
type JoinRequestReply = sdk.JoinRequestReply

const (
	ReplyNo     = sdk.JoinRequestReplyNo
	ReplyYes    = sdk.JoinRequestReplyYes
	ReplyIgnore = sdk.JoinRequestReplyIgnore
)

// InviteAction is the kind of an activity invite.
type InviteAction = sdk.ActivityActionType

const (
	InviteJoin     = sdk.ActivityActionJoin
	InviteSpectate = sdk.ActivityActionSpectate
)

// Backend talks to the Discord client on behalf of a Client.
//
// Every method is called from the client's loop goroutine. Completions passed
// as done and the BackendEvents handlers must only run from RunCallbacks.
type Backend interface {
	UpdateActivity(activity presence.Activity, done func(error)) error
	ClearActivity(done func(error)) error
	SendRequestReply(userID int64, reply JoinRequestReply, done func(error)) error
	SendInvite(userID int64, action InviteAction, content string, done func(error)) error
	AcceptInvite(userID int64, done func(error)) error
	RegisterCommand(command string) error
	RegisterSteam(steamID uint32) error
	RunCallbacks() error
	Close() error
}

// BackendEvents are the events a backend reports during RunCallbacks.
type BackendEvents struct {
	Join        func(secret string)
	Spectate    func(secret string)
	JoinRequest func(request JoinRequest)
	Invite      func(invite Invite)
}

// BackendFactory creates a backend on the client's loop goroutine.
type BackendFactory func(clientID int64, events BackendEvents, logger zerolog.Logger) (Backend, error)
