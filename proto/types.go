package proto

import (
	"github.com/EpicStep/discord-integration-go/internal/discordjson"
)

const defaultRPCVersion = "1"

const (
	handshakeOpcode uint32 = iota
	frameOpcode
	closeOpcode
	pingOpcode
	pongOpcode
)

// Commands (https://discord.com/developers/docs/topics/rpc#commands-and-events).
const (
	CommandDispatch               = "DISPATCH"
	CommandSetActivity            = "SET_ACTIVITY"
	CommandSubscribe              = "SUBSCRIBE"
	CommandUnsubscribe            = "UNSUBSCRIBE"
	CommandSendActivityJoinInvite = "SEND_ACTIVITY_JOIN_INVITE"
	CommandCloseActivityRequest   = "CLOSE_ACTIVITY_REQUEST"
)

// EventType defines event types (https://discord.com/developers/docs/topics/rpc#commands-and-events).
type EventType string

const (
	// EventTypeReady is dispatched once after the handshake.
	EventTypeReady EventType = "READY"
	// EventTypeError marks a failed command reply.
	EventTypeError EventType = "ERROR"

	EventTypeActivityJoin        EventType = "ACTIVITY_JOIN"
	EventTypeActivitySpectate    EventType = "ACTIVITY_SPECTATE"
	EventTypeActivityJoinRequest EventType = "ACTIVITY_JOIN_REQUEST"
)

type handshakePacket struct {
	Version  string `json:"v"`
	ClientID string `json:"client_id"`
}

type framePacket struct {
	Command string                 `json:"cmd"`
	Data    discordjson.RawMessage `json:"data,omitempty"`
	Args    discordjson.RawMessage `json:"args,omitempty"`
	Event   EventType              `json:"evt,omitempty"`
	Nonce   string                 `json:"nonce,omitempty"`
}

// Activity is the SET_ACTIVITY activity object. Timestamps are unix
// milliseconds.
type Activity struct {
	Type       int                 `json:"type,omitempty"`
	State      string              `json:"state,omitempty"`
	Details    string              `json:"details,omitempty"`
	Timestamps *ActivityTimestamps `json:"timestamps,omitempty"`
	Assets     *ActivityAssets     `json:"assets,omitempty"`
	Party      *ActivityParty      `json:"party,omitempty"`
	Secrets    *ActivitySecrets    `json:"secrets,omitempty"`
	Instance   bool                `json:"instance"`
}

type ActivityTimestamps struct {
	Start int64 `json:"start,omitempty"`
	End   int64 `json:"end,omitempty"`
}

type ActivityAssets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

// ActivityParty carries its size as [current, max].
type ActivityParty struct {
	ID      string  `json:"id,omitempty"`
	Size    []int32 `json:"size,omitempty"`
	Privacy int     `json:"privacy,omitempty"`
}

type ActivitySecrets struct {
	Match    string `json:"match,omitempty"`
	Join     string `json:"join,omitempty"`
	Spectate string `json:"spectate,omitempty"`
}

// User is the partial user carried by READY and join requests.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
	Bot           bool   `json:"bot"`
}

// ReadyEvent is the payload of READY.
type ReadyEvent struct {
	Version int  `json:"v"`
	User    User `json:"user"`
}

// ActivitySecretEvent is the payload of ACTIVITY_JOIN and ACTIVITY_SPECTATE.
type ActivitySecretEvent struct {
	Secret string `json:"secret"`
}

// ActivityJoinRequestEvent is the payload of ACTIVITY_JOIN_REQUEST.
type ActivityJoinRequestEvent struct {
	User User `json:"user"`
}

type setActivityArgs struct {
	PID      int       `json:"pid"`
	Activity *Activity `json:"activity"`
}

type userArgs struct {
	UserID string `json:"user_id"`
}
