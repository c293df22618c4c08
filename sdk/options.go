package sdk

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/EpicStep/discord-integration-go/presence"
)

// Version is the DISCORD_VERSION handed to DiscordCreate.
const Version = 3

// CreateFlags control whether the SDK insists on a running Discord client.
type CreateFlags uint64

const (
	CreateFlagsDefault CreateFlags = iota
	CreateFlagsNoRequireDiscord
)

type LogLevel int32

const (
	LogLevelError LogLevel = iota + 1
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// ActivityActionType is the kind of invite being sent or received.
type ActivityActionType int32

const (
	ActivityActionJoin ActivityActionType = iota + 1
	ActivityActionSpectate
)

// JoinRequestReply answers an "Ask to Join" request.
type JoinRequestReply int32

const (
	JoinRequestReplyNo JoinRequestReply = iota
	JoinRequestReplyYes
	JoinRequestReplyIgnore
)

// Events receives the activity manager events. Nil fields are skipped.
// Handlers run on the goroutine calling RunCallbacks.
type Events struct {
	OnActivityJoin        func(secret string)
	OnActivitySpectate    func(secret string)
	OnActivityJoinRequest func(user User)
	OnActivityInvite      func(action ActivityActionType, user User, activity presence.Activity)
}

// Options ...
type Options struct {
	ClientID int64
	Flags    CreateFlags

	// LibraryPath defaults to the platform library name next to the executable.
	LibraryPath string

	Events Events

	// Logger receives the SDK's own log output at LogLevel and above.
	Logger   zerolog.Logger
	LogLevel LogLevel
}

func (o *Options) setDefaults() {
	if o.LibraryPath == "" {
		o.LibraryPath = defaultLibraryPath()
	}

	if o.LogLevel == 0 {
		o.LogLevel = LogLevelWarn
	}
}

// LibraryName is the file name of the Game SDK for the running platform.
func LibraryName() string {
	switch runtime.GOOS {
	case "windows":
		return "discord_game_sdk.dll"
	case "darwin":
		return "discord_game_sdk.dylib"
	default:
		return "discord_game_sdk.so"
	}
}

func defaultLibraryPath() string {
	executable, err := os.Executable()
	if err != nil {
		return LibraryName()
	}

	return filepath.Join(filepath.Dir(executable), LibraryName())
}

func (l LogLevel) level() zerolog.Level {
	switch l {
	case LogLevelError:
		return zerolog.ErrorLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelInfo:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}
