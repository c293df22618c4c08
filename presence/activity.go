package presence

import (
	"errors"
	"fmt"
)

// MaxTextLength is the largest string, in Windows-1252 bytes, that fits a
// 128 byte native text buffer together with its NUL terminator.
const MaxTextLength = 127

// ErrTextTooLong is returned by Activity.Validate for oversized text fields.
var ErrTextTooLong = errors.New("text field too long")

type ActivityType int32

const (
	ActivityTypePlaying ActivityType = iota
	ActivityTypeStreaming
	ActivityTypeListening
	ActivityTypeWatching
)

type PartyPrivacy int32

const (
	PartyPrivacyPrivate PartyPrivacy = iota
	PartyPrivacyPublic
)

// Activity is the flattened record handed to the Discord client.
type Activity struct {
	Type          ActivityType
	ApplicationID int64
	Name          string
	State         string
	Details       string
	Timestamps    ActivityTimestamps
	Assets        ActivityAssets
	Party         ActivityParty
	Secrets       ActivitySecrets
	Instance      bool

	SupportedPlatforms uint32
}

// ActivityTimestamps are Unix seconds; zero means unset.
type ActivityTimestamps struct {
	Start int64
	End   int64
}

type ActivityAssets struct {
	LargeImage string
	LargeText  string
	SmallImage string
	SmallText  string
}

type ActivityParty struct {
	ID      string
	Size    PartySize
	Privacy PartyPrivacy
}

type PartySize struct {
	CurrentSize int32
	MaxSize     int32
}

type ActivitySecrets struct {
	Match    string
	Join     string
	Spectate string
}

// Validate reports every text field that would not fit its native buffer.
func (a *Activity) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"name", a.Name},
		{"state", a.State},
		{"details", a.Details},
		{"assets.large_image", a.Assets.LargeImage},
		{"assets.large_text", a.Assets.LargeText},
		{"assets.small_image", a.Assets.SmallImage},
		{"assets.small_text", a.Assets.SmallText},
		{"party.id", a.Party.ID},
		{"secrets.match", a.Secrets.Match},
		{"secrets.join", a.Secrets.Join},
		{"secrets.spectate", a.Secrets.Spectate},
	}

	var errs []error

	for _, field := range fields {
		if n := TextLength(field.value); n > MaxTextLength {
			errs = append(errs, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrTextTooLong, field.name, n, MaxTextLength))
		}
	}

	return errors.Join(errs...)
}

// IsEmpty reports whether the activity carries nothing worth displaying.
func (a *Activity) IsEmpty() bool {
	return a.State == "" &&
		a.Details == "" &&
		a.Timestamps == ActivityTimestamps{} &&
		a.Assets == ActivityAssets{} &&
		a.Party.ID == ""
}
