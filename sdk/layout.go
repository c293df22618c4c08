package sdk

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/EpicStep/discord-integration-go/presence"
)

// Layouts below mirror discord_game_sdk.h on 64-bit targets. All integers are
// little endian, text fields are NUL terminated Windows-1252 buffers.

const textSize = 128

// DiscordActivity.
const (
	activityOffType               = 0
	activityOffApplicationID      = 8
	activityOffName               = 16
	activityOffState              = 144
	activityOffDetails            = 272
	activityOffTimestampStart     = 400
	activityOffTimestampEnd       = 408
	activityOffLargeImage         = 416
	activityOffLargeText          = 544
	activityOffSmallImage         = 672
	activityOffSmallText          = 800
	activityOffPartyID            = 928
	activityOffPartyCurrentSize   = 1056
	activityOffPartyMaxSize       = 1060
	activityOffPartyPrivacy       = 1064
	activityOffSecretMatch        = 1068
	activityOffSecretJoin         = 1196
	activityOffSecretSpectate     = 1324
	activityOffInstance           = 1452
	activityOffSupportedPlatforms = 1456

	// ActivitySize is sizeof(struct DiscordActivity).
	ActivitySize = 1464
)

// DiscordUser.
const (
	userOffID             = 0
	userOffUsername       = 8
	userOffDiscriminator  = 264
	userOffAvatar         = 272
	userOffBot            = 400
	userUsernameSize      = 256
	userDiscriminatorSize = 8

	// UserSize is sizeof(struct DiscordUser).
	UserSize = 408
)

// DiscordCreateParams. Every events pointer is followed by a uint32 version
// padded to 8 bytes.
const (
	createOffClientID          = 0
	createOffFlags             = 8
	createOffEvents            = 16
	createOffEventData         = 24
	createOffApplicationEvents = 32
	createOffActivityEvents    = 80

	createManagerCount  = 12
	createManagerStride = 16

	// CreateParamsSize is sizeof(struct DiscordCreateParams).
	CreateParamsSize = 224
)

// Manager versions in DiscordCreateParams order.
var managerVersions = [createManagerCount]uint32{
	1, // application
	1, // user
	1, // image
	1, // activity
	1, // relationship
	1, // lobby
	1, // network
	2, // overlay
	1, // storage
	1, // store
	1, // voice
	1, // achievement
}

// Encoders carry transform state, so each conversion gets its own.
func ansiDecoder() *encoding.Decoder {
	return charmap.Windows1252.NewDecoder()
}

// User is a Discord user as reported by the Game SDK.
type User struct {
	ID            int64
	Username      string
	Discriminator string
	Avatar        string
	Bot           bool
}

// EncodeActivity writes a into a DiscordActivity buffer.
func EncodeActivity(a presence.Activity) ([]byte, error) {
	buf := make([]byte, ActivitySize)

	binary.LittleEndian.PutUint32(buf[activityOffType:], uint32(a.Type))
	binary.LittleEndian.PutUint64(buf[activityOffApplicationID:], uint64(a.ApplicationID))

	texts := []struct {
		name   string
		offset int
		value  string
	}{
		{"name", activityOffName, a.Name},
		{"state", activityOffState, a.State},
		{"details", activityOffDetails, a.Details},
		{"assets.large_image", activityOffLargeImage, a.Assets.LargeImage},
		{"assets.large_text", activityOffLargeText, a.Assets.LargeText},
		{"assets.small_image", activityOffSmallImage, a.Assets.SmallImage},
		{"assets.small_text", activityOffSmallText, a.Assets.SmallText},
		{"party.id", activityOffPartyID, a.Party.ID},
		{"secrets.match", activityOffSecretMatch, a.Secrets.Match},
		{"secrets.join", activityOffSecretJoin, a.Secrets.Join},
		{"secrets.spectate", activityOffSecretSpectate, a.Secrets.Spectate},
	}

	for _, text := range texts {
		if err := putText(buf[text.offset:text.offset+textSize], text.value); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", text.name, err)
		}
	}

	binary.LittleEndian.PutUint64(buf[activityOffTimestampStart:], uint64(a.Timestamps.Start))
	binary.LittleEndian.PutUint64(buf[activityOffTimestampEnd:], uint64(a.Timestamps.End))
	binary.LittleEndian.PutUint32(buf[activityOffPartyCurrentSize:], uint32(a.Party.Size.CurrentSize))
	binary.LittleEndian.PutUint32(buf[activityOffPartyMaxSize:], uint32(a.Party.Size.MaxSize))
	binary.LittleEndian.PutUint32(buf[activityOffPartyPrivacy:], uint32(a.Party.Privacy))

	if a.Instance {
		buf[activityOffInstance] = 1
	}

	binary.LittleEndian.PutUint32(buf[activityOffSupportedPlatforms:], a.SupportedPlatforms)

	return buf, nil
}

// DecodeActivity reads a DiscordActivity buffer.
func DecodeActivity(buf []byte) (presence.Activity, error) {
	if len(buf) < ActivitySize {
		return presence.Activity{}, fmt.Errorf("activity buffer is %d bytes, want %d", len(buf), ActivitySize)
	}

	return presence.Activity{
		Type:          presence.ActivityType(binary.LittleEndian.Uint32(buf[activityOffType:])),
		ApplicationID: int64(binary.LittleEndian.Uint64(buf[activityOffApplicationID:])),
		Name:          getText(buf[activityOffName : activityOffName+textSize]),
		State:         getText(buf[activityOffState : activityOffState+textSize]),
		Details:       getText(buf[activityOffDetails : activityOffDetails+textSize]),
		Timestamps: presence.ActivityTimestamps{
			Start: int64(binary.LittleEndian.Uint64(buf[activityOffTimestampStart:])),
			End:   int64(binary.LittleEndian.Uint64(buf[activityOffTimestampEnd:])),
		},
		Assets: presence.ActivityAssets{
			LargeImage: getText(buf[activityOffLargeImage : activityOffLargeImage+textSize]),
			LargeText:  getText(buf[activityOffLargeText : activityOffLargeText+textSize]),
			SmallImage: getText(buf[activityOffSmallImage : activityOffSmallImage+textSize]),
			SmallText:  getText(buf[activityOffSmallText : activityOffSmallText+textSize]),
		},
		Party: presence.ActivityParty{
			ID: getText(buf[activityOffPartyID : activityOffPartyID+textSize]),
			Size: presence.PartySize{
				CurrentSize: int32(binary.LittleEndian.Uint32(buf[activityOffPartyCurrentSize:])),
				MaxSize:     int32(binary.LittleEndian.Uint32(buf[activityOffPartyMaxSize:])),
			},
			Privacy: presence.PartyPrivacy(binary.LittleEndian.Uint32(buf[activityOffPartyPrivacy:])),
		},
		Secrets: presence.ActivitySecrets{
			Match:    getText(buf[activityOffSecretMatch : activityOffSecretMatch+textSize]),
			Join:     getText(buf[activityOffSecretJoin : activityOffSecretJoin+textSize]),
			Spectate: getText(buf[activityOffSecretSpectate : activityOffSecretSpectate+textSize]),
		},
		Instance:           buf[activityOffInstance] != 0,
		SupportedPlatforms: binary.LittleEndian.Uint32(buf[activityOffSupportedPlatforms:]),
	}, nil
}

// DecodeUser reads a DiscordUser buffer.
func DecodeUser(buf []byte) (User, error) {
	if len(buf) < UserSize {
		return User{}, fmt.Errorf("user buffer is %d bytes, want %d", len(buf), UserSize)
	}

	return User{
		ID:            int64(binary.LittleEndian.Uint64(buf[userOffID:])),
		Username:      getText(buf[userOffUsername : userOffUsername+userUsernameSize]),
		Discriminator: getText(buf[userOffDiscriminator : userOffDiscriminator+userDiscriminatorSize]),
		Avatar:        getText(buf[userOffAvatar : userOffAvatar+textSize]),
		Bot:           buf[userOffBot] != 0,
	}, nil
}

// EncodeUser writes u into a DiscordUser buffer.
func EncodeUser(u User) ([]byte, error) {
	buf := make([]byte, UserSize)

	binary.LittleEndian.PutUint64(buf[userOffID:], uint64(u.ID))

	if err := putText(buf[userOffUsername:userOffUsername+userUsernameSize], u.Username); err != nil {
		return nil, fmt.Errorf("failed to encode username: %w", err)
	}

	if err := putText(buf[userOffDiscriminator:userOffDiscriminator+userDiscriminatorSize], u.Discriminator); err != nil {
		return nil, fmt.Errorf("failed to encode discriminator: %w", err)
	}

	if err := putText(buf[userOffAvatar:userOffAvatar+textSize], u.Avatar); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}

	if u.Bot {
		buf[userOffBot] = 1
	}

	return buf, nil
}

type createParams struct {
	clientID       int64
	flags          CreateFlags
	events         uintptr
	eventData      uintptr
	activityEvents uintptr
}

func encodeCreateParams(p createParams) []byte {
	buf := make([]byte, CreateParamsSize)

	binary.LittleEndian.PutUint64(buf[createOffClientID:], uint64(p.clientID))
	binary.LittleEndian.PutUint64(buf[createOffFlags:], uint64(p.flags))
	binary.LittleEndian.PutUint64(buf[createOffEvents:], uint64(p.events))
	binary.LittleEndian.PutUint64(buf[createOffEventData:], uint64(p.eventData))

	for i, version := range managerVersions {
		off := createOffApplicationEvents + i*createManagerStride
		binary.LittleEndian.PutUint32(buf[off+8:], version)
	}

	binary.LittleEndian.PutUint64(buf[createOffActivityEvents:], uint64(p.activityEvents))

	return buf
}

// putText encodes s into dst, leaving room for the NUL terminator.
func putText(dst []byte, s string) error {
	encoded, err := presence.EncodeANSI(s)
	if err != nil {
		return err
	}

	if len(encoded) >= len(dst) {
		return fmt.Errorf("%w: %d bytes, buffer holds %d", presence.ErrTextTooLong, len(encoded), len(dst)-1)
	}

	copy(dst, encoded)

	return nil
}

func getText(src []byte) string {
	if i := bytes.IndexByte(src, 0); i >= 0 {
		src = src[:i]
	}

	decoded, err := ansiDecoder().Bytes(src)
	if err != nil {
		return string(src)
	}

	return string(decoded)
}

// cString returns s as a NUL terminated Windows-1252 string.
func cString(s string) ([]byte, error) {
	encoded, err := presence.EncodeANSI(s)
	if err != nil {
		return nil, err
	}

	if bytes.IndexByte([]byte(encoded), 0) >= 0 {
		return nil, fmt.Errorf("string %q contains a NUL byte", s)
	}

	return append([]byte(encoded), 0), nil
}
