package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EpicStep/discord-integration-go/presence"
	"github.com/EpicStep/discord-integration-go/rpc"
)

const exampleConfig = `
client_id: 1234567890
backend: IPC
auto_reply: yes
presence:
  type: watching
  state: In a match
  details: Ranked
  elapsed: true
  large_image:
    key: map
    text: Summoner's Rift
  small_image:
    key: champion
    text: Ahri
  party:
    size: 2
    max: 5
    public: true
  join: true
  spectate: true
  in_progress: true
`

func TestParseConfig(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte(exampleConfig))
	require.NoError(t, err)

	assert.Equal(t, int64(1234567890), cfg.ClientID)
	assert.Equal(t, backendIPC, cfg.Backend)

	reply, ok := cfg.JoinReply()
	assert.True(t, ok)
	assert.Equal(t, rpc.ReplyYes, reply)

	started := time.Now().Add(-time.Minute)

	rp, err := cfg.Presence.Build(started)
	require.NoError(t, err)

	activity := rp.ToActivity()
	require.NoError(t, activity.Validate())

	assert.Equal(t, presence.ActivityTypeWatching, activity.Type)
	assert.Equal(t, "In a match", activity.State)
	assert.Equal(t, "Ranked", activity.Details)
	assert.Equal(t, started.Unix(), activity.Timestamps.Start)
	assert.Zero(t, activity.Timestamps.End)
	assert.Equal(t, "map", activity.Assets.LargeImage)
	assert.Equal(t, "Summoner's Rift", activity.Assets.LargeText)
	assert.Equal(t, "champion", activity.Assets.SmallImage)
	assert.Equal(t, "Ahri", activity.Assets.SmallText)
	assert.Equal(t, presence.PartySize{CurrentSize: 2, MaxSize: 5}, activity.Party.Size)
	assert.Equal(t, presence.PartyPrivacyPublic, activity.Party.Privacy)
	assert.NotEmpty(t, activity.Party.ID)
	assert.NotEmpty(t, activity.Secrets.Join)
	assert.NotEmpty(t, activity.Secrets.Spectate)
	assert.True(t, activity.Instance)
}

func TestParseConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte("presence:\n  state: Idle\n"))
	require.NoError(t, err)

	assert.Equal(t, backendNative, cfg.Backend)

	_, ok := cfg.JoinReply()
	assert.False(t, ok)

	rp, err := cfg.Presence.Build(time.Now())
	require.NoError(t, err)

	activity := rp.ToActivity()
	assert.Equal(t, presence.ActivityTypePlaying, activity.Type)
	assert.Zero(t, activity.Timestamps.Start)
	assert.Empty(t, activity.Secrets.Join)
}

func TestParseConfigCountdown(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte("presence:\n  ends_in: 10m\n  elapsed: true\n"))
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.Presence.EndsIn)

	rp, err := cfg.Presence.Build(time.Now().Add(-time.Minute))
	require.NoError(t, err)

	activity := rp.ToActivity()
	assert.Zero(t, activity.Timestamps.Start)
	assert.Greater(t, activity.Timestamps.End, time.Now().Unix())
}

func TestParseConfigRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig([]byte(`
backend: carrier-pigeon
auto_reply: maybe
presence:
  type: dancing
  party:
    size: 6
    max: 5
`))
	require.ErrorIs(t, err, errInvalidConfig)

	for _, want := range []string{"carrier-pigeon", "maybe", "dancing", "6/5"} {
		assert.Contains(t, err.Error(), want)
	}

	_, err = ParseConfig([]byte("presence: ["))
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "presence.yaml")
	require.NoError(t, os.WriteFile(path, []byte(exampleConfig), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1234567890), cfg.ClientID)
	assert.NotNil(t, cfg.BackendFactory())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
