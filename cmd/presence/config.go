package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/EpicStep/discord-integration-go/presence"
	"github.com/EpicStep/discord-integration-go/rpc"
	"github.com/EpicStep/discord-integration-go/transport"
)

const (
	backendNative = "native"
	backendIPC    = "ipc"
)

var errInvalidConfig = errors.New("invalid config")

// Config is the YAML file describing the presence to publish.
type Config struct {
	ClientID    int64  `yaml:"client_id"`
	Backend     string `yaml:"backend"`
	LibraryPath string `yaml:"library_path"`

	// AutoReply answers every join request with yes, no or ignore. Empty
	// leaves requests unanswered.
	AutoReply string `yaml:"auto_reply"`

	Presence PresenceConfig `yaml:"presence"`
}

type PresenceConfig struct {
	Type    string `yaml:"type"`
	State   string `yaml:"state"`
	Details string `yaml:"details"`

	// Elapsed shows the time since the program started. EndsIn shows a
	// countdown instead and wins when both are set.
	Elapsed bool          `yaml:"elapsed"`
	EndsIn  time.Duration `yaml:"ends_in"`

	LargeImage *ImageConfig `yaml:"large_image"`
	SmallImage *ImageConfig `yaml:"small_image"`
	Party      *PartyConfig `yaml:"party"`

	Join       bool `yaml:"join"`
	Spectate   bool `yaml:"spectate"`
	InProgress bool `yaml:"in_progress"`
}

type ImageConfig struct {
	Key  string `yaml:"key"`
	Text string `yaml:"text"`
}

type PartyConfig struct {
	Size   int32 `yaml:"size"`
	Max    int32 `yaml:"max"`
	Public bool  `yaml:"public"`
}

var activityTypes = map[string]presence.ActivityType{
	"":          presence.ActivityTypePlaying,
	"playing":   presence.ActivityTypePlaying,
	"streaming": presence.ActivityTypeStreaming,
	"listening": presence.ActivityTypeListening,
	"watching":  presence.ActivityTypeWatching,
}

var joinReplies = map[string]rpc.JoinRequestReply{
	"yes":    rpc.ReplyYes,
	"no":     rpc.ReplyNo,
	"ignore": rpc.ReplyIgnore,
}

// LoadConfig reads and validates the config at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Backend = strings.ToLower(cfg.Backend)
	if cfg.Backend == "" {
		cfg.Backend = backendNative
	}

	cfg.AutoReply = strings.ToLower(cfg.AutoReply)
	cfg.Presence.Type = strings.ToLower(cfg.Presence.Type)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.Backend != backendNative && c.Backend != backendIPC {
		errs = append(errs, fmt.Errorf("%w: unknown backend %q", errInvalidConfig, c.Backend))
	}

	if _, ok := joinReplies[c.AutoReply]; c.AutoReply != "" && !ok {
		errs = append(errs, fmt.Errorf("%w: unknown auto_reply %q", errInvalidConfig, c.AutoReply))
	}

	if _, ok := activityTypes[c.Presence.Type]; !ok {
		errs = append(errs, fmt.Errorf("%w: unknown presence type %q", errInvalidConfig, c.Presence.Type))
	}

	if c.Presence.EndsIn < 0 {
		errs = append(errs, fmt.Errorf("%w: ends_in must be positive", errInvalidConfig))
	}

	if p := c.Presence.Party; p != nil && (p.Size < 0 || p.Max < p.Size) {
		errs = append(errs, fmt.Errorf("%w: party size %d/%d", errInvalidConfig, p.Size, p.Max))
	}

	return errors.Join(errs...)
}

// BackendFactory returns the backend selected by the config.
func (c *Config) BackendFactory() rpc.BackendFactory {
	if c.Backend == backendIPC {
		return rpc.IPC(rpc.IPCOptions{
			Transport: transport.Options{
				RetryElapsed: 30 * time.Second,
			},
		})
	}

	return rpc.Native(c.LibraryPath)
}

// JoinReply reports the configured automatic join request reply.
func (c *Config) JoinReply() (rpc.JoinRequestReply, bool) {
	reply, ok := joinReplies[c.AutoReply]

	return reply, ok
}

// Build turns the config into a presence. started anchors the elapsed timer.
func (p PresenceConfig) Build(started time.Time) (*presence.RichPresence, error) {
	rp := presence.New().
		SetType(activityTypes[p.Type]).
		SetState(p.State).
		SetDetails(p.Details).
		SetInProgress(p.InProgress)

	switch {
	case p.EndsIn > 0:
		ts, err := presence.NewTimestamp(time.Now().Add(p.EndsIn), presence.TimestampLeft)
		if err != nil {
			return nil, err
		}

		rp.SetTimestamp(ts)
	case p.Elapsed:
		ts, err := presence.NewTimestamp(started, presence.TimestampElapsed)
		if err != nil {
			return nil, err
		}

		rp.SetTimestamp(ts)
	}

	if p.LargeImage != nil {
		rp.SetLargeImage(presence.NewMedia(p.LargeImage.Key, p.LargeImage.Text))
	}

	if p.SmallImage != nil {
		rp.SetSmallImage(presence.NewMedia(p.SmallImage.Key, p.SmallImage.Text))
	}

	if p.Party != nil {
		party := presence.NewParty(p.Party.Size, p.Party.Max)
		if p.Party.Public {
			party.SetPrivacy(presence.PartyPrivacyPublic)
		}

		rp.SetParty(party)
	}

	if p.Join {
		rp.SetJoinButton()
	}

	if p.Spectate {
		rp.SetSpectateButton()
	}

	return rp, nil
}
