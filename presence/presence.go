// Package presence builds Rich Presence descriptions and encodes them into
// the Activity record understood by the Discord client.
package presence

// RichPresence accumulates what the game wants to show on the user's profile.
//
// Setters mutate the receiver and return it so calls can be chained. The
// tokens (match secret, party id) are drawn once from the token source when
// the presence is created, so repeated encodes of one presence agree.
type RichPresence struct {
	Type       ActivityType
	State      string
	Details    string
	Timestamp  *Timestamp
	LargeImage *Media
	SmallImage *Media
	Party      *Party
	InProgress bool

	tokens         TokenSource
	partyID        string
	matchSecret    string
	joinSecret     string
	spectateSecret string
}

// Option configures a RichPresence at creation.
type Option func(*RichPresence)

// WithTokenSource replaces the default nuid based token source.
func WithTokenSource(src TokenSource) Option {
	return func(p *RichPresence) {
		if src != nil {
			p.tokens = src
		}
	}
}

func New(opts ...Option) *RichPresence {
	p := &RichPresence{
		tokens: defaultTokenSource,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.matchSecret = p.tokens.Token()
	p.partyID = p.tokens.Token()

	return p
}

func (p *RichPresence) SetType(activityType ActivityType) *RichPresence {
	p.Type = activityType

	return p
}

func (p *RichPresence) SetState(state string) *RichPresence {
	p.State = state

	return p
}

func (p *RichPresence) SetDetails(details string) *RichPresence {
	p.Details = details

	return p
}

func (p *RichPresence) SetTimestamp(timestamp *Timestamp) *RichPresence {
	p.Timestamp = timestamp

	return p
}

func (p *RichPresence) SetLargeImage(image *Media) *RichPresence {
	p.LargeImage = image

	return p
}

func (p *RichPresence) SetSmallImage(image *Media) *RichPresence {
	p.SmallImage = image

	return p
}

func (p *RichPresence) SetParty(party *Party) *RichPresence {
	p.Party = party

	return p
}

// SetJoinButton shows an "Ask to Join" button by attaching a join secret.
func (p *RichPresence) SetJoinButton() *RichPresence {
	if p.joinSecret == "" {
		p.joinSecret = p.tokens.Token()
	}

	return p
}

// SetSpectateButton shows a "Spectate" button by attaching a spectate secret.
func (p *RichPresence) SetSpectateButton() *RichPresence {
	if p.spectateSecret == "" {
		p.spectateSecret = p.tokens.Token()
	}

	return p
}

func (p *RichPresence) SetInProgress(inProgress bool) *RichPresence {
	p.InProgress = inProgress

	return p
}

func (p *RichPresence) PartyID() string {
	return p.partyID
}

func (p *RichPresence) MatchSecret() string {
	return p.matchSecret
}

func (p *RichPresence) JoinSecret() string {
	return p.joinSecret
}

func (p *RichPresence) SpectateSecret() string {
	return p.spectateSecret
}

// ToActivity encodes the presence. It performs no length checks; call
// Activity.Validate before handing the result to a transport.
func (p *RichPresence) ToActivity() Activity {
	activity := Activity{
		Type:     p.Type,
		State:    p.State,
		Details:  p.Details,
		Instance: p.InProgress,
		Secrets: ActivitySecrets{
			Match:    p.matchSecret,
			Join:     p.joinSecret,
			Spectate: p.spectateSecret,
		},
	}

	if p.Timestamp != nil {
		if p.Timestamp.Start != nil {
			activity.Timestamps.Start = p.Timestamp.Start.Unix()
		}

		if p.Timestamp.End != nil {
			activity.Timestamps.End = p.Timestamp.End.Unix()
		}
	}

	if p.LargeImage != nil {
		activity.Assets.LargeImage = p.LargeImage.ImageKey
		activity.Assets.LargeText = p.LargeImage.Tooltip
	}

	if p.SmallImage != nil {
		activity.Assets.SmallImage = p.SmallImage.ImageKey
		activity.Assets.SmallText = p.SmallImage.Tooltip
	}

	if p.Party != nil {
		activity.Party = ActivityParty{
			ID: p.partyID,
			Size: PartySize{
				CurrentSize: p.Party.CurrentSize,
				MaxSize:     p.Party.MaxSize,
			},
			Privacy: p.Party.Privacy,
		}
	}

	return activity
}
