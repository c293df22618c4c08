package webhook

// Profile overrides the webhook's configured name and avatar for one
// message. Empty fields keep the configured values.
type Profile struct {
	Username  string
	AvatarURL string
}

func NewProfile(username, avatarURL string) *Profile {
	return &Profile{
		Username:  username,
		AvatarURL: avatarURL,
	}
}

func (p *Profile) SetUsername(username string) *Profile {
	p.Username = username

	return p
}

func (p *Profile) SetAvatarURL(avatarURL string) *Profile {
	p.AvatarURL = avatarURL

	return p
}
