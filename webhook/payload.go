package webhook

// Payload is the JSON body of an execute or edit request.
type Payload struct {
	Content     string               `json:"content,omitempty"`
	Username    string               `json:"username,omitempty"`
	AvatarURL   string               `json:"avatar_url,omitempty"`
	TTS         bool                 `json:"tts"`
	Embeds      []*Embed             `json:"embeds,omitempty"`
	Attachments []*PayloadAttachment `json:"attachments,omitempty"`

	files []*Attachment
}

// PayloadAttachment is the metadata of an uploaded file. ID is the index of
// the file, which also names its multipart part files[ID].
type PayloadAttachment struct {
	ID          int    `json:"id"`
	Filename    string `json:"filename"`
	Description string `json:"description,omitempty"`
}

// NewPayload builds the request body for msg. Profile fields are only sent
// when set. Attachments are numbered by position. Embeds are copied, so the
// message can be changed afterwards without touching the payload.
func NewPayload(msg *Message, profile *Profile, attachments ...*Attachment) *Payload {
	p := &Payload{}

	if msg != nil {
		p.Content = msg.Content
		p.TTS = msg.TTS
		for _, embed := range msg.Embeds {
			p.Embeds = append(p.Embeds, embed.clone())
		}
	}

	if profile != nil {
		p.Username = profile.Username
		p.AvatarURL = profile.AvatarURL
	}

	for i, attachment := range attachments {
		meta := &PayloadAttachment{ID: i}

		if attachment != nil {
			meta.Filename = attachment.Filename
			meta.Description = attachment.Description
		}

		p.Attachments = append(p.Attachments, meta)
		p.files = append(p.files, attachment)
	}

	return p
}
