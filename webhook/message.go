package webhook

// Message is the content of a webhook message.
type Message struct {
	Content string
	Embeds  []*Embed
	TTS     bool
}

func NewMessage(content string) *Message {
	return &Message{
		Content: content,
	}
}

func (m *Message) SetContent(content string) *Message {
	m.Content = content

	return m
}

func (m *Message) AddEmbeds(embeds ...*Embed) *Message {
	m.Embeds = append(m.Embeds, embeds...)

	return m
}

func (m *Message) SetTTS(tts bool) *Message {
	m.TTS = tts

	return m
}
