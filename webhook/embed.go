package webhook

import (
	"time"
)

// embed.go contains the structures for constructing embeds

// Embed is one rich card of a message.
type Embed struct {
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
	Timestamp   *time.Time    `json:"timestamp,omitempty"`
	Color       *EmbedColor   `json:"color,omitempty"`
	Footer      *EmbedFooter  `json:"footer,omitempty"`
	Image       *EmbedMedia   `json:"image,omitempty"`
	Thumbnail   *EmbedMedia   `json:"thumbnail,omitempty"`
	Author      *EmbedAuthor  `json:"author,omitempty"`
	Fields      []*EmbedField `json:"fields,omitempty"`
}

func NewEmbed() *Embed {
	return &Embed{}
}

func (e *Embed) SetTitle(title string) *Embed {
	e.Title = title

	return e
}

func (e *Embed) SetDescription(description string) *Embed {
	e.Description = description

	return e
}

func (e *Embed) SetURL(url string) *Embed {
	e.URL = url

	return e
}

func (e *Embed) SetTimestamp(timestamp time.Time) *Embed {
	e.Timestamp = &timestamp

	return e
}

func (e *Embed) SetColor(color EmbedColor) *Embed {
	e.Color = &color

	return e
}

func (e *Embed) SetFooter(footer *EmbedFooter) *Embed {
	e.Footer = footer

	return e
}

func (e *Embed) SetImage(image *EmbedMedia) *Embed {
	e.Image = image

	return e
}

func (e *Embed) SetThumbnail(thumbnail *EmbedMedia) *Embed {
	e.Thumbnail = thumbnail

	return e
}

func (e *Embed) SetAuthor(author *EmbedAuthor) *Embed {
	e.Author = author

	return e
}

func (e *Embed) AddField(name, value string, inline bool) *Embed {
	e.Fields = append(e.Fields, &EmbedField{
		Name:   name,
		Value:  value,
		Inline: inline,
	})

	return e
}

func (e *Embed) AddFields(fields ...*EmbedField) *Embed {
	e.Fields = append(e.Fields, fields...)

	return e
}

// clone copies e and everything it points to.
func (e *Embed) clone() *Embed {
	if e == nil {
		return nil
	}

	c := *e
	c.Timestamp = clonePtr(e.Timestamp)
	c.Color = clonePtr(e.Color)
	c.Footer = clonePtr(e.Footer)
	c.Image = clonePtr(e.Image)
	c.Thumbnail = clonePtr(e.Thumbnail)
	c.Author = clonePtr(e.Author)

	if e.Fields != nil {
		c.Fields = make([]*EmbedField, len(e.Fields))
		for i, f := range e.Fields {
			c.Fields[i] = clonePtr(f)
		}
	}

	return &c
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}

	c := *v

	return &c
}

// EmbedFooter represents the footer of an embed.
type EmbedFooter struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

func NewEmbedFooter(text, iconURL string) *EmbedFooter {
	return &EmbedFooter{
		Text:    text,
		IconURL: iconURL,
	}
}

// EmbedMedia is an embed image or thumbnail.
type EmbedMedia struct {
	URL string `json:"url"`
}

func NewEmbedMedia(url string) *EmbedMedia {
	return &EmbedMedia{
		URL: url,
	}
}

// EmbedAuthor represents the author of an embed.
type EmbedAuthor struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

func NewEmbedAuthor(name, url, iconURL string) *EmbedAuthor {
	return &EmbedAuthor{
		Name:    name,
		URL:     url,
		IconURL: iconURL,
	}
}

// EmbedField represents a field in an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}
