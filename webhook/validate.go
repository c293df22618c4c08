package webhook

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Limits enforced by Validate, counted in code points.
const (
	MaxContentLength          = 2000
	MaxUsernameLength         = 80
	MaxEmbedTitleLength       = 256
	MaxEmbedDescriptionLength = 4096
	MaxEmbedFields            = 25
	MaxFieldNameLength        = 256
	MaxFieldValueLength       = 1024
	MaxFooterTextLength       = 2048
	MaxAuthorNameLength       = 256
	MaxDescriptionLength      = 1024
)

// ErrInvalidPayload matches every ValidationError.
var ErrInvalidPayload = errors.New("invalid webhook payload")

// ValidationError names a payload field that breaks a Discord limit.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidPayload
}

type validator struct {
	errs []error
}

func (v *validator) fail(field, format string, args ...any) {
	v.errs = append(v.errs, &ValidationError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	})
}

func (v *validator) maxLength(field, value string, limit int) {
	if n := utf8.RuneCountInString(value); n > limit {
		v.fail(field, "must be at most %d characters, got %d", limit, n)
	}
}

// required checks an optional text that must not be empty when present.
func (v *validator) required(field, value string, limit int) {
	if value == "" {
		v.fail(field, "must not be empty")
		return
	}

	v.maxLength(field, value, limit)
}

// Validate checks every rule and reports all violations joined together.
func (p *Payload) Validate() error {
	v := &validator{}

	v.maxLength("content", p.Content, MaxContentLength)
	v.maxLength("username", p.Username, MaxUsernameLength)

	if p.Content == "" && len(p.Embeds) == 0 && len(p.Attachments) == 0 {
		v.fail("content", "message must have content, an embed or an attachment")
	}

	for i, embed := range p.Embeds {
		v.embed(fmt.Sprintf("embeds[%d]", i), embed)
	}

	for i, attachment := range p.Attachments {
		field := fmt.Sprintf("attachments[%d]", i)

		if attachment.Filename == "" {
			v.fail(field+".filename", "must not be empty")
		}

		v.maxLength(field+".description", attachment.Description, MaxDescriptionLength)
	}

	return errors.Join(v.errs...)
}

func (v *validator) embed(field string, e *Embed) {
	if e == nil {
		v.fail(field, "must not be nil")
		return
	}

	if e.empty() {
		v.fail(field, "must have a title, description, field, image, thumbnail, footer or author")
	}

	v.maxLength(field+".title", e.Title, MaxEmbedTitleLength)
	v.maxLength(field+".description", e.Description, MaxEmbedDescriptionLength)

	if len(e.Fields) > MaxEmbedFields {
		v.fail(field+".fields", "must have at most %d fields, got %d", MaxEmbedFields, len(e.Fields))
	}

	for i, f := range e.Fields {
		name := fmt.Sprintf("%s.fields[%d]", field, i)

		if f == nil {
			v.fail(name, "must not be nil")
			continue
		}

		v.required(name+".name", f.Name, MaxFieldNameLength)
		v.required(name+".value", f.Value, MaxFieldValueLength)
	}

	if e.Footer != nil {
		v.required(field+".footer.text", e.Footer.Text, MaxFooterTextLength)
	}

	if e.Author != nil {
		v.required(field+".author.name", e.Author.Name, MaxAuthorNameLength)
	}
}

func (e *Embed) empty() bool {
	return e.Title == "" &&
		e.Description == "" &&
		len(e.Fields) == 0 &&
		e.Image == nil &&
		e.Thumbnail == nil &&
		e.Footer == nil &&
		e.Author == nil
}
