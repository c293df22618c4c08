package webhook_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EpicStep/discord-integration-go/webhook"
)

func validationFields(err error) []string {
	var fields []string

	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			var v *webhook.ValidationError
			if errors.As(e, &v) {
				fields = append(fields, v.Field)
			}
		}
	}

	return fields
}

func TestValidateContentLength(t *testing.T) {
	t.Parallel()

	ok := webhook.NewPayload(webhook.NewMessage(strings.Repeat("a", webhook.MaxContentLength)), nil)
	require.NoError(t, ok.Validate())

	// Limits count code points, not bytes.
	wide := webhook.NewPayload(webhook.NewMessage(strings.Repeat("é", webhook.MaxContentLength)), nil)
	require.NoError(t, wide.Validate())

	tooLong := webhook.NewPayload(webhook.NewMessage(strings.Repeat("a", webhook.MaxContentLength+1)), nil)

	err := tooLong.Validate()
	require.ErrorIs(t, err, webhook.ErrInvalidPayload)

	var v *webhook.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "content", v.Field)
}

func TestValidateEmptyMessage(t *testing.T) {
	t.Parallel()

	err := webhook.NewPayload(webhook.NewMessage(""), nil).Validate()
	require.ErrorIs(t, err, webhook.ErrInvalidPayload)
	assert.Equal(t, []string{"content"}, validationFields(err))

	err = webhook.NewPayload(nil, nil, webhook.NewAttachment("a.txt", []byte("a"))).Validate()
	require.NoError(t, err)
}

func TestValidateEmbedNeedsOneElement(t *testing.T) {
	t.Parallel()

	err := webhook.NewPayload(webhook.NewMessage("").AddEmbeds(webhook.NewEmbed()), nil).Validate()
	require.ErrorIs(t, err, webhook.ErrInvalidPayload)
	assert.Equal(t, []string{"embeds[0]"}, validationFields(err))

	elements := map[string]*webhook.Embed{
		"title":       webhook.NewEmbed().SetTitle("t"),
		"description": webhook.NewEmbed().SetDescription("d"),
		"field":       webhook.NewEmbed().AddField("name", "value", false),
		"image":       webhook.NewEmbed().SetImage(webhook.NewEmbedMedia("https://example.com/a.png")),
		"thumbnail":   webhook.NewEmbed().SetThumbnail(webhook.NewEmbedMedia("https://example.com/a.png")),
		"footer":      webhook.NewEmbed().SetFooter(webhook.NewEmbedFooter("footer", "")),
		"author":      webhook.NewEmbed().SetAuthor(webhook.NewEmbedAuthor("author", "", "")),
	}

	for name, embed := range elements {
		embed := embed

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			require.NoError(t, webhook.NewPayload(webhook.NewMessage("").AddEmbeds(embed), nil).Validate())
		})
	}
}

func TestValidateCollectsEveryViolation(t *testing.T) {
	t.Parallel()

	embed := webhook.NewEmbed().
		SetTitle(strings.Repeat("t", webhook.MaxEmbedTitleLength+1)).
		SetFooter(webhook.NewEmbedFooter("", "")).
		AddField("", "value", true)

	msg := webhook.NewMessage(strings.Repeat("c", webhook.MaxContentLength+1)).AddEmbeds(embed)
	profile := webhook.NewProfile(strings.Repeat("u", webhook.MaxUsernameLength+1), "")

	err := webhook.NewPayload(msg, profile, webhook.NewAttachment("", nil)).Validate()
	require.Error(t, err)

	assert.ElementsMatch(t, []string{
		"content",
		"username",
		"embeds[0].title",
		"embeds[0].fields[0].name",
		"embeds[0].footer.text",
		"attachments[0].filename",
	}, validationFields(err))
}

func TestValidateFieldCount(t *testing.T) {
	t.Parallel()

	embed := webhook.NewEmbed()
	for i := 0; i < webhook.MaxEmbedFields; i++ {
		embed.AddField("n", "v", false)
	}

	require.NoError(t, webhook.NewPayload(webhook.NewMessage("").AddEmbeds(embed), nil).Validate())

	embed.AddField("n", "v", false)

	err := webhook.NewPayload(webhook.NewMessage("").AddEmbeds(embed), nil).Validate()
	assert.Equal(t, []string{"embeds[0].fields"}, validationFields(err))
}

func TestValidateNilEmbed(t *testing.T) {
	t.Parallel()

	err := webhook.NewPayload(webhook.NewMessage("x").AddEmbeds(nil), nil).Validate()
	assert.Equal(t, []string{"embeds[0]"}, validationFields(err))
}

func TestValidateAttachmentDescription(t *testing.T) {
	t.Parallel()

	attachment := webhook.NewAttachment("a.png", nil).
		SetDescription(strings.Repeat("d", webhook.MaxDescriptionLength+1))

	err := webhook.NewPayload(nil, nil, attachment).Validate()
	assert.Equal(t, []string{"attachments[0].description"}, validationFields(err))
}

func TestValidateEmbedTextLimits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		field    string
		limit    int
		required bool
		embed    func(text string) *webhook.Embed
	}{
		{
			name:  "description",
			field: "embeds[0].description",
			limit: webhook.MaxEmbedDescriptionLength,
			embed: func(text string) *webhook.Embed {
				return webhook.NewEmbed().SetTitle("t").SetDescription(text)
			},
		},
		{
			name:     "field name",
			field:    "embeds[0].fields[0].name",
			limit:    webhook.MaxFieldNameLength,
			required: true,
			embed: func(text string) *webhook.Embed {
				return webhook.NewEmbed().AddField(text, "value", false)
			},
		},
		{
			name:     "field value",
			field:    "embeds[0].fields[0].value",
			limit:    webhook.MaxFieldValueLength,
			required: true,
			embed: func(text string) *webhook.Embed {
				return webhook.NewEmbed().AddField("name", text, true)
			},
		},
		{
			name:     "footer text",
			field:    "embeds[0].footer.text",
			limit:    webhook.MaxFooterTextLength,
			required: true,
			embed: func(text string) *webhook.Embed {
				return webhook.NewEmbed().SetFooter(webhook.NewEmbedFooter(text, ""))
			},
		},
		{
			name:     "author name",
			field:    "embeds[0].author.name",
			limit:    webhook.MaxAuthorNameLength,
			required: true,
			embed: func(text string) *webhook.Embed {
				return webhook.NewEmbed().SetAuthor(webhook.NewEmbedAuthor(text, "", ""))
			},
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			validate := func(text string) error {
				return webhook.NewPayload(webhook.NewMessage("").AddEmbeds(tt.embed(text)), nil).Validate()
			}

			assert.NoError(t, validate(strings.Repeat("a", tt.limit)))

			// "€" is three bytes in UTF-8 and one code point.
			assert.NoError(t, validate(strings.Repeat("€", tt.limit)))

			err := validate(strings.Repeat("a", tt.limit+1))
			require.ErrorIs(t, err, webhook.ErrInvalidPayload)
			assert.Equal(t, []string{tt.field}, validationFields(err))

			err = validate(strings.Repeat("€", tt.limit+1))
			assert.Equal(t, []string{tt.field}, validationFields(err))

			if tt.required {
				err = validate("")
				require.ErrorIs(t, err, webhook.ErrInvalidPayload)
				assert.Equal(t, []string{tt.field}, validationFields(err))
			}
		})
	}
}
