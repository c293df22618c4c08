package webhook

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sapphi-red/midec"
	_ "github.com/sapphi-red/midec/gif"  // animated GIF detection
	_ "github.com/sapphi-red/midec/png"  // APNG detection
	_ "github.com/sapphi-red/midec/webp" // animated WebP detection
)

const spoilerPrefix = "SPOILER_"

// Attachment is a file uploaded with a message.
type Attachment struct {
	Filename    string
	Description string // alt text
	Data        []byte
}

func NewAttachment(filename string, data []byte) *Attachment {
	return &Attachment{
		Filename: filename,
		Data:     data,
	}
}

// AttachmentFromFile reads the file at path. Spoiler attachments are
// blurred until clicked.
func AttachmentFromFile(path, altText string, spoiler bool) (*Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}

	return newAttachment(filepath.Base(path), altText, spoiler, data), nil
}

// AttachmentFromReader reads r to the end.
func AttachmentFromReader(r io.Reader, filename, altText string, spoiler bool) (*Attachment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}

	return newAttachment(filename, altText, spoiler, data), nil
}

func newAttachment(filename, altText string, spoiler bool, data []byte) *Attachment {
	if spoiler && !strings.HasPrefix(filename, spoilerPrefix) {
		filename = spoilerPrefix + filename
	}

	return &Attachment{
		Filename:    filename,
		Description: altText,
		Data:        data,
	}
}

func (a *Attachment) SetDescription(altText string) *Attachment {
	a.Description = altText

	return a
}

// Spoiler reports whether the file is sent as a spoiler.
func (a *Attachment) Spoiler() bool {
	return strings.HasPrefix(a.Filename, spoilerPrefix)
}

// ContentType sniffs the media type of the data. Animated PNGs are reported
// as image/apng.
func (a *Attachment) ContentType() string {
	mtype := mimetype.Detect(a.Data)
	contentType := mtype.String()

	if mtype.Is("image/png") || mtype.Is("image/vnd.mozilla.apng") {
		if a.Animated() {
			return "image/apng"
		}

		return "image/png"
	}

	return contentType
}

// Animated reports whether the data is an animated GIF, PNG or WebP.
func (a *Attachment) Animated() bool {
	animated, err := midec.IsAnimated(bytes.NewReader(a.Data))

	return err == nil && animated
}

var imageContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// imageContentType maps the file extension to an image media type.
func imageContentType(filename string) (string, error) {
	contentType, ok := imageContentTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImageType, filename)
	}

	return contentType, nil
}
