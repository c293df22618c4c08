package webhook

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidURL is returned for urls that are not Discord webhook urls.
var ErrInvalidURL = errors.New("invalid webhook url")

var webhookURLPattern = regexp.MustCompile(`^https://discord\.com/api/(?:v\d+/)?webhooks/\d{17,19}/[A-Za-z0-9_-]{68}$`)

// ValidateURL checks that url has the shape
// https://discord.com/api/[vN/]webhooks/{id}/{token}.
func ValidateURL(url string) error {
	if !webhookURLPattern.MatchString(url) {
		return fmt.Errorf("%w: %q", ErrInvalidURL, url)
	}

	return nil
}
