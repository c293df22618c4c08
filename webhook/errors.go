package webhook

import (
	"errors"
	"fmt"

	"github.com/EpicStep/discord-integration-go/internal/discordjson"
)

var (
	// ErrClosed is returned by every call on a closed client.
	ErrClosed = errors.New("webhook client is closed")
	// ErrUnsupportedImageType is returned for images that are not png, jpg or gif.
	ErrUnsupportedImageType = errors.New("unsupported image type given")
	// ErrIndexOutOfRange is returned by MultiClient for unknown webhook indexes.
	ErrIndexOutOfRange = errors.New("index is out of range of the number of webhooks")
)

// BadRequestError is returned for any non-2xx response.
type BadRequestError struct {
	StatusCode int
	Status     string
	// Body is the raw response body.
	Body       string
	Message    ErrorMessage
}

// ErrorMessage is the error object Discord puts in failed responses.
type ErrorMessage struct {
	Message string                 `json:"message"`
	Errors  discordjson.RawMessage `json:"errors"`
	Code    int32                  `json:"code"`
}

func newBadRequestError(statusCode int, status string, body []byte) *BadRequestError {
	var message ErrorMessage

	_ = discordjson.Unmarshal(body, &message) //nolint:errcheck

	return &BadRequestError{
		StatusCode: statusCode,
		Status:     status,
		Body:       string(body),
		Message:    message,
	}
}

func (e *BadRequestError) Error() string {
	if e.Message.Message != "" {
		return fmt.Sprintf("request failed with status code %d: %s", e.StatusCode, e.Message.Message)
	}

	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}
