package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/EpicStep/discord-integration-go/internal/discordjson"
)

const (
	contentTypeJSON        = "application/json"
	contentTypeOctetStream = "application/octet-stream"
)

// fetch sends one request and returns the response body. Statuses other
// than 200, 201 and 204 are returned as *BadRequestError.
func (c *Client) fetch(ctx context.Context, method, endpoint, contentType string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(method, 0, time.Since(start))
		return nil, fmt.Errorf("failed to do request: %w", err)
	}

	defer resp.Body.Close()

	response, err := io.ReadAll(resp.Body)

	elapsed := time.Since(start)
	c.metrics.observe(method, resp.StatusCode, elapsed)

	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("Webhook request done")

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusCreated:
	case http.StatusNoContent:
	default:
		return response, newBadRequestError(resp.StatusCode, resp.Status, response)
	}

	return response, nil
}

// fetchJSON sends payload as JSON and decodes the reply into response when
// both are present.
func (c *Client) fetchJSON(ctx context.Context, method, endpoint string, payload, response any) error {
	var body []byte

	if payload != nil {
		var err error

		body, err = discordjson.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
	}

	resp, err := c.fetch(ctx, method, endpoint, contentTypeJSON, body)
	if err != nil {
		return err
	}

	return decodeResponse(resp, response)
}

// fetchMultipart sends the payload as payload_json followed by one
// files[n] part per attachment.
func (c *Client) fetchMultipart(ctx context.Context, method, endpoint string, payload *Payload, partType func(*Attachment) (string, error), response any) error {
	body, contentType, err := multipartBody(payload, partType)
	if err != nil {
		return err
	}

	resp, err := c.fetch(ctx, method, endpoint, contentType, body)
	if err != nil {
		return err
	}

	return decodeResponse(resp, response)
}

func decodeResponse(body []byte, response any) error {
	if response == nil || len(body) == 0 {
		return nil
	}

	if err := discordjson.Unmarshal(body, response); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func multipartBody(payload *Payload, partType func(*Attachment) (string, error)) ([]byte, string, error) {
	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	payloadJSON, err := discordjson.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="payload_json"`)
	header.Set("Content-Type", contentTypeJSON)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create payload part: %w", err)
	}

	if _, err = part.Write(payloadJSON); err != nil {
		return nil, "", fmt.Errorf("failed to write payload part: %w", err)
	}

	for i, file := range payload.files {
		meta := payload.Attachments[i]

		contentType, err := partType(file)
		if err != nil {
			return nil, "", err
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files[%d]"; filename="%s"`, meta.ID, quoteEscaper.Replace(meta.Filename)))
		header.Set("Content-Type", contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part: %w", err)
		}

		if _, err = part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write file part: %w", err)
		}
	}

	if err = w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

// sniffedType detects the part type from the file content.
func sniffedType(a *Attachment) (string, error) {
	if len(a.Data) == 0 {
		return contentTypeOctetStream, nil
	}

	return a.ContentType(), nil
}

// extensionType only accepts png, jpg, jpeg and gif files.
func extensionType(a *Attachment) (string, error) {
	return imageContentType(a.Filename)
}
