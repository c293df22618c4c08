// Package webhook sends, edits and deletes messages through Discord webhooks.
package webhook

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

const DefaultUserAgent = "discord-integration-go (github.com/EpicStep/discord-integration-go)"

// Options ...
type Options struct {
	// HTTPClient defaults to a client with a 20 second timeout owned by the
	// webhook client.
	HTTPClient *http.Client
	UserAgent  string
	Logger     zerolog.Logger

	// Metrics is optional.
	Metrics *Metrics
}

func (o *Options) setDefaults() (owned bool) {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{
			Timeout: 20 * time.Second,
		}
		owned = true
	}

	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}

	return owned
}

// Client is a webhook client. It is safe for concurrent use. Each call makes
// exactly one request; nothing is retried.
type Client struct {
	url atomic.String

	http      *http.Client
	ownsHTTP  bool
	userAgent string
	logger    zerolog.Logger
	metrics   *Metrics

	closed atomic.Bool
}

// New returns a client for webhookURL, which must be a Discord webhook url.
func New(webhookURL string, opts Options) (*Client, error) {
	if err := ValidateURL(webhookURL); err != nil {
		return nil, err
	}

	owned := opts.setDefaults()

	c := &Client{
		http:      opts.HTTPClient,
		ownsHTTP:  owned,
		userAgent: opts.UserAgent,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}

	c.url.Store(webhookURL)

	return c, nil
}

func (c *Client) URL() string {
	return c.url.Load()
}

// SetURL points the client at another webhook.
func (c *Client) SetURL(webhookURL string) error {
	if c.closed.Load() {
		return ErrClosed
	}

	if err := ValidateURL(webhookURL); err != nil {
		return err
	}

	c.url.Store(webhookURL)

	return nil
}

type messageResponse struct {
	ID Snowflake `json:"id"`
}

// Execute posts msg and returns the id of the created message.
func (c *Client) Execute(ctx context.Context, msg *Message, profile *Profile) (Snowflake, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}

	payload := NewPayload(msg, profile)
	if err := payload.Validate(); err != nil {
		return 0, err
	}

	var resp messageResponse

	if err := c.fetchJSON(ctx, http.MethodPost, c.executeEndpoint(), payload, &resp); err != nil {
		return 0, err
	}

	return resp.ID, nil
}

// ExecuteWithAttachments posts msg with files. Part types are sniffed from
// the file contents.
func (c *Client) ExecuteWithAttachments(ctx context.Context, msg *Message, profile *Profile, attachments ...*Attachment) (Snowflake, error) {
	return c.executeMultipart(ctx, msg, profile, attachments, sniffedType)
}

// ExecuteWithImage posts msg with one png, jpg or gif image. Other file
// types fail with ErrUnsupportedImageType before anything is sent.
func (c *Client) ExecuteWithImage(ctx context.Context, msg *Message, profile *Profile, image *Attachment) (Snowflake, error) {
	if image != nil {
		if _, err := imageContentType(image.Filename); err != nil {
			return 0, err
		}
	}

	return c.executeMultipart(ctx, msg, profile, []*Attachment{image}, extensionType)
}

func (c *Client) executeMultipart(ctx context.Context, msg *Message, profile *Profile, attachments []*Attachment, partType func(*Attachment) (string, error)) (Snowflake, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}

	payload := NewPayload(msg, profile, attachments...)
	if err := payload.Validate(); err != nil {
		return 0, err
	}

	var resp messageResponse

	if err := c.fetchMultipart(ctx, http.MethodPost, c.executeEndpoint(), payload, partType, &resp); err != nil {
		return 0, err
	}

	return resp.ID, nil
}

// EditMessage replaces the content and embeds of a message sent by this
// webhook.
func (c *Client) EditMessage(ctx context.Context, messageID Snowflake, msg *Message) error {
	if c.closed.Load() {
		return ErrClosed
	}

	payload := NewPayload(msg, nil)
	if err := payload.Validate(); err != nil {
		return err
	}

	return c.fetchJSON(ctx, http.MethodPatch, c.messageEndpoint(messageID), payload, nil)
}

// EditMessageWithAttachments replaces a message along with its files.
func (c *Client) EditMessageWithAttachments(ctx context.Context, messageID Snowflake, msg *Message, attachments ...*Attachment) error {
	if c.closed.Load() {
		return ErrClosed
	}

	payload := NewPayload(msg, nil, attachments...)
	if err := payload.Validate(); err != nil {
		return err
	}

	return c.fetchMultipart(ctx, http.MethodPatch, c.messageEndpoint(messageID), payload, sniffedType, nil)
}

// DeleteMessage deletes a message sent by this webhook.
func (c *Client) DeleteMessage(ctx context.Context, messageID Snowflake) error {
	if c.closed.Load() {
		return ErrClosed
	}

	_, err := c.fetch(ctx, http.MethodDelete, c.messageEndpoint(messageID), "", nil)

	return err
}

// Close releases idle connections of an owned HTTP client. Later calls fail
// with ErrClosed.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return ErrClosed
	}

	if c.ownsHTTP {
		c.http.CloseIdleConnections()
	}

	return nil
}

func (c *Client) executeEndpoint() string {
	return c.url.Load() + "?wait=true"
}

func (c *Client) messageEndpoint(messageID Snowflake) string {
	return c.url.Load() + "/messages/" + messageID.String()
}
