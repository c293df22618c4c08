package webhook_test

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EpicStep/discord-integration-go/webhook"
)

var (
	testToken = strings.Repeat("Ab-_", 17)
	testURL   = "https://discord.com/api/webhooks/123456789012345678/" + testToken
)

type capturedRequest struct {
	method      string
	path        string
	query       string
	contentType string
	userAgent   string
	body        []byte
}

// rewriteTransport sends every request to the test server while keeping
// the Discord url on the client side.
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host

	return http.DefaultTransport.RoundTrip(req)
}

func newTestClient(t *testing.T, status int, response string, opts webhook.Options) (*webhook.Client, <-chan capturedRequest) {
	t.Helper()

	requests := make(chan capturedRequest, 8)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		requests <- capturedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.RawQuery,
			contentType: r.Header.Get("Content-Type"),
			userAgent:   r.Header.Get("User-Agent"),
			body:        body,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(server.Close)

	target, err := url.Parse(server.URL)
	require.NoError(t, err)

	opts.HTTPClient = &http.Client{Transport: rewriteTransport{target: target}}

	client, err := webhook.New(testURL, opts)
	require.NoError(t, err)

	return client, requests
}

func TestExecuteSendsJSON(t *testing.T) {
	t.Parallel()

	client, requests := newTestClient(t, http.StatusOK, `{"id":"1234567890123456789","channel_id":"1"}`, webhook.Options{UserAgent: "test-agent"})

	msg := webhook.NewMessage("hello").
		AddEmbeds(webhook.NewEmbed().SetTitle("t").SetDescription("d"))

	id, err := client.Execute(context.Background(), msg, nil)
	require.NoError(t, err)
	assert.Equal(t, webhook.Snowflake(1234567890123456789), id)

	req := <-requests
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/api/webhooks/123456789012345678/"+testToken, req.path)
	assert.Equal(t, "wait=true", req.query)
	assert.Equal(t, "application/json", req.contentType)
	assert.Equal(t, "test-agent", req.userAgent)
	assert.JSONEq(t, `{"content":"hello","embeds":[{"title":"t","description":"d"}],"tts":false}`, string(req.body))
}

func TestExecuteSendsProfile(t *testing.T) {
	t.Parallel()

	client, requests := newTestClient(t, http.StatusOK, `{"id":"1"}`, webhook.Options{})

	_, err := client.Execute(context.Background(), webhook.NewMessage("hi"), webhook.NewProfile("Bot", "https://example.com/a.png"))
	require.NoError(t, err)

	req := <-requests
	assert.JSONEq(t, `{"content":"hi","username":"Bot","avatar_url":"https://example.com/a.png","tts":false}`, string(req.body))
}

func TestExecuteBadRequest(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.StatusBadRequest, `{"message":"Invalid Form Body"}`, webhook.Options{})

	_, err := client.Execute(context.Background(), webhook.NewMessage("hello"), nil)

	var badRequest *webhook.BadRequestError
	require.ErrorAs(t, err, &badRequest)
	assert.Equal(t, http.StatusBadRequest, badRequest.StatusCode)
	assert.Equal(t, `{"message":"Invalid Form Body"}`, badRequest.Body)
	assert.Equal(t, "Invalid Form Body", badRequest.Message.Message)
	assert.Contains(t, err.Error(), "400")
}

func TestExecuteValidatesBeforeSending(t *testing.T) {
	t.Parallel()

	client, requests := newTestClient(t, http.StatusOK, `{"id":"1"}`, webhook.Options{})

	_, err := client.Execute(context.Background(), webhook.NewMessage(strings.Repeat("a", webhook.MaxContentLength+1)), nil)
	require.ErrorIs(t, err, webhook.ErrInvalidPayload)

	_, err = client.Execute(context.Background(), webhook.NewMessage(""), nil)
	require.ErrorIs(t, err, webhook.ErrInvalidPayload)

	assert.Empty(t, requests)
}

func TestExecuteWithAttachmentsSendsMultipart(t *testing.T) {
	t.Parallel()

	client, requests := newTestClient(t, http.StatusOK, `{"id":"42"}`, webhook.Options{})

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	id, err := client.ExecuteWithAttachments(context.Background(), webhook.NewMessage("files"), nil,
		webhook.NewAttachment("image.png", png).SetDescription("a picture"),
		webhook.NewAttachment("notes.txt", []byte("hello world")),
	)
	require.NoError(t, err)
	assert.Equal(t, webhook.Snowflake(42), id)

	req := <-requests
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "wait=true", req.query)

	form := parseMultipart(t, req)

	require.Len(t, form.Value["payload_json"], 1)
	assert.JSONEq(t, `{
		"content": "files",
		"tts": false,
		"attachments": [
			{"id": 0, "filename": "image.png", "description": "a picture"},
			{"id": 1, "filename": "notes.txt"}
		]
	}`, form.Value["payload_json"][0])

	require.Len(t, form.File["files[0]"], 1)
	require.Len(t, form.File["files[1]"], 1)
	assert.Equal(t, "image.png", form.File["files[0]"][0].Filename)
	assert.Equal(t, "image/png", form.File["files[0]"][0].Header.Get("Content-Type"))
	assert.Equal(t, "notes.txt", form.File["files[1]"][0].Filename)
	assert.True(t, strings.HasPrefix(form.File["files[1]"][0].Header.Get("Content-Type"), "text/plain"))
}

func TestExecuteWithImage(t *testing.T) {
	t.Parallel()

	client, requests := newTestClient(t, http.StatusOK, `{"id":"7"}`, webhook.Options{})

	_, err := client.ExecuteWithImage(context.Background(), webhook.NewMessage("doc"), nil, webhook.NewAttachment("notes.txt", []byte("x")))
	require.ErrorIs(t, err, webhook.ErrUnsupportedImageType)
	assert.Empty(t, requests)

	id, err := client.ExecuteWithImage(context.Background(), webhook.NewMessage("pic"), nil, webhook.NewAttachment("photo.JPG", []byte("not really a jpeg")))
	require.NoError(t, err)
	assert.Equal(t, webhook.Snowflake(7), id)

	form := parseMultipart(t, <-requests)
	require.Len(t, form.File["files[0]"], 1)
	assert.Equal(t, "image/jpeg", form.File["files[0]"][0].Header.Get("Content-Type"))
}

func TestEditAndDeleteMessage(t *testing.T) {
	t.Parallel()

	client, requests := newTestClient(t, http.StatusOK, `{"id":"99"}`, webhook.Options{})

	require.NoError(t, client.EditMessage(context.Background(), 99, webhook.NewMessage("edited")))

	req := <-requests
	assert.Equal(t, http.MethodPatch, req.method)
	assert.Equal(t, "/api/webhooks/123456789012345678/"+testToken+"/messages/99", req.path)
	assert.Empty(t, req.query)
	assert.JSONEq(t, `{"content":"edited","tts":false}`, string(req.body))

	require.NoError(t, client.EditMessageWithAttachments(context.Background(), 99, webhook.NewMessage("with file"), webhook.NewAttachment("a.txt", []byte("a"))))

	req = <-requests
	assert.Equal(t, http.MethodPatch, req.method)
	form := parseMultipart(t, req)
	assert.Len(t, form.File["files[0]"], 1)

	require.NoError(t, client.DeleteMessage(context.Background(), 99))

	req = <-requests
	assert.Equal(t, http.MethodDelete, req.method)
	assert.Equal(t, "/api/webhooks/123456789012345678/"+testToken+"/messages/99", req.path)
	assert.Empty(t, req.body)
}

func TestClientClose(t *testing.T) {
	t.Parallel()

	client, requests := newTestClient(t, http.StatusOK, `{"id":"1"}`, webhook.Options{})

	require.NoError(t, client.Close())
	require.ErrorIs(t, client.Close(), webhook.ErrClosed)

	_, err := client.Execute(context.Background(), webhook.NewMessage("hello"), nil)
	require.ErrorIs(t, err, webhook.ErrClosed)

	_, err = client.ExecuteWithAttachments(context.Background(), webhook.NewMessage("hello"), nil)
	require.ErrorIs(t, err, webhook.ErrClosed)

	require.ErrorIs(t, client.EditMessage(context.Background(), 1, webhook.NewMessage("hello")), webhook.ErrClosed)
	require.ErrorIs(t, client.DeleteMessage(context.Background(), 1), webhook.ErrClosed)
	require.ErrorIs(t, client.SetURL(testURL), webhook.ErrClosed)

	assert.Empty(t, requests)
}

func TestClientURL(t *testing.T) {
	t.Parallel()

	_, err := webhook.New("https://example.com/api/webhooks/123456789012345678/"+testToken, webhook.Options{})
	require.ErrorIs(t, err, webhook.ErrInvalidURL)

	client, err := webhook.New(testURL, webhook.Options{})
	require.NoError(t, err)
	assert.Equal(t, testURL, client.URL())

	other := "https://discord.com/api/v10/webhooks/876543210987654321/" + testToken
	require.NoError(t, client.SetURL(other))
	assert.Equal(t, other, client.URL())

	require.ErrorIs(t, client.SetURL("not a url"), webhook.ErrInvalidURL)
	assert.Equal(t, other, client.URL())

	require.NoError(t, client.Close())
}

func TestClientMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics := webhook.NewMetrics(reg)

	client, _ := newTestClient(t, http.StatusOK, `{"id":"1"}`, webhook.Options{Metrics: metrics})

	for i := 0; i < 2; i++ {
		_, err := client.Execute(context.Background(), webhook.NewMessage("hello"), nil)
		require.NoError(t, err)
	}

	assert.Equal(t, float64(2), counterValue(t, reg, http.MethodPost, "200"))
}

func TestClientMetricsTruncatedBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)

		conn, buf, err := w.(http.Hijacker).Hijack()
		if err != nil {
			return
		}
		defer conn.Close()

		_, _ = buf.WriteString("HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: 64\r\n\r\n{\"id\":")
		_ = buf.Flush()
	}))
	t.Cleanup(server.Close)

	target, err := url.Parse(server.URL)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()

	client, err := webhook.New(testURL, webhook.Options{
		HTTPClient: &http.Client{Transport: rewriteTransport{target: target}},
		Metrics:    webhook.NewMetrics(reg),
	})
	require.NoError(t, err)

	_, err = client.Execute(context.Background(), webhook.NewMessage("hello"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	assert.Equal(t, float64(1), counterValue(t, reg, http.MethodPost, "200"))
}

func TestContextCancel(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.StatusOK, `{"id":"1"}`, webhook.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Execute(ctx, webhook.NewMessage("hello"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func parseMultipart(t *testing.T, req capturedRequest) *multipart.Form {
	t.Helper()

	r, err := http.NewRequest(http.MethodPost, "/", strings.NewReader(string(req.body)))
	require.NoError(t, err)
	r.Header.Set("Content-Type", req.contentType)

	require.NoError(t, r.ParseMultipartForm(1<<20))

	return r.MultipartForm
}

func counterValue(t *testing.T, reg *prometheus.Registry, method, status string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != "discord_webhook_requests_total" {
			continue
		}

		for _, metric := range family.GetMetric() {
			labels := make(map[string]string)
			for _, label := range metric.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}

			if labels["method"] == method && labels["status"] == status {
				return metric.GetCounter().GetValue()
			}
		}
	}

	return 0
}
