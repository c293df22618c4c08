package webhook

import (
	"context"
	"errors"
	"fmt"
)

// MultiClient sends messages through several webhooks, one after another.
type MultiClient struct {
	clients []*Client
}

// NewMulti returns a MultiClient with one Client per url, all sharing opts.
func NewMulti(urls []string, opts Options) (*MultiClient, error) {
	m := &MultiClient{}

	if err := m.SetURLs(urls, opts); err != nil {
		return nil, err
	}

	return m, nil
}

// SetURLs replaces every client. The old clients are closed.
func (m *MultiClient) SetURLs(urls []string, opts Options) error {
	clients := make([]*Client, 0, len(urls))

	for i, url := range urls {
		client, err := New(url, opts)
		if err != nil {
			return fmt.Errorf("webhook %d: %w", i, err)
		}

		clients = append(clients, client)
	}

	old := m.clients
	m.clients = clients

	for _, client := range old {
		_ = client.Close() //nolint:errcheck
	}

	return nil
}

func (m *MultiClient) URLs() []string {
	urls := make([]string, len(m.clients))
	for i, client := range m.clients {
		urls[i] = client.URL()
	}

	return urls
}

func (m *MultiClient) Len() int {
	return len(m.clients)
}

// Execute sends msg through every webhook and stops at the first failure.
// Ids of the messages sent so far are returned either way.
func (m *MultiClient) Execute(ctx context.Context, msg *Message, profile *Profile) ([]Snowflake, error) {
	return m.ExecuteWithProfiles(ctx, msg, profile, nil)
}

// ExecuteWithProfiles is Execute with a per index profile override.
func (m *MultiClient) ExecuteWithProfiles(ctx context.Context, msg *Message, profile *Profile, profiles map[int]*Profile) ([]Snowflake, error) {
	ids := make([]Snowflake, 0, len(m.clients))

	for i, client := range m.clients {
		p := profile
		if override, ok := profiles[i]; ok {
			p = override
		}

		id, err := client.Execute(ctx, msg, p)
		if err != nil {
			return ids, fmt.Errorf("webhook %d: %w", i, err)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// ExecuteEach sends messages[i] through webhook i. Webhooks without a
// message are skipped.
func (m *MultiClient) ExecuteEach(ctx context.Context, messages map[int]*Message, profiles map[int]*Profile) (map[int]Snowflake, error) {
	ids := make(map[int]Snowflake, len(messages))

	for i := range messages {
		if i < 0 || i >= len(m.clients) {
			return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
		}
	}

	for i, client := range m.clients {
		msg, ok := messages[i]
		if !ok {
			continue
		}

		id, err := client.Execute(ctx, msg, profiles[i])
		if err != nil {
			return ids, fmt.Errorf("webhook %d: %w", i, err)
		}

		ids[i] = id
	}

	return ids, nil
}

// ExecuteAt sends msg through the webhook at index.
func (m *MultiClient) ExecuteAt(ctx context.Context, index int, msg *Message, profile *Profile) (Snowflake, error) {
	if index < 0 || index >= len(m.clients) {
		return 0, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	return m.clients[index].Execute(ctx, msg, profile)
}

// Close closes every client.
func (m *MultiClient) Close() error {
	errs := make([]error, 0, len(m.clients))

	for _, client := range m.clients {
		errs = append(errs, client.Close())
	}

	return errors.Join(errs...)
}
