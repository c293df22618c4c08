package presence

import (
	"github.com/nats-io/nuid"
)

// TokenSource generates the opaque tokens used for party ids and activity secrets.
// Tokens handed out by one source must be unique and non-empty.
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func() string

func (f TokenSourceFunc) Token() string {
	return f()
}

// NUIDSource generates tokens with nats nuid.
type NUIDSource struct {
	n *nuid.NUID
}

func NewNUIDSource() *NUIDSource {
	return &NUIDSource{n: nuid.New()}
}

// Token returns the next 22 character identifier. Not safe for concurrent use.
func (s *NUIDSource) Token() string {
	return s.n.Next()
}

var defaultTokenSource TokenSource = TokenSourceFunc(nuid.Next)
