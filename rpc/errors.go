package rpc

import (
	"errors"
)

var (
	// ErrClosed is returned by every call on a closed client.
	ErrClosed = errors.New("rpc client is closed")
	// ErrNotStarted is returned by calls made before Start.
	ErrNotStarted = errors.New("rpc client is not started")
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("rpc client is already started")
)
