package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingCalls(t *testing.T) {
	t.Parallel()

	calls := newPendingCalls()

	reply, err := calls.add("a")
	require.NoError(t, err)

	assert.False(t, calls.resolve(framePacket{Nonce: "b"}))
	assert.True(t, calls.resolve(framePacket{Nonce: "a", Command: CommandSetActivity}))
	assert.Equal(t, CommandSetActivity, (<-reply).Command)

	// A nonce resolves once.
	assert.False(t, calls.resolve(framePacket{Nonce: "a"}))

	calls.closeAll()

	_, err = calls.add("c")
	require.ErrorIs(t, err, ErrConnectionClosed)
}

func TestFrameResult(t *testing.T) {
	t.Parallel()

	data, err := frameResult(framePacket{Data: []byte(`{"ok":true}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))

	_, err = frameResult(framePacket{Event: EventTypeError, Data: []byte(`{"code":4000,"message":"bad"}`)})

	var rpcErr Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, ErrorCodeInvalidPayload, rpcErr.Code)
	assert.Equal(t, "bad", rpcErr.Message)
}

func TestHandlePongDoesNotBlock(t *testing.T) {
	t.Parallel()

	c := New(Options{})

	c.handlePong()
	c.handlePong()

	assert.Len(t, c.pongs, 1)
}
