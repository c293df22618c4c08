package proto

import "strconv"

// RPC error codes (https://discord.com/developers/docs/topics/opcodes-and-status-codes#rpc).
const (
	ErrorCodeUnknown            = 1000
	ErrorCodeInvalidPayload     = 4000
	ErrorCodeInvalidCommand     = 4002
	ErrorCodeInvalidGuild       = 4003
	ErrorCodeInvalidEvent       = 4004
	ErrorCodeInvalidChannel     = 4005
	ErrorCodeInvalidPermissions = 4006
	ErrorCodeInvalidClientID    = 4007
	ErrorCodeInvalidOrigin      = 4008
	ErrorCodeInvalidToken       = 4009
	ErrorCodeInvalidUser        = 4010
	ErrorCodeOAuth2             = 5000
)

// Error is a error that return Discord.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return "discord code " + strconv.Itoa(e.Code) + ": " + e.Message
}
