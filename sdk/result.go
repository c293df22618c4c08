package sdk

import (
	"fmt"
	"strconv"
)

// Result is the status code returned by every Game SDK call.
type Result int32

const (
	ResultOk Result = iota
	ResultServiceUnavailable
	ResultInvalidVersion
	ResultLockFailed
	ResultInternalError
	ResultInvalidPayload
	ResultInvalidCommand
	ResultInvalidPermissions
	ResultNotFetched
	ResultNotFound
	ResultConflict
	ResultInvalidSecret
	ResultInvalidJoinSecret
	ResultNoEligibleActivity
	ResultInvalidInvite
	ResultNotAuthenticated
	ResultInvalidAccessToken
	ResultApplicationMismatch
	ResultInvalidDataURL
	ResultInvalidBase64
	ResultNotFiltered
	ResultLobbyFull
	ResultInvalidLobbySecret
	ResultInvalidFilename
	ResultInvalidFileSize
	ResultInvalidEntitlement
	ResultNotInstalled
	ResultNotRunning
	ResultInsufficientBuffer
	ResultPurchaseCanceled
	ResultInvalidGuild
	ResultInvalidEvent
	ResultInvalidChannel
	ResultInvalidOrigin
	ResultRateLimited
	ResultOAuth2Error
	ResultSelectChannelTimeout
	ResultGetGuildTimeout
	ResultSelectVoiceForceRequired
	ResultCaptureShortcutAlreadyListening
	ResultUnauthorizedForAchievement
	ResultInvalidGiftCode
	ResultPurchaseError
	ResultTransactionAborted
	ResultDrawingInitFailed
)

type resultInfo struct {
	name        string
	description string
}

var results = map[Result]resultInfo{
	ResultOk:                              {"Ok", "ok"},
	ResultServiceUnavailable:              {"ServiceUnavailable", "Discord isn't working"},
	ResultInvalidVersion:                  {"InvalidVersion", "the SDK version may be outdated"},
	ResultLockFailed:                      {"LockFailed", "an internal error on transactional operations"},
	ResultInternalError:                   {"InternalError", "something on Discord's side went wrong"},
	ResultInvalidPayload:                  {"InvalidPayload", "the data sent didn't match what Discord expects"},
	ResultInvalidCommand:                  {"InvalidCommand", "that's not a thing you can do"},
	ResultInvalidPermissions:              {"InvalidPermissions", "you aren't authorized to do that"},
	ResultNotFetched:                      {"NotFetched", "couldn't fetch what you wanted"},
	ResultNotFound:                        {"NotFound", "what you're looking for doesn't exist"},
	ResultConflict:                        {"Conflict", "user already has a network connection open on that channel"},
	ResultInvalidSecret:                   {"InvalidSecret", "activity secrets must be unique and not match party id"},
	ResultInvalidJoinSecret:               {"InvalidJoinSecret", "join request for that user does not exist"},
	ResultNoEligibleActivity:              {"NoEligibleActivity", "an application id was set in the activity payload"},
	ResultInvalidInvite:                   {"InvalidInvite", "the game invite is no longer valid"},
	ResultNotAuthenticated:                {"NotAuthenticated", "the internal auth call failed for the user"},
	ResultInvalidAccessToken:              {"InvalidAccessToken", "the user's bearer token is invalid"},
	ResultApplicationMismatch:             {"ApplicationMismatch", "access token belongs to another application"},
	ResultInvalidDataURL:                  {"InvalidDataUrl", "something internally went wrong fetching image data"},
	ResultInvalidBase64:                   {"InvalidBase64", "not valid Base64 data"},
	ResultNotFiltered:                     {"NotFiltered", "the list was accessed before creating a stable list with Filter()"},
	ResultLobbyFull:                       {"LobbyFull", "the lobby is full"},
	ResultInvalidLobbySecret:              {"InvalidLobbySecret", "the secret used to connect is wrong"},
	ResultInvalidFilename:                 {"InvalidFilename", "file name is too long"},
	ResultInvalidFileSize:                 {"InvalidFileSize", "file is too large"},
	ResultInvalidEntitlement:              {"InvalidEntitlement", "the user does not have the right entitlement for this game"},
	ResultNotInstalled:                    {"NotInstalled", "Discord is not installed"},
	ResultNotRunning:                      {"NotRunning", "Discord is not running"},
	ResultInsufficientBuffer:              {"InsufficientBuffer", "insufficient buffer space when trying to write"},
	ResultPurchaseCanceled:                {"PurchaseCanceled", "user cancelled the purchase flow"},
	ResultInvalidGuild:                    {"InvalidGuild", "Discord guild does not exist"},
	ResultInvalidEvent:                    {"InvalidEvent", "the event being subscribed to does not exist"},
	ResultInvalidChannel:                  {"InvalidChannel", "Discord channel does not exist"},
	ResultInvalidOrigin:                   {"InvalidOrigin", "the origin header on the socket does not match the registered one"},
	ResultRateLimited:                     {"RateLimited", "that method is being called too quickly"},
	ResultOAuth2Error:                     {"OAuth2Error", "the OAuth2 process failed at some point"},
	ResultSelectChannelTimeout:            {"SelectChannelTimeout", "the user took too long selecting a channel for an invite"},
	ResultGetGuildTimeout:                 {"GetGuildTimeout", "took too long trying to fetch the guild"},
	ResultSelectVoiceForceRequired:        {"SelectVoiceForceRequired", "push to talk is required for this channel"},
	ResultCaptureShortcutAlreadyListening: {"CaptureShortcutAlreadyListening", "that push to talk shortcut is already registered"},
	ResultUnauthorizedForAchievement:      {"UnauthorizedForAchievement", "the application cannot update this achievement"},
	ResultInvalidGiftCode:                 {"InvalidGiftCode", "the gift code is not valid"},
	ResultPurchaseError:                   {"PurchaseError", "something went wrong during the purchase flow"},
	ResultTransactionAborted:              {"TransactionAborted", "purchase flow aborted because the SDK is being torn down"},
	ResultDrawingInitFailed:               {"DrawingInitFailed", "undocumented"},
}

func (r Result) String() string {
	if info, ok := results[r]; ok {
		return info.name
	}

	return "Result(" + strconv.Itoa(int(r)) + ")"
}

// Description returns the human readable explanation of the code.
func (r Result) Description() string {
	if info, ok := results[r]; ok {
		return info.description
	}

	return "unknown result"
}

// Err converts a non-Ok result into a *ResultError.
func (r Result) Err() error {
	if r == ResultOk {
		return nil
	}

	return &ResultError{Code: r}
}

// ResultError is returned when the Game SDK reports a failure.
type ResultError struct {
	Code Result
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("discord sdk %d (%s): %s", int32(e.Code), e.Code, e.Code.Description())
}

// Is matches another *ResultError carrying the same code.
func (e *ResultError) Is(target error) bool {
	t, ok := target.(*ResultError)

	return ok && t.Code == e.Code
}
