package sdk

import (
	"bytes"
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EpicStep/discord-integration-go/presence"
)

// Fake function addresses. They are only compared, never called.
const (
	fnCreate uintptr = 0x1000 + iota
	fnDestroy
	fnRunCallbacks
	fnSetLogHook
	fnGetActivityManager
	fnRegisterCommand
	fnRegisterSteam
	fnUpdateActivity
	fnClearActivity
	fnSendRequestReply
	fnSendInvite
	fnAcceptInvite
)

type pendingResult struct {
	token  uintptr
	result Result
}

// fakeLibrary emulates discord_game_sdk with method tables held in Go memory.
type fakeLibrary struct {
	coreTable     []uintptr
	activityTable []uintptr

	createResult Result
	nextResult   Result
	params       []byte

	pending []pendingResult
	queued  []func(eventData uintptr)

	eventData  uintptr
	logToken   uintptr
	activities []presence.Activity
	replies    []JoinRequestReply
	invites    []string
	commands   []string
	steamIDs   []uint32
	destroyed  int
}

func newFakeLibrary() *fakeLibrary {
	f := &fakeLibrary{
		coreTable:     make([]uintptr, 15),
		activityTable: make([]uintptr, 7),
	}

	f.coreTable[coreDestroy] = fnDestroy
	f.coreTable[coreRunCallbacks] = fnRunCallbacks
	f.coreTable[coreSetLogHook] = fnSetLogHook
	f.coreTable[coreGetActivityManager] = fnGetActivityManager

	f.activityTable[activityRegisterCommand] = fnRegisterCommand
	f.activityTable[activityRegisterSteam] = fnRegisterSteam
	f.activityTable[activityUpdateActivity] = fnUpdateActivity
	f.activityTable[activityClearActivity] = fnClearActivity
	f.activityTable[activitySendRequestReply] = fnSendRequestReply
	f.activityTable[activitySendInvite] = fnSendInvite
	f.activityTable[activityAcceptInvite] = fnAcceptInvite

	return f
}

func (f *fakeLibrary) createFunc() uintptr {
	return fnCreate
}

func (f *fakeLibrary) trampolines() *trampolineTable {
	return &trampolineTable{}
}

func (f *fakeLibrary) call(fn uintptr, args ...uintptr) uintptr {
	switch fn {
	case fnCreate:
		f.params = readBytes(args[1], CreateParamsSize)
		f.eventData = uintptr(binary.LittleEndian.Uint64(f.params[createOffEventData:]))

		if f.createResult != ResultOk {
			return uintptr(f.createResult)
		}

		*(*uintptr)(unsafe.Pointer(args[2])) = uintptr(unsafe.Pointer(&f.coreTable[0]))
	case fnGetActivityManager:
		return uintptr(unsafe.Pointer(&f.activityTable[0]))
	case fnDestroy:
		f.destroyed++
	case fnSetLogHook:
		f.logToken = args[2]
	case fnRunCallbacks:
		pending, queued := f.pending, f.queued
		f.pending, f.queued = nil, nil

		for _, p := range pending {
			onResult(p.token, uintptr(p.result))
		}

		for _, q := range queued {
			q(f.eventData)
		}
	case fnUpdateActivity:
		activity, err := DecodeActivity(readBytes(args[1], ActivitySize))
		if err != nil {
			panic(err)
		}

		f.activities = append(f.activities, activity)
		f.complete(args[2])
	case fnClearActivity:
		f.complete(args[1])
	case fnSendRequestReply:
		f.replies = append(f.replies, JoinRequestReply(args[2]))
		f.complete(args[3])
	case fnSendInvite:
		f.invites = append(f.invites, readCString(args[3]))
		f.complete(args[4])
	case fnAcceptInvite:
		f.complete(args[2])
	case fnRegisterCommand:
		f.commands = append(f.commands, readCString(args[1]))
	case fnRegisterSteam:
		f.steamIDs = append(f.steamIDs, uint32(args[1]))
	}

	return 0
}

func (f *fakeLibrary) complete(token uintptr) {
	f.pending = append(f.pending, pendingResult{token: token, result: f.nextResult})
}

func TestCoreCreateParams(t *testing.T) {
	t.Parallel()

	lib := newFakeLibrary()

	core, err := newCore(lib, Options{ClientID: 1234, Flags: CreateFlagsNoRequireDiscord})
	require.NoError(t, err)
	t.Cleanup(func() { _ = core.Close() })

	assert.Equal(t, uint64(1234), binary.LittleEndian.Uint64(lib.params[createOffClientID:]))
	assert.Equal(t, uint64(CreateFlagsNoRequireDiscord), binary.LittleEndian.Uint64(lib.params[createOffFlags:]))
	assert.Equal(t, core.eventToken, lib.eventData)
	assert.Equal(t, uint64(addressOf(core.activityEvents)), binary.LittleEndian.Uint64(lib.params[createOffActivityEvents:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(lib.params[createOffActivityEvents+8:]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(lib.params[createOffApplicationEvents+7*createManagerStride+8:]))
}

func TestCoreCreateFailure(t *testing.T) {
	t.Parallel()

	lib := newFakeLibrary()
	lib.createResult = ResultNotRunning

	_, err := newCore(lib, Options{ClientID: 1})
	require.ErrorIs(t, err, &ResultError{Code: ResultNotRunning})

	_, ok := callbacks.lookup(lib.eventData)
	assert.False(t, ok)
}

func TestCoreUpdateActivityCompletesOnRunCallbacks(t *testing.T) {
	t.Parallel()

	lib := newFakeLibrary()

	core, err := newCore(lib, Options{ClientID: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = core.Close() })

	activity := presence.New().SetState("Playing").SetDetails("Solo").ToActivity()

	var results []Result

	require.NoError(t, core.UpdateActivity(activity, func(r Result) {
		results = append(results, r)
	}))

	assert.Empty(t, results)
	require.Len(t, lib.activities, 1)
	assert.Equal(t, activity, lib.activities[0])

	require.NoError(t, core.RunCallbacks())
	assert.Equal(t, []Result{ResultOk}, results)
	assert.Empty(t, lib.pending)
}

func TestCoreCompletionCarriesFailure(t *testing.T) {
	t.Parallel()

	lib := newFakeLibrary()
	lib.nextResult = ResultInvalidSecret

	core, err := newCore(lib, Options{ClientID: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = core.Close() })

	var got Result

	require.NoError(t, core.ClearActivity(func(r Result) { got = r }))
	require.NoError(t, core.RunCallbacks())

	assert.Equal(t, ResultInvalidSecret, got)
}

func TestCoreActivityManagerCalls(t *testing.T) {
	t.Parallel()

	lib := newFakeLibrary()

	core, err := newCore(lib, Options{ClientID: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = core.Close() })

	done := 0
	count := func(Result) { done++ }

	require.NoError(t, core.SendRequestReply(42, JoinRequestReplyYes, count))
	require.NoError(t, core.SendInvite(42, ActivityActionJoin, "come play", count))
	require.NoError(t, core.AcceptInvite(42, count))
	require.NoError(t, core.RegisterCommand("game.exe --rpc"))
	require.NoError(t, core.RegisterSteam(440))
	require.NoError(t, core.RunCallbacks())

	assert.Equal(t, 3, done)
	assert.Zero(t, core.pendingCompletions())
	assert.Equal(t, []JoinRequestReply{JoinRequestReplyYes}, lib.replies)
	assert.Equal(t, []string{"come play"}, lib.invites)
	assert.Equal(t, []string{"game.exe --rpc"}, lib.commands)
	assert.Equal(t, []uint32{440}, lib.steamIDs)
}

func TestCoreDispatchesEvents(t *testing.T) {
	t.Parallel()

	lib := newFakeLibrary()

	var (
		joined    string
		spectated string
		requester User
	)

	core, err := newCore(lib, Options{
		ClientID: 1,
		Events: Events{
			OnActivityJoin:        func(secret string) { joined = secret },
			OnActivitySpectate:    func(secret string) { spectated = secret },
			OnActivityJoinRequest: func(user User) { requester = user },
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = core.Close() })

	joinSecret := []byte("join-secret\x00")
	spectateSecret := []byte("spectate-secret\x00")
	user, err := EncodeUser(User{ID: 99, Username: "Nelly", Discriminator: "0001"})
	require.NoError(t, err)

	lib.queued = append(lib.queued,
		func(data uintptr) { onActivityJoin(data, addressOf(joinSecret)) },
		func(data uintptr) { onActivitySpectate(data, addressOf(spectateSecret)) },
		func(data uintptr) { onActivityJoinRequest(data, addressOf(user)) },
	)

	require.NoError(t, core.RunCallbacks())

	assert.Equal(t, "join-secret", joined)
	assert.Equal(t, "spectate-secret", spectated)
	assert.Equal(t, User{ID: 99, Username: "Nelly", Discriminator: "0001"}, requester)
}

func TestCoreLogHookForwardsToLogger(t *testing.T) {
	t.Parallel()

	lib := newFakeLibrary()

	var out bytes.Buffer

	core, err := newCore(lib, Options{ClientID: 1, Logger: zerolog.New(&out)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = core.Close() })

	require.NotZero(t, lib.logToken)

	message := []byte("socket closed\x00")
	onLog(lib.logToken, uintptr(LogLevelWarn), addressOf(message))

	assert.Contains(t, out.String(), `"level":"warn"`)
	assert.Contains(t, out.String(), "socket closed")
}

func TestCoreClose(t *testing.T) {
	t.Parallel()

	lib := newFakeLibrary()

	core, err := newCore(lib, Options{ClientID: 1, Logger: zerolog.Nop()})
	require.NoError(t, err)

	assert.Zero(t, lib.logToken)

	called := false

	require.NoError(t, core.UpdateActivity(presence.Activity{State: "in menus"}, func(Result) { called = true }))
	require.Len(t, lib.pending, 1)
	assert.Equal(t, 1, core.pendingCompletions())

	token := core.eventToken
	unanswered := lib.pending[0].token

	require.NoError(t, core.Close())
	assert.ErrorIs(t, core.Close(), ErrClosed)
	assert.Equal(t, 1, lib.destroyed)

	_, ok := callbacks.lookup(token)
	assert.False(t, ok)

	_, ok = callbacks.lookup(unanswered)
	assert.False(t, ok)
	assert.Zero(t, core.pendingCompletions())

	// A late answer for a released token is ignored.
	onResult(unanswered, uintptr(ResultOk))
	assert.False(t, called)

	assert.ErrorIs(t, core.UpdateActivity(presence.Activity{}, nil), ErrClosed)
	assert.ErrorIs(t, core.RunCallbacks(), ErrClosed)
}

func TestOpenMissingLibrary(t *testing.T) {
	t.Parallel()

	_, err := Open(Options{LibraryPath: t.TempDir() + "/missing_sdk"})
	assert.ErrorIs(t, err, ErrLibraryNotFound)
}
