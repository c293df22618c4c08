// Package sdk drives the Discord Game SDK shared library.
//
// Records crossing the library boundary are plain byte buffers laid out as in
// discord_game_sdk.h (see layout.go). Go callbacks are identified towards the
// library by registry tokens rather than pointers to Go memory.
//
// The library is not thread safe: a Core must only be used from one goroutine,
// ideally locked to its OS thread, which also calls RunCallbacks.
package sdk

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/EpicStep/discord-integration-go/presence"
)

var (
	// ErrLibraryNotFound is returned by Open when the library file is missing.
	ErrLibraryNotFound = errors.New("discord game sdk library not found")
	// ErrUnsupportedPlatform is returned by Open on platforms without a loader.
	ErrUnsupportedPlatform = errors.New("discord game sdk is not supported on this platform")
	// ErrClosed is returned by calls on a destroyed Core.
	ErrClosed = errors.New("discord core is closed")
)

// IDiscordCore method table.
const (
	coreDestroy            = 0
	coreRunCallbacks       = 1
	coreSetLogHook         = 2
	coreGetActivityManager = 6
)

// IDiscordActivityManager method table.
const (
	activityRegisterCommand  = 0
	activityRegisterSteam    = 1
	activityUpdateActivity   = 2
	activityClearActivity    = 3
	activitySendRequestReply = 4
	activitySendInvite       = 5
	activityAcceptInvite     = 6
)

// IDiscordActivityEvents slots.
const (
	eventActivityJoin = iota
	eventActivitySpectate
	eventActivityJoinRequest
	eventActivityInvite

	activityEventCount
)

// callbacks maps tokens handed to the library to Go values: *Core for event
// data, LogHook for the log hook, *completion for one-shot completions.
var callbacks = newRegistry()

// abi is the raw calling surface of a loaded library.
type abi interface {
	createFunc() uintptr
	call(fn uintptr, args ...uintptr) uintptr
	trampolines() *trampolineTable
}

// trampolineTable holds C callable entry points into the dispatch functions.
type trampolineTable struct {
	result           uintptr
	log              uintptr
	activityJoin     uintptr
	activitySpectate uintptr
	joinRequest      uintptr
	invite           uintptr
}

// LogHook receives the library's log lines.
type LogHook func(level LogLevel, message string)

// Core is an IDiscordCore instance with its activity manager.
type Core struct {
	lib    abi
	events Events
	logger zerolog.Logger

	core            uintptr
	activityManager uintptr

	// Buffers referenced by the library for the lifetime of the core.
	coreEvents     []byte
	activityEvents []byte
	createOut      *uintptr

	// pinned keeps the argument buffer of the call in flight on the heap.
	pinned []byte

	eventToken uintptr
	logToken   uintptr

	// pending holds the completion tokens the library has not answered yet.
	pending   map[uintptr]struct{}
	pendingMu sync.Mutex

	closed atomic.Bool
}

type completion struct {
	core *Core
	done func(Result)
}

// Open loads the library and creates a core.
func Open(opts Options) (*Core, error) {
	opts.setDefaults()

	if _, err := os.Stat(opts.LibraryPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLibraryNotFound, opts.LibraryPath)
	}

	lib, err := loadLibrary(opts.LibraryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", opts.LibraryPath, err)
	}

	return newCore(lib, opts)
}

func newCore(lib abi, opts Options) (*Core, error) {
	tramps := lib.trampolines()

	c := &Core{
		lib:            lib,
		events:         opts.Events,
		logger:         opts.Logger,
		coreEvents:     make([]byte, ptrSize),
		activityEvents: make([]byte, activityEventCount*ptrSize),
		createOut:      new(uintptr),
		pending:        make(map[uintptr]struct{}),
	}

	writePointer(c.activityEvents, eventActivityJoin, tramps.activityJoin)
	writePointer(c.activityEvents, eventActivitySpectate, tramps.activitySpectate)
	writePointer(c.activityEvents, eventActivityJoinRequest, tramps.joinRequest)
	writePointer(c.activityEvents, eventActivityInvite, tramps.invite)

	c.eventToken = callbacks.register(c)

	params := encodeCreateParams(createParams{
		clientID:       opts.ClientID,
		flags:          opts.Flags,
		events:         addressOf(c.coreEvents),
		eventData:      c.eventToken,
		activityEvents: addressOf(c.activityEvents),
	})

	result := Result(int32(lib.call(lib.createFunc(), Version, c.pin(params), pointerOf(c.createOut))))
	c.unpin()

	if err := result.Err(); err != nil {
		callbacks.release(c.eventToken)
		return nil, fmt.Errorf("failed to create discord core: %w", err)
	}

	c.core = *c.createOut

	c.activityManager = lib.call(c.coreMethod(coreGetActivityManager), c.core)
	if c.activityManager == 0 {
		_ = c.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to get activity manager: %w", ResultInternalError.Err())
	}

	if c.logger.GetLevel() != zerolog.Disabled {
		level := opts.LogLevel
		c.SetLogHook(level, func(l LogLevel, message string) {
			c.logger.WithLevel(l.level()).Str("source", "discord_game_sdk").Msg(message)
		})
	}

	return c, nil
}

// RunCallbacks pumps pending events and completions. Call it about 60 times
// per second from the goroutine that owns the core.
func (c *Core) RunCallbacks() error {
	if c.closed.Load() {
		return ErrClosed
	}

	return Result(int32(c.lib.call(c.coreMethod(coreRunCallbacks), c.core))).Err()
}

// SetLogHook replaces the log hook.
func (c *Core) SetLogHook(minLevel LogLevel, hook LogHook) {
	if c.closed.Load() {
		return
	}

	token := callbacks.register(hook)
	c.lib.call(c.coreMethod(coreSetLogHook), c.core, uintptr(minLevel), token, c.lib.trampolines().log)

	if c.logToken != 0 {
		callbacks.release(c.logToken)
	}

	c.logToken = token
}

// UpdateActivity publishes the activity. done runs from a later RunCallbacks.
func (c *Core) UpdateActivity(activity presence.Activity, done func(Result)) error {
	if c.closed.Load() {
		return ErrClosed
	}

	buf, err := EncodeActivity(activity)
	if err != nil {
		return err
	}

	token := c.registerCompletion(done)
	c.lib.call(c.activityMethod(activityUpdateActivity), c.activityManager, c.pin(buf), token, c.lib.trampolines().result)
	c.unpin()

	return nil
}

func (c *Core) ClearActivity(done func(Result)) error {
	if c.closed.Load() {
		return ErrClosed
	}

	token := c.registerCompletion(done)
	c.lib.call(c.activityMethod(activityClearActivity), c.activityManager, token, c.lib.trampolines().result)

	return nil
}

func (c *Core) SendRequestReply(userID int64, reply JoinRequestReply, done func(Result)) error {
	if c.closed.Load() {
		return ErrClosed
	}

	token := c.registerCompletion(done)
	c.lib.call(c.activityMethod(activitySendRequestReply), c.activityManager, uintptr(userID), uintptr(reply), token, c.lib.trampolines().result)

	return nil
}

func (c *Core) SendInvite(userID int64, action ActivityActionType, content string, done func(Result)) error {
	if c.closed.Load() {
		return ErrClosed
	}

	text, err := cString(content)
	if err != nil {
		return fmt.Errorf("failed to encode invite content: %w", err)
	}

	token := c.registerCompletion(done)
	c.lib.call(c.activityMethod(activitySendInvite), c.activityManager, uintptr(userID), uintptr(action), c.pin(text), token, c.lib.trampolines().result)
	c.unpin()

	return nil
}

func (c *Core) AcceptInvite(userID int64, done func(Result)) error {
	if c.closed.Load() {
		return ErrClosed
	}

	token := c.registerCompletion(done)
	c.lib.call(c.activityMethod(activityAcceptInvite), c.activityManager, uintptr(userID), token, c.lib.trampolines().result)

	return nil
}

// RegisterCommand registers the command Discord runs to launch the game.
func (c *Core) RegisterCommand(command string) error {
	if c.closed.Load() {
		return ErrClosed
	}

	text, err := cString(command)
	if err != nil {
		return fmt.Errorf("failed to encode command: %w", err)
	}

	result := Result(int32(c.lib.call(c.activityMethod(activityRegisterCommand), c.activityManager, c.pin(text))))
	c.unpin()

	return result.Err()
}

// RegisterSteam registers a Steam application id to launch the game through.
func (c *Core) RegisterSteam(steamID uint32) error {
	if c.closed.Load() {
		return ErrClosed
	}

	return Result(int32(c.lib.call(c.activityMethod(activityRegisterSteam), c.activityManager, uintptr(steamID)))).Err()
}

// Close destroys the core and releases its registry tokens, including those
// of completions the library never answered. Their callbacks do not run.
func (c *Core) Close() error {
	if c.closed.Swap(true) {
		return ErrClosed
	}

	if c.core != 0 {
		c.lib.call(c.coreMethod(coreDestroy), c.core)
	}

	callbacks.release(c.eventToken)

	if c.logToken != 0 {
		callbacks.release(c.logToken)
	}

	c.pendingMu.Lock()
	for token := range c.pending {
		callbacks.release(token)
	}
	c.pending = make(map[uintptr]struct{})
	c.pendingMu.Unlock()

	runtime.KeepAlive(c.coreEvents)
	runtime.KeepAlive(c.activityEvents)

	return nil
}

func (c *Core) registerCompletion(done func(Result)) uintptr {
	token := callbacks.register(&completion{core: c, done: done})

	c.pendingMu.Lock()
	c.pending[token] = struct{}{}
	c.pendingMu.Unlock()

	return token
}

func (c *Core) forgetCompletion(token uintptr) {
	c.pendingMu.Lock()
	delete(c.pending, token)
	c.pendingMu.Unlock()
}

func (c *Core) pendingCompletions() int {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	return len(c.pending)
}

func (c *Core) coreMethod(index int) uintptr {
	return readPointer(c.core, index)
}

func (c *Core) activityMethod(index int) uintptr {
	return readPointer(c.activityManager, index)
}

func (c *Core) pin(buf []byte) uintptr {
	c.pinned = buf

	return addressOf(buf)
}

func (c *Core) unpin() {
	c.pinned = nil
}

func (c *Core) dispatchJoin(secret string) {
	if c.events.OnActivityJoin != nil {
		c.events.OnActivityJoin(secret)
	}
}

func (c *Core) dispatchSpectate(secret string) {
	if c.events.OnActivitySpectate != nil {
		c.events.OnActivitySpectate(secret)
	}
}

func (c *Core) dispatchJoinRequest(user User) {
	if c.events.OnActivityJoinRequest != nil {
		c.events.OnActivityJoinRequest(user)
	}
}

func (c *Core) dispatchInvite(action ActivityActionType, user User, activity presence.Activity) {
	if c.events.OnActivityInvite != nil {
		c.events.OnActivityInvite(action, user, activity)
	}
}
