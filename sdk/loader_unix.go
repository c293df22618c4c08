//go:build (darwin || linux) && (amd64 || arm64)

package sdk

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

type nativeLibrary struct {
	handle        uintptr
	discordCreate uintptr
}

func loadLibrary(path string) (abi, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, err
	}

	sym, err := purego.Dlsym(handle, "DiscordCreate")
	if err != nil {
		_ = purego.Dlclose(handle) //nolint:errcheck
		return nil, fmt.Errorf("failed to find DiscordCreate: %w", err)
	}

	return &nativeLibrary{
		handle:        handle,
		discordCreate: sym,
	}, nil
}

func (l *nativeLibrary) createFunc() uintptr {
	return l.discordCreate
}

func (l *nativeLibrary) call(fn uintptr, args ...uintptr) uintptr {
	r1, _, _ := purego.SyscallN(fn, args...)

	return r1
}

var (
	trampolinesOnce sync.Once
	trampolinesTbl  *trampolineTable
)

// Callbacks created by purego are never freed, so the table is built once.
func (l *nativeLibrary) trampolines() *trampolineTable {
	trampolinesOnce.Do(func() {
		trampolinesTbl = &trampolineTable{
			result:           purego.NewCallback(onResult),
			log:              purego.NewCallback(onLog),
			activityJoin:     purego.NewCallback(onActivityJoin),
			activitySpectate: purego.NewCallback(onActivitySpectate),
			joinRequest:      purego.NewCallback(onActivityJoinRequest),
			invite:           purego.NewCallback(onActivityInvite),
		}
	})

	return trampolinesTbl
}
