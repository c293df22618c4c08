//go:build windows && (amd64 || arm64)

package sdk

import (
	"fmt"
	"sync"
	"syscall"

	"golang.org/x/sys/windows"
)

type nativeLibrary struct {
	dll           *windows.DLL
	discordCreate uintptr
}

func loadLibrary(path string) (abi, error) {
	dll, err := windows.LoadDLL(path)
	if err != nil {
		return nil, err
	}

	proc, err := dll.FindProc("DiscordCreate")
	if err != nil {
		_ = dll.Release() //nolint:errcheck
		return nil, fmt.Errorf("failed to find DiscordCreate: %w", err)
	}

	return &nativeLibrary{
		dll:           dll,
		discordCreate: proc.Addr(),
	}, nil
}

func (l *nativeLibrary) createFunc() uintptr {
	return l.discordCreate
}

func (l *nativeLibrary) call(fn uintptr, args ...uintptr) uintptr {
	r1, _, _ := syscall.SyscallN(fn, args...)

	return r1
}

var (
	trampolinesOnce sync.Once
	trampolinesTbl  *trampolineTable
)

// Windows limits the number of callbacks a process may create, so the table
// is built once and shared by every core.
func (l *nativeLibrary) trampolines() *trampolineTable {
	trampolinesOnce.Do(func() {
		trampolinesTbl = &trampolineTable{
			result:           windows.NewCallback(onResult),
			log:              windows.NewCallback(onLog),
			activityJoin:     windows.NewCallback(onActivityJoin),
			activitySpectate: windows.NewCallback(onActivitySpectate),
			joinRequest:      windows.NewCallback(onActivityJoinRequest),
			invite:           windows.NewCallback(onActivityInvite),
		}
	})

	return trampolinesTbl
}
