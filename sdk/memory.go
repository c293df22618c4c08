package sdk

import (
	"unsafe"
)

const ptrSize = unsafe.Sizeof(uintptr(0))

// maxCStringLength bounds reads of NUL terminated strings owned by the library.
const maxCStringLength = 4096

// readPointer returns the index-th pointer of the table at addr.
func readPointer(addr uintptr, index int) uintptr {
	return *(*uintptr)(unsafe.Pointer(addr + uintptr(index)*ptrSize))
}

func writePointer(buf []byte, index int, value uintptr) {
	*(*uintptr)(unsafe.Pointer(&buf[uintptr(index)*ptrSize])) = value
}

// readBytes copies n bytes of native memory starting at addr.
func readBytes(addr uintptr, n int) []byte {
	if addr == 0 {
		return nil
	}

	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(addr)), n))

	return out
}

// readCString decodes the NUL terminated Windows-1252 string at addr.
func readCString(addr uintptr) string {
	if addr == 0 {
		return ""
	}

	for n := 0; n < maxCStringLength; n++ {
		if *(*byte)(unsafe.Pointer(addr + uintptr(n))) == 0 {
			return getText(readBytes(addr, n))
		}
	}

	return getText(readBytes(addr, maxCStringLength))
}

func addressOf(buf []byte) uintptr {
	if len(buf) == 0 {
		return 0
	}

	return uintptr(unsafe.Pointer(&buf[0]))
}

func pointerOf(p *uintptr) uintptr {
	return uintptr(unsafe.Pointer(p))
}
