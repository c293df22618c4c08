package presence

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// EncodeANSI encodes s as Windows-1252, the encoding of the native text
// buffers. Characters outside the code page become a substitute byte.
func EncodeANSI(s string) (string, error) {
	return encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()).String(s)
}

// TextLength is the size of s in a native text buffer, without the NUL
// terminator.
func TextLength(s string) int {
	encoded, err := EncodeANSI(s)
	if err != nil {
		return len(s)
	}

	return len(encoded)
}
