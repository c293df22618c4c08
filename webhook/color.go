package webhook

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned for malformed hexadecimal colours.
var ErrInvalidColor = errors.New("invalid hexadecimal color code")

var hexColorPattern = regexp.MustCompile(`^(?:[0-9a-fA-F]{3}){1,2}$`)

// EmbedColor is a 24-bit RGB colour. Hex, Decimal and RGB are views over the
// same value.
type EmbedColor int32

// ColorFromHex parses 3 or 6 hex digits, optionally prefixed with '#'. Three
// digits are read as a plain number, so "fff" is 0x000FFF.
func ColorFromHex(hex string) (EmbedColor, error) {
	hex = strings.TrimPrefix(hex, "#")

	if !hexColorPattern.MatchString(hex) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}

	v, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}

	return EmbedColor(v), nil
}

// MustColorFromHex is ColorFromHex for constants. It panics on bad input.
func MustColorFromHex(hex string) EmbedColor {
	c, err := ColorFromHex(hex)
	if err != nil {
		panic(err)
	}

	return c
}

// ColorFromDecimal keeps the low 24 bits of v.
func ColorFromDecimal(v int) EmbedColor {
	return EmbedColor(v & 0xFFFFFF)
}

func ColorFromRGB(r, g, b uint8) EmbedColor {
	return EmbedColor(int32(r)<<16 | int32(g)<<8 | int32(b))
}

// Hex returns six upper case hex digits.
func (c EmbedColor) Hex() string {
	return fmt.Sprintf("%06X", int32(c))
}

func (c EmbedColor) Decimal() int {
	return int(c)
}

func (c EmbedColor) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

func (c EmbedColor) String() string {
	return "#" + c.Hex()
}

// Presets.
var (
	ColorBlack          = MustColorFromHex("000000")
	ColorGray           = MustColorFromHex("808080")
	ColorWhite          = MustColorFromHex("FEFEFE")
	ColorRed            = MustColorFromHex("FF0000")
	ColorPink           = MustColorFromHex("FF40BF")
	ColorBurgundy       = MustColorFromHex("800040")
	ColorOrange         = MustColorFromHex("FF8000")
	ColorBrown          = MustColorFromHex("804000")
	ColorYellow         = MustColorFromHex("FFFF00")
	ColorGreen          = MustColorFromHex("104000")
	ColorLimeGreen      = MustColorFromHex("00FF00")
	ColorEmerald        = MustColorFromHex("106440")
	ColorOlive          = MustColorFromHex("648040")
	ColorBlue           = MustColorFromHex("0000FF")
	ColorLightBlue      = MustColorFromHex("00E1FF")
	ColorTurquoise      = MustColorFromHex("00FFC8")
	ColorPurple         = MustColorFromHex("8000FF")
	ColorLilac          = MustColorFromHex("BD8BC7")
	ColorPeriwinkle     = MustColorFromHex("A582FF")
	ColorMagenta        = MustColorFromHex("FF00FF")
	ColorBlurple        = MustColorFromHex("6064F4")
	ColorInvisibleDark  = MustColorFromHex("303434")
	ColorInvisibleLight = MustColorFromHex("F8F4F4")
)
