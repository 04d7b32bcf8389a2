package colors

import (
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"
)

// Badge palette, opaque.
var Colors = map[string]color.NRGBA{
	"slack":  {0xE0, 0x15, 0x63, 0xFF},
	"green":  {0x44, 0xCC, 0x11, 0xFF},
	"blue":   {0x00, 0x7E, 0xC6, 0xFF},
	"orange": {0xFE, 0x7D, 0x37, 0xFF},
	"yellow": {0xDF, 0xB3, 0x17, 0xFF},
	"red":    {0xE0, 0x5D, 0x44, 0xFF},
	"gray":   {0x55, 0x55, 0x55, 0xFF},
	"grey":   {0x55, 0x55, 0x55, 0xFF},
	"silver": {0x9F, 0x9F, 0x9F, 0xFF},
	"black":  {0x00, 0x00, 0x00, 0xFF},
	"white":  {0xFF, 0xFF, 0xFF, 0xFF},
}

var (
	// Label is the fill behind the "slack" half of a badge.
	Label = Colors["gray"]
	// Value is the default fill behind the counts.
	Value = Colors["slack"]
	// Throttled fills the counts when they are stale or unknown.
	Throttled = Colors["silver"]
)

var hexColorRe = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// ToColor resolves a palette name or a hex code. Hex codes may be three characters (#4c1), six (#44cc11) or
// eight, the last byte being alpha.
func ToColor(name string) (color.NRGBA, error) {
	if named, ok := Colors[strings.ToLower(name)]; ok {
		return named, nil
	}
	if !hexColorRe.MatchString(name) {
		return color.NRGBA{}, fmt.Errorf("%q is neither a badge color name nor a hex color code", name)
	}

	hex := strings.TrimPrefix(name, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parsing hex color %q: %w", name, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Or resolves name like ToColor, returning fallback when name is empty or unknown.
func Or(name string, fallback color.NRGBA) color.NRGBA {
	if name == "" {
		return fallback
	}
	c, err := ToColor(name)
	if err != nil {
		return fallback
	}
	return c
}
