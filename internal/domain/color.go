package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a 24-bit RGB value laid out as 0xRRGGBB.
type Color uint32

const (
	White Color = 0xFFFFFF
	Black Color = 0x000000

	// NeutralGray marks countries with no data at all (CSS "gray").
	NeutralGray Color = 0x808080

	// severityMidpoint is the fixed interpolation factor for countries with data.
	severityMidpoint = 0.5
)

// RGBColor builds a Color from channel values, clamping each to [0,255].
func RGBColor(r, g, b int) Color {
	return Color(clampChannel(r)<<16 | clampChannel(g)<<8 | clampChannel(b))
}

// RGB splits the color into its 8-bit channels.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16 & 0xFF), uint8(c >> 8 & 0xFF), uint8(c & 0xFF)
}

// String formats the color as "#rrggbb".
func (c Color) String() string {
	r, g, b := c.RGB()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// MarshalText encodes the color as its "#rrggbb" string.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a "#rrggbb" string.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseHexColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseHexColor parses "#rrggbb" or "rrggbb", case-insensitively.
func ParseHexColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("parse color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color(v), nil
}

// Lerp linearly interpolates each channel from a to b by t, truncating the
// result toward zero. t is expected in [0,1]; channels are clamped regardless.
func Lerp(a, b Color, t float64) Color {
	ar, ag, ab := a.RGB()
	br, bg, bb := b.RGB()
	return RGBColor(
		lerpChannel(ar, br, t),
		lerpChannel(ag, bg, t),
		lerpChannel(ab, bb, t),
	)
}

func lerpChannel(a, b uint8, t float64) int {
	return int(float64(a) + t*(float64(b)-float64(a)))
}

func clampChannel(v int) uint32 {
	switch {
	case v < 0:
		return 0
	case v > 0xFF:
		return 0xFF
	default:
		return uint32(v)
	}
}

// Classification describes whether an outbreak is still growing.
type Classification string

const (
	// Contained means fewer active infections than both deaths and recoveries.
	Contained Classification = "contained"
	// Active is everything else.
	Active Classification = "active"
)

// Classify derives the classification from a triple.
func Classify(t SeverityTriple) Classification {
	infected := t.Infected()
	if infected < t.Recovered && infected < t.Deaths {
		return Contained
	}
	return Active
}

// SeverityColor returns the marker color for a country's latest counts. A nil
// triple means the country has no data at all and yields NeutralGray. Any
// other triple yields the white/black midpoint; the classification does not
// change the color.
// TODO: pick distinct colors for Contained and Active once a palette is agreed.
func SeverityColor(t *SeverityTriple) Color {
	if t == nil {
		return NeutralGray
	}
	return Lerp(White, Black, severityMidpoint)
}
