package ledcontrol

import "strings"

// AlertColor is one of the fixed set of colors a tipper can request by
// naming it in the tip message.
type AlertColor int

const (
	Red AlertColor = iota
	Orange
	Yellow
	Green
	Blue
	Indigo
	Violet
	Black
)

var colorNames = [...]string{
	Red:    "red",
	Orange: "orange",
	Yellow: "yellow",
	Green:  "green",
	Blue:   "blue",
	Indigo: "indigo",
	Violet: "violet",
	Black:  "black",
}

// Packed 0xRRGGBB values, the format the ws281x driver expects.
var colorValues = [...]uint32{
	Red:    0xFF0000,
	Orange: 0xFFA500,
	Yellow: 0xFFFF00,
	Green:  0x00FF00,
	Blue:   0x0000FF,
	Indigo: 0x4B0082,
	Violet: 0x9400D3,
	Black:  0x000000,
}

func (c AlertColor) String() string { return colorNames[c] }

// RGB returns the packed 0xRRGGBB value for the color.
func (c AlertColor) RGB() uint32 { return colorValues[c] }

// AllColors lists every supported alert color.
func AllColors() []AlertColor {
	return []AlertColor{Red, Orange, Yellow, Green, Blue, Indigo, Violet, Black}
}

// ColorFromString matches s against the known color names, ignoring case.
// The second return value reports whether s named a supported color.
func ColorFromString(s string) (AlertColor, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range colorNames {
		if s == name {
			return AlertColor(i), true
		}
	}
	return 0, false
}
