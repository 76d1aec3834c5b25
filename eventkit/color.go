package eventkit

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// fallbackHex is emitted when the native channel layout has no defined RGBA
// approximation. Components and Space stay authoritative in that case.
const fallbackHex = "#00000000"

// componentPrecision is the fixed decimal precision for the components
// string. Native channel values are CGFloat-ish fractions; six places keeps
// every observed value exact.
const componentPrecision = 6

// encodeColor converts a native color into the three-field stable form.
//
// The hex approximation covers the shapes with a defined RGBA reading: four
// or more channels are taken as R,G,B,A; one or two channels as gray plus
// optional alpha. Every other layout falls back to fallbackHex.
func encodeColor(n NativeColor) CalendarColor {
	parts := make([]string, len(n.Components))
	for i, c := range n.Components {
		parts[i] = strconv.FormatFloat(c, 'f', componentPrecision, 64)
	}
	color := CalendarColor{
		Hex:        fallbackHex,
		Components: strings.Join(parts, ","),
		Space:      colorSpaceTag(n.Space),
	}
	switch {
	case len(n.Components) >= 4:
		color.Hex = hexRGBA(n.Components[0], n.Components[1], n.Components[2], n.Components[3])
	case len(n.Components) == 2:
		gray := n.Components[0]
		color.Hex = hexRGBA(gray, gray, gray, n.Components[1])
	case len(n.Components) == 1:
		gray := n.Components[0]
		color.Hex = hexRGBA(gray, gray, gray, 1)
	}
	return color
}

func hexRGBA(r, g, b, a float64) string {
	return fmt.Sprintf("#%02X%02X%02X%02X", channelByte(r), channelByte(g), channelByte(b), channelByte(a))
}

func channelByte(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}

// parseColorHex is the write-path codec. It accepts #RRGGBB (alpha defaults
// to opaque) and #RRGGBBAA and produces an RGB native color; writing through
// non-RGB spaces is not supported.
func parseColorHex(hex string) (NativeColor, error) {
	if !strings.HasPrefix(hex, "#") {
		return NativeColor{}, validationErr("color hex %q must start with '#'", hex)
	}
	digits := hex[1:]
	if len(digits) != 6 && len(digits) != 8 {
		return NativeColor{}, validationErr("color hex %q must be #RRGGBB or #RRGGBBAA", hex)
	}
	channels := []float64{0, 0, 0, 1}
	for i := 0; i < len(digits)/2; i++ {
		v, err := strconv.ParseUint(digits[2*i:2*i+2], 16, 8)
		if err != nil {
			return NativeColor{}, validationErr("color hex %q contains a non-hex digit", hex)
		}
		channels[i] = float64(v) / 255
	}
	return NativeColor{Components: channels, Space: RawColorSpaceRGB}, nil
}
