package eventkit

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
)

func TestEncodeColorRGBA(t *testing.T) {
	color := encodeColor(NativeColor{
		Components: []float64{0, 0.478, 1, 1},
		Space:      RawColorSpaceRGB,
	})
	be.Equal(t, color.Hex, "#007AFFFF")
	be.Equal(t, color.Components, "0.000000,0.478000,1.000000,1.000000")
	be.Equal(t, color.Space, ColorSpaceRGB)
}

func TestEncodeColorGray(t *testing.T) {
	withAlpha := encodeColor(NativeColor{
		Components: []float64{0.5, 1},
		Space:      RawColorSpaceMonochrome,
	})
	be.Equal(t, withAlpha.Hex, "#808080FF")
	be.Equal(t, withAlpha.Space, ColorSpaceMonochrome)

	opaque := encodeColor(NativeColor{
		Components: []float64{0.25},
		Space:      RawColorSpaceMonochrome,
	})
	be.Equal(t, opaque.Hex, "#404040FF")
}

func TestEncodeColorFallback(t *testing.T) {
	color := encodeColor(NativeColor{
		Components: []float64{0.1, 0.2, 0.3},
		Space:      RawColorSpaceLab,
	})
	be.Equal(t, color.Hex, fallbackHex)
	be.Equal(t, color.Components, "0.100000,0.200000,0.300000")
	be.Equal(t, color.Space, ColorSpaceLab)
}

func TestChannelByteClamping(t *testing.T) {
	be.Equal(t, channelByte(-0.5), uint8(0))
	be.Equal(t, channelByte(0), uint8(0))
	be.Equal(t, channelByte(1), uint8(255))
	be.Equal(t, channelByte(1.7), uint8(255))
	be.Equal(t, channelByte(0.5), uint8(128))
}

func TestParseColorHex(t *testing.T) {
	n, err := parseColorHex("#336699")
	be.Err(t, err, nil)
	be.Equal(t, n.Space, RawColorSpaceRGB)
	be.Equal(t, n.Components, []float64{0.2, 0.4, 0.6, 1})

	n, err = parseColorHex("#00000080")
	be.Err(t, err, nil)
	be.Equal(t, n.Components[3], float64(0x80)/255)
}

func TestParseColorHexRejectsMalformedInput(t *testing.T) {
	for _, hex := range []string{"336699", "#FFF", "#12345", "#GG0000FF", "#336699CCDD"} {
		_, err := parseColorHex(hex)
		be.Err(t, err)
		var e *Error
		be.True(t, errors.As(err, &e))
		be.Equal(t, e.Code, ErrorCodeValidation)
	}
}

func TestColorHexRoundTrip(t *testing.T) {
	for _, hex := range []string{"#FF0000FF", "#007AFF80", "#00000000", "#FFFFFFFF"} {
		n, err := parseColorHex(hex)
		be.Err(t, err, nil)
		be.Equal(t, encodeColor(n).Hex, hex)
	}
}
