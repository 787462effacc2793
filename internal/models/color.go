package models

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is a colour as stored on disk
type RGB [3]uint8

// ParseHexRGB parses "#rrggbb"
func ParseHexRGB(hex string) (RGB, error) {
	if len(hex) != 7 || !strings.HasPrefix(hex, "#") {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	var rgb RGB
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(hex[1+i*2:3+i*2], 16, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
		}
		rgb[i] = uint8(v)
	}
	return rgb, nil
}

// ParseRGBString parses the canonical "r,g,b" form
func ParseRGBString(s string) (RGB, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	var rgb RGB
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		rgb[i] = uint8(v)
	}
	return rgb, nil
}

// String returns the canonical "r,g,b" form sent to clients
func (c RGB) String() string {
	return fmt.Sprintf("%d,%d,%d", c[0], c[1], c[2])
}

// Hex returns "#rrggbb"
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
