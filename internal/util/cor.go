package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HexToHSL converts a #rrggbb (or #rgb) color into the space-separated HSL
// token format used by the portal theme ("0 0% 0%" for black, "0 0% 100%"
// for white). Invalid input falls back to black.
func HexToHSL(hex string) string {
	r, g, b, err := parseHex(hex)
	if err != nil {
		return "0 0% 0%"
	}

	rf := float64(r) / 255
	gf := float64(g) / 255
	bf := float64(b) / 255

	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	l := (max + min) / 2

	var h, s float64
	if max != min {
		d := max - min
		if l > 0.5 {
			s = d / (2 - max - min)
		} else {
			s = d / (max + min)
		}
		switch max {
		case rf:
			h = (gf - bf) / d
			if gf < bf {
				h += 6
			}
		case gf:
			h = (bf-rf)/d + 2
		default:
			h = (rf-gf)/d + 4
		}
		h *= 60
	}

	return fmt.Sprintf("%s %s%% %s%%", formatHSL(h), formatHSL(s*100), formatHSL(l*100))
}

func parseHex(hex string) (uint8, uint8, uint8, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex color")
	}

	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex color: %w", err)
	}
	return uint8(value >> 16), uint8(value >> 8), uint8(value), nil
}

// formatHSL rounds to one decimal and trims the trailing zero so that
// whole values render bare ("100", not "100.0").
func formatHSL(v float64) string {
	rounded := math.Round(v*10) / 10
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
