package util

import (
	"math"
	"strconv"
	"strings"
)

// refMask scrambles sequential IDs so public consultation codes are not
// trivially enumerable. This is obfuscation, not secrecy.
const refMask uint64 = 0x5DEECE66D1CA3F72

// CodificarRef turns a non-negative ID into an opaque public code.
// Negative input yields an empty string.
func CodificarRef(id int64) string {
	if id < 0 {
		return ""
	}
	return strconv.FormatUint(uint64(id)^refMask, 36)
}

// DecodificarRef reverses CodificarRef. Empty or malformed codes return
// nil so callers can treat them as "no reference".
func DecodificarRef(code string) *int64 {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}

	value, err := strconv.ParseUint(strings.ToLower(code), 36, 64)
	if err != nil {
		return nil
	}

	value ^= refMask
	if value > math.MaxInt64 {
		return nil
	}

	id := int64(value)
	return &id
}
