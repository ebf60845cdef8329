package tlv

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Hex constructs a byte slice from a series of hex strings. Whitespace is
// ignored, so fixtures can be laid out as "6F 1A", "84 07 A0000000041010".
// It panics on malformed input and is meant for tests and literals.
func Hex(parts ...string) []byte {
	data, err := ParseHex(parts...)
	if err != nil {
		panic(err.Error())
	}
	return data
}

// ParseHex is like Hex but reports malformed input as an error.
func ParseHex(parts ...string) ([]byte, error) {
	cleanHex := strings.Join(strings.Fields(strings.Join(parts, " ")), "")

	data, err := hex.DecodeString(cleanHex)
	if err != nil {
		return nil, fmt.Errorf("invalid input '%s': %w", cleanHex, err)
	}
	return data, nil
}
