package emv

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// RenderHex shows binary data as hex(01 02 03).
func RenderHex(value []byte) string {
	return "hex(" + hexSpaced(value) + ")"
}

// RenderBCD shows a numeric (n) value as a decimal number followed by its
// raw bytes: 0x09 0x78 becomes "978 (hex(09 78))". Leading zero digits are
// dropped; an all-zero value reads as "0".
func RenderBCD(value []byte) string {
	digits := strings.TrimLeft(nibbles(value, false), "0")
	if digits == "" {
		digits = "0"
	}
	return fmt.Sprintf("%s (%s)", digits, RenderHex(value))
}

// RenderCompressedNumeric shows a compressed numeric (cn) value. Digits are
// read until the first 'F' padding nibble.
func RenderCompressedNumeric(value []byte) string {
	return fmt.Sprintf("%s (%s)", nibbles(value, true), RenderHex(value))
}

// RenderString decodes an ans value using ISO 8859-1.
func RenderString(value []byte) string {
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(value)
	if err != nil {
		return RenderHex(value)
	}
	return string(s)
}

// RenderDate shows an n 6 YYMMDD value as YYYY-MM-DD. Years are taken from
// the 2000s. Values of the wrong size fall back to hex.
func RenderDate(value []byte) string {
	if len(value) != 3 {
		return RenderHex(value)
	}
	d := nibbles(value, false)
	return fmt.Sprintf("20%s-%s-%s", d[0:2], d[2:4], d[4:6])
}

func nibbles(value []byte, stopAtPadding bool) string {
	var sb strings.Builder
	for _, b := range value {
		for _, n := range [2]byte{b >> 4, b & 0x0F} {
			if stopAtPadding && n == 0x0F {
				return sb.String()
			}
			sb.WriteByte("0123456789ABCDEF"[n])
		}
	}
	return sb.String()
}

func hexSpaced(value []byte) string {
	parts := make([]string, len(value))
	for i, b := range value {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}
