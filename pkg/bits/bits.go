// Package bits provides helpers to read and write single bits and bit ranges
// of a byte, using the 1-based numbering of ISO/IEC 7816 and EMV documents
// (b8 is the most significant bit, b1 the least significant).
package bits

// Bit returns a byte with only the n-th bit set (1 to 8).
func Bit(n uint) byte {
	if n < 1 || n > 8 {
		return 0
	}
	return 1 << (n - 1)
}

// IsSet checks if the n-th bit is set (1 to 8).
func IsSet(b byte, n uint) bool {
	return b&Bit(n) != 0
}

// Value returns the n-th bit of b as 0 or 1.
func Value(b byte, n uint) byte {
	if IsSet(b, n) {
		return 1
	}
	return 0
}

// GetRange extracts the value from a range of bits (e.g., bits 4 to 3).
// Example: GetRange(0b00001100, 4, 3) returns 3 (0b11)
func GetRange(b byte, high, low uint) byte {
	if high < low || high > 8 || low < 1 {
		return 0
	}

	width := high - low + 1
	mask := byte((1 << width) - 1)

	return (b >> (low - 1)) & mask
}

// Set returns b with the n-th bit set.
func Set(b byte, n uint) byte {
	return b | Bit(n)
}

// Clear returns b with the n-th bit cleared.
func Clear(b byte, n uint) byte {
	return b &^ Bit(n)
}

// SetTo returns b with the n-th bit set when on is true, cleared otherwise.
func SetTo(b byte, n uint, on bool) byte {
	if on {
		return Set(b, n)
	}
	return Clear(b, n)
}
