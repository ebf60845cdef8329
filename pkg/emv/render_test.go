package emv

import "testing"

func TestRenderers(t *testing.T) {
	tests := []struct {
		name   string
		render Formatter
		in     []byte
		want   string
	}{
		{"Hex", RenderHex, []byte{0x01, 0x02, 0xAB}, "hex(01 02 AB)"},
		{"Hex empty", RenderHex, nil, "hex()"},
		{"BCD currency", RenderBCD, []byte{0x09, 0x78}, "978 (hex(09 78))"},
		{"BCD leading zeros", RenderBCD, []byte{0x00, 0x01, 0x23}, "123 (hex(00 01 23))"},
		{"BCD zero", RenderBCD, []byte{0x00}, "0 (hex(00))"},
		{"Compressed numeric", RenderCompressedNumeric, []byte{0x54, 0x13, 0x33, 0x00, 0x89, 0x01, 0x23, 0x4F}, "541333008901234 (hex(54 13 33 00 89 01 23 4F))"},
		{"Compressed numeric padded byte", RenderCompressedNumeric, []byte{0x12, 0xFF}, "12 (hex(12 FF))"},
		{"Compressed numeric no padding", RenderCompressedNumeric, []byte{0x12, 0x34}, "1234 (hex(12 34))"},
		{"String", RenderString, []byte("VISA CREDIT"), "VISA CREDIT"},
		{"String latin-1", RenderString, []byte{0x43, 0x61, 0x66, 0xE9}, "Café"},
		{"Date", RenderDate, []byte{0x25, 0x12, 0x31}, "2025-12-31"},
		{"Date wrong size", RenderDate, []byte{0x25, 0x12}, "hex(25 12)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.render(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
