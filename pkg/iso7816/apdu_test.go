package iso7816

import (
	"encoding/hex"
	"strings"
	"testing"
)

func TestCommandAPDU_Encoding(t *testing.T) {
	// Setup base objects
	cls, _ := NewClass(0x00)
	insSelect, _ := NewInstruction(INS_SELECT)
	insRead, _ := NewInstruction(INS_READ_BINARY)

	tests := []struct {
		name     string
		cmd      *CommandAPDU
		expected string
	}{
		{
			name:     "Case 1: Header Only (No Data, No Le)",
			cmd:      NewCommandAPDU(cls, insSelect, 0x01, 0x02, nil, 0),
			expected: "00A40102",
		},
		{
			name: "Case 2 Short: Data < MaxShortLc",
			cmd:  NewCommandAPDU(cls, insSelect, 0x04, 0x00, []byte{0xA0, 0x00}, 0),
			// Lc=02, Data=A000
			expected: "00A4040002A000",
		},
		{
			name: "Case 3 Short: No Data, Le=MaxShortLe (256)",
			cmd:  NewCommandAPDU(cls, insRead, 0x00, 0x00, nil, MaxShortLe),
			// Le=00 means 256 in Short mode
			expected: "00B0000000",
		},
		{
			name: "Case 4 Short: Data and Le",
			cmd:  NewCommandAPDU(cls, insSelect, 0x00, 0x00, []byte{0x01}, 10),
			// Lc=01, Data=01, Le=0A
			expected: "00A4000001010A",
		},
		{
			name: "Case 2 Extended: Data > MaxShortLc",
			cmd: func() *CommandAPDU {
				longData := make([]byte, 260) // 260 bytes > 255
				return NewCommandAPDU(cls, insSelect, 0x00, 0x00, longData, 0)
			}(),
			// Lc Extended: 00 (Flag) + 0104 (Len 260) + Data...
			expected: "00A40000000104" + hex.EncodeToString(make([]byte, 260)),
		},
		{
			name: "Case 3 Extended: No Data, Le=MaxExtendedLe (65536)",
			cmd:  NewCommandAPDU(cls, insRead, 0x00, 0x00, nil, MaxExtendedLe),
			// Lc absent (00 Flag for Le) + Le Extended (0000 for 65536)
			expected: "00B00000000000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotBytes, err := tt.cmd.Bytes()
			if err != nil {
				t.Fatalf("Encoding failed: %v", err)
			}
			gotHex := strings.ToUpper(hex.EncodeToString(gotBytes))
			expectedHex := strings.ToUpper(tt.expected)

			if gotHex != expectedHex {
				// Display truncated strings for readability
				dispGot := gotHex
				dispExp := expectedHex
				if len(dispGot) > 50 {
					dispGot = dispGot[:20] + "..." + dispGot[len(dispGot)-10:]
					dispExp = dispExp[:20] + "..." + dispExp[len(dispExp)-10:]
				}
				t.Errorf("Mismatch\nExpected: %s\nGot:      %s", dispExp, dispGot)
			}
		})
	}
}

func TestParseResponseAPDU(t *testing.T) {
	// Raw: 01 02 03 (Data) | 90 00 (SW)
	raw, _ := hex.DecodeString("0102039000")
	resp, err := ParseResponseAPDU(raw)

	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(resp.Data) != 3 {
		t.Errorf("Wrong data length: got %d, want 3", len(resp.Data))
	}
	if resp.Status != SW_NO_ERROR {
		t.Errorf("Wrong status: got %04X, want %04X", uint16(resp.Status), uint16(SW_NO_ERROR))
	}
}

func TestParseResponseAPDU_TooShort(t *testing.T) {
	// Only 1 byte, should fail
	raw := []byte{0x90}
	_, err := ParseResponseAPDU(raw)

	if err == nil {
		t.Error("Expected error for short response, got nil")
	}
}

func TestParseCommandAPDU(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantIns  InsCode
		wantData string
		wantNe   int
	}{
		{"Case 1", "00A40400", INS_SELECT, "", 0},
		{"Case 2 short", "00B2010C00", INS_READ_RECORD, "", MaxShortLe},
		{"Case 3 short", "00A4040002A000", INS_SELECT, "A000", 0},
		{"Case 4 short", "00A404000E325041592E5359532E444446303100", INS_SELECT, "325041592E5359532E4444463031", MaxShortLe},
		{"Case 2 extended", "00B00000000000", INS_READ_BINARY, "", MaxExtendedLe},
		{"Case 2 extended explicit", "00B00000000200", INS_READ_BINARY, "", 512},
		{"Case 3 extended", "00DA00000000020102", INS_PUT_DATA, "0102", 0},
		{"Case 4 extended", "00CA9F7F000001AA0100", INS_GET_DATA, "AA", 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, _ := hex.DecodeString(tt.raw)
			cmd, err := ParseCommandAPDU(raw)
			if err != nil {
				t.Fatalf("ParseCommandAPDU(%s) error = %v", tt.raw, err)
			}
			if cmd.Instruction.Raw != tt.wantIns {
				t.Errorf("INS = %v, want %v", cmd.Instruction.Raw, tt.wantIns)
			}
			if got := strings.ToUpper(hex.EncodeToString(cmd.Data)); got != tt.wantData {
				t.Errorf("Data = %s, want %s", got, tt.wantData)
			}
			if cmd.Ne != tt.wantNe {
				t.Errorf("Ne = %d, want %d", cmd.Ne, tt.wantNe)
			}
		})
	}
}

func TestParseCommandAPDU_ShortRoundTrip(t *testing.T) {
	for _, in := range []string{"00A40400", "00B2010C00", "00A4040002A000", "00A4000001010A", "80CA9F3600"} {
		raw, _ := hex.DecodeString(in)
		cmd, err := ParseCommandAPDU(raw)
		if err != nil {
			t.Fatalf("ParseCommandAPDU(%s) error = %v", in, err)
		}
		out, err := cmd.Bytes()
		if err != nil {
			t.Fatalf("Bytes() error = %v", err)
		}
		if got := strings.ToUpper(hex.EncodeToString(out)); got != in {
			t.Errorf("round trip = %s, want %s", got, in)
		}
	}
}

func TestParseCommandAPDU_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"Too short", "00A404"},
		{"Reserved CLA", "FFA40400"},
		{"Invalid INS", "006A0000"},
		{"Short Lc mismatch", "00A4040005A000"},
		{"Extended zero Lc", "00A40400000000AA"},
		{"Extended Lc mismatch", "00A4040000000301"},
		{"Dangling marker", "00A404000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, _ := hex.DecodeString(tt.raw)
			if _, err := ParseCommandAPDU(raw); err == nil {
				t.Errorf("ParseCommandAPDU(%s) expected an error", tt.raw)
			}
		})
	}
}

func TestResponseAPDU_Elements(t *testing.T) {
	raw, _ := hex.DecodeString("6F0884020102A5025000" + "9000")
	resp, err := ParseResponseAPDU(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	elements, err := resp.Elements()
	if err != nil {
		t.Fatalf("Elements() error = %v", err)
	}
	if len(elements) != 1 || elements[0].Tag() != 0x6F {
		t.Fatalf("Elements() = %v, want a single 6F template", elements)
	}
	if n := len(elements[0].Children()); n != 2 {
		t.Errorf("6F has %d children, want 2", n)
	}
}

func TestCommandAPDU_BytesLimits(t *testing.T) {
	cls, _ := NewClass(0x00)
	ins, _ := NewInstruction(INS_UPDATE_BINARY)

	if _, err := NewCommandAPDU(cls, ins, 0, 0, make([]byte, MaxExtendedLc+1), 0).Bytes(); err == nil {
		t.Error("Bytes() should reject data longer than 65535 bytes")
	}
	if _, err := NewCommandAPDU(cls, ins, 0, 0, nil, MaxExtendedLe+1).Bytes(); err == nil {
		t.Error("Bytes() should reject Ne above 65536")
	}
}
