package bertlv

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncode_Lengths(t *testing.T) {
	tests := []struct {
		name       string
		valueLen   int
		wantHeader string
	}{
		{"Short form", 5, "9F10 05"},
		{"Short form upper bound", 127, "9F10 7F"},
		{"One length octet", 128, "9F10 81 80"},
		{"One length octet upper bound", 255, "9F10 81 FF"},
		{"Two length octets", 257, "9F10 82 0101"},
		{"Three length octets", 65536, "9F10 83 010000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := MustNew(0x9F10, bytes.Repeat([]byte{0xAB}, tt.valueLen))
			got := e.Encode()
			header := tlvHex(tt.wantHeader)

			if !bytes.HasPrefix(got, header) {
				t.Errorf("Encode() header = %X, want %X", got[:len(header)], header)
			}
			if len(got) != len(header)+tt.valueLen {
				t.Errorf("Encode() length = %d, want %d", len(got), len(header)+tt.valueLen)
			}
			if e.EncodedLen() != len(got) {
				t.Errorf("EncodedLen() = %d, want %d", e.EncodedLen(), len(got))
			}
		})
	}
}

func TestEncode_Constructed(t *testing.T) {
	tree := MustConstructed(0x6F,
		MustNew(0x84, tlvHex("A0000000041010")),
		MustConstructed(0xA5,
			MustNew(0x50, []byte("MasterCard")),
			MustNew(0x87, []byte{0x01}),
		),
	)

	want := tlvHex(
		"6F 1A",
		"84 07 A0000000041010",
		"A5 0F",
		"50 0A 4D617374657243617264",
		"87 01 01",
	)

	if diff := cmp.Diff(want, tree.Encode()); diff != "" {
		t.Errorf("Encode() mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_EmptyValues(t *testing.T) {
	got := Encode(MustNew(0x10, nil), MustConstructed(0x70))
	if diff := cmp.Diff(tlvHex("10 00", "70 00"), got); diff != "" {
		t.Errorf("Encode() mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	inputs := []string{
		"10 01 22",
		"9F01 06 123456789abc",
		"DF8119 02 1234",
		"5FCEDF20 02 1234",
		"10 00",
		"12 820101" + strings.Repeat("00", 257),
		"00 00 9F10 01 31 00 8A 03 414243 00",
		"00 BF10 0B 00 8A 03 414243 00 10 01 00 00 00",
		"70 2E 99 02 DEAF 61 28 4F 07 A0000000031010 50 04 56495341 73 17 5F50 0E 7777772E6D795F62616E6B2E6575 99 04 11223344",
		"12 81 05 0102030405",
		"10 80",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			first, err := Decode(tlvHex(in))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}

			encoded := Encode(first...)
			second, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode(Encode()) error = %v", err)
			}
			if diff := cmp.Diff(first, second); diff != "" {
				t.Errorf("round trip mismatch (-first +second):\n%s", diff)
			}

			// canonical output is a fixed point
			if diff := cmp.Diff(encoded, Encode(second...)); diff != "" {
				t.Errorf("re-encoding is not stable (-first +second):\n%s", diff)
			}
		})
	}
}

func TestEncode_CanonicalizesInput(t *testing.T) {
	// non-minimal long form and padding disappear on re-encoding
	elements, err := Decode(tlvHex("00", "9F10 81 01 31", "00"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if diff := cmp.Diff(tlvHex("9F10 01 31"), Encode(elements...)); diff != "" {
		t.Errorf("Encode() mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendEncoded(t *testing.T) {
	dst := []byte{0xCA, 0xFE}
	got := MustNew(0x5A, []byte{0x12}).AppendEncoded(dst)
	if diff := cmp.Diff(tlvHex("CAFE 5A 01 12"), got); diff != "" {
		t.Errorf("AppendEncoded() mismatch (-want +got):\n%s", diff)
	}
}
