package mifare

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUnpack(t *testing.T) {
	tests := []struct {
		name   string
		access [3]byte
		want   AccessConditions
	}{
		{"Transport configuration", [3]byte{0xFF, 0x07, 0x80}, TransportConditions},
		{
			"Read-only data blocks",
			[3]byte{0x8F, 0x07, 0x87},
			AccessConditions{
				{C2: true},
				{C2: true},
				{C2: true},
				{C3: true},
			},
		},
		{
			"Keys writable with key B",
			[3]byte{0x00, 0xFF, 0x0F},
			AccessConditions{
				{C1: true, C2: true},
				{C1: true, C2: true},
				{C1: true, C2: true},
				{C1: true, C2: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Unpack(tt.access)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Unpack() mismatch (-want +got):\n%s", diff)
			}
			if err := Validate(tt.access); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
			if diff := cmp.Diff(tt.access, got.Pack()); diff != "" {
				t.Errorf("Pack() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPack_RoundTripsEveryCode(t *testing.T) {
	for code := 0; code < 8; code++ {
		c := Condition{C1: code&4 != 0, C2: code&2 != 0, C3: code&1 != 0}
		ac := AccessConditions{c, TransportConditions[1], c, TransportConditions[3]}

		packed := ac.Pack()
		if err := Validate(packed); err != nil {
			t.Fatalf("Validate(%X) error = %v", packed, err)
		}
		if got := Unpack(packed); got != ac {
			t.Errorf("Unpack(Pack(%v)) = %v", ac, got)
		}
		if int(c.Code()) != code {
			t.Errorf("Code() = %d, want %d", c.Code(), code)
		}
	}
}

func TestValidate_Inconsistent(t *testing.T) {
	tests := []struct {
		name   string
		access [3]byte
	}{
		{"C1 copy flipped", [3]byte{0xFE, 0x07, 0x80}},
		{"C2 copy flipped", [3]byte{0xEF, 0x07, 0x80}},
		{"C3 copy flipped", [3]byte{0xFF, 0x06, 0x80}},
		{"All zero", [3]byte{0x00, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.access); !errors.Is(err, ErrInconsistent) {
				t.Errorf("Validate() error = %v, want ErrInconsistent", err)
			}
		})
	}
}

func TestFromTrailer(t *testing.T) {
	trailer := []byte{
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // key A
		0xFF, 0x07, 0x80, 0x69, // access bytes, user byte
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // key B
	}

	got, err := FromTrailer(trailer)
	if err != nil {
		t.Fatalf("FromTrailer() error = %v", err)
	}
	if got != TransportConditions {
		t.Errorf("FromTrailer() = %v, want transport conditions", got)
	}

	if _, err := FromTrailer(trailer[:10]); err == nil {
		t.Error("FromTrailer() expected an error for a short trailer")
	}

	trailer[7] = 0x00
	if _, err := FromTrailer(trailer); !errors.Is(err, ErrInconsistent) {
		t.Errorf("FromTrailer() error = %v, want ErrInconsistent", err)
	}
}

func TestCondition_String(t *testing.T) {
	if got := (Condition{C1: true, C3: true}).String(); got != "101" {
		t.Errorf("String() = %q, want 101", got)
	}
}
