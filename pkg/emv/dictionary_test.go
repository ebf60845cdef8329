package emv

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultDictionary(t *testing.T) {
	d := DefaultDictionary()

	tests := []struct {
		tag        uint32
		value      []byte
		wantName   string
		wantRender string
	}{
		{0x5A, []byte{0x47, 0x61, 0x73, 0x90, 0x01, 0x01, 0x00, 0x10}, "Application Primary Account Number (PAN)", "4761739001010010 (hex(47 61 73 90 01 01 00 10))"},
		{0x5F20, []byte("DOE/JOHN"), "Cardholder Name", "DOE/JOHN"},
		{0x5F24, []byte{0x27, 0x08, 0x31}, "Application Expiration Date", "2027-08-31"},
		{0x9F42, []byte{0x09, 0x78}, "Application Currency Code (ISO 4217)", "978 (hex(09 78))"},
		{0x9F6C, []byte{0x30, 0x00}, "Card Transaction Qualifiers (CTQ)", "hex(30 00)"},
		{0xDF01, []byte{0xAA}, "0xDF01", "hex(AA)"},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if got := d.Name(tt.tag); got != tt.wantName {
				t.Errorf("Name(%X) = %q, want %q", tt.tag, got, tt.wantName)
			}
			if got := d.Render(tt.tag, tt.value); got != tt.wantRender {
				t.Errorf("Render(%X) = %q, want %q", tt.tag, got, tt.wantRender)
			}
		})
	}
}

func TestDictionary_WithDoesNotModifyReceiver(t *testing.T) {
	base := DefaultDictionary()
	before := base.Len()

	extended := base.With(map[uint32]Entry{
		0x5A:   {Name: "PAN"},
		0x9F6E: {Name: "Form Factor Indicator", Format: RenderHex},
	})

	if base.Len() != before {
		t.Errorf("base Len() = %d, want %d", base.Len(), before)
	}
	if got := base.Name(0x5A); got != "Application Primary Account Number (PAN)" {
		t.Errorf("base Name(5A) = %q", got)
	}
	if got := extended.Name(0x5A); got != "PAN" {
		t.Errorf("extended Name(5A) = %q, want PAN", got)
	}
	// overriding entry without a formatter renders as hex
	if got := extended.Render(0x5A, []byte{0x12}); got != "hex(12)" {
		t.Errorf("extended Render(5A) = %q, want hex(12)", got)
	}
	if extended.Len() != before+1 {
		t.Errorf("extended Len() = %d, want %d", extended.Len(), before+1)
	}
}

func TestDictionary_Nil(t *testing.T) {
	var d *Dictionary
	if got := d.Name(0x9F10); got != "0x9F10" {
		t.Errorf("Name() = %q, want 0x9F10", got)
	}
	if got := d.Render(0x9F10, []byte{0x01}); got != "hex(01)" {
		t.Errorf("Render() = %q, want hex(01)", got)
	}
	if _, ok := d.Lookup(0x9F10); ok {
		t.Error("Lookup() on nil dictionary should report not found")
	}
}

func TestDictionary_Tags(t *testing.T) {
	d := NewDictionary(map[uint32]Entry{
		0x9F10: {Name: "b"},
		0x5A:   {Name: "a"},
		0xBF0C: {Name: "c"},
	})
	if diff := cmp.Diff([]uint32{0x5A, 0x9F10, 0xBF0C}, d.Tags()); diff != "" {
		t.Errorf("Tags() mismatch (-want +got):\n%s", diff)
	}
}
