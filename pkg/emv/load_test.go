package emv

import (
	"strings"
	"testing"
)

func TestLoadDictionary(t *testing.T) {
	input := `
tags:
  - tag: "9F6E"
    name: Form Factor Indicator
  - tag: "5a"
    name: PAN
    format: cn
  - tag: DF8101
    name: Issue Date
    format: date
`
	d, err := LoadDictionary(strings.NewReader(input), DefaultDictionary())
	if err != nil {
		t.Fatalf("LoadDictionary() error = %v", err)
	}

	tests := []struct {
		tag        uint32
		value      []byte
		wantName   string
		wantRender string
	}{
		{0x9F6E, []byte{0x20, 0x70}, "Form Factor Indicator", "hex(20 70)"},
		{0x5A, []byte{0x12, 0x3F}, "PAN", "123 (hex(12 3F))"},
		{0xDF8101, []byte{0x24, 0x01, 0x15}, "Issue Date", "2024-01-15"},
		{0x5F20, []byte("DOE/JOHN"), "Cardholder Name", "DOE/JOHN"},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if got := d.Name(tt.tag); got != tt.wantName {
				t.Errorf("Name() = %q, want %q", got, tt.wantName)
			}
			if got := d.Render(tt.tag, tt.value); got != tt.wantRender {
				t.Errorf("Render() = %q, want %q", got, tt.wantRender)
			}
		})
	}
}

func TestLoadDictionary_Empty(t *testing.T) {
	d, err := LoadDictionary(strings.NewReader(""), nil)
	if err != nil {
		t.Fatalf("LoadDictionary() error = %v", err)
	}
	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0", d.Len())
	}
}

func TestLoadDictionary_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Bad tag", "tags:\n  - tag: ZZ\n    name: x\n"},
		{"Zero tag", "tags:\n  - tag: \"00\"\n    name: x\n"},
		{"Unknown format", "tags:\n  - tag: \"9F10\"\n    format: ebcdic\n"},
		{"Unknown field", "tags:\n  - tag: \"9F10\"\n    label: x\n"},
		{"Not YAML", "tags: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadDictionary(strings.NewReader(tt.input), nil); err == nil {
				t.Error("LoadDictionary() expected an error")
			}
		})
	}
}
