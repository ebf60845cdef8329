package emv

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sigsergv/pcsc-tutorial/pkg/tlv"
)

func TestParseDirectoryRecord_WithUnknowns(t *testing.T) {
	rawData := tlv.Hex(
		"70 2E",                                // Record Template (70) containing:
		"99 02 DEAF",                           // Unknown Tag 99
		"61 28",                                // App Template
		"4F 07 A0000000031010",                 // AID
		"50 04 56495341",                       // App Label: "VISA"
		"73 17",                                // Directory Discretionary Template
		"5F50 0E 7777772E6D795F62616E6B2E6575", // URL: "www.my_bank.eu"
		"99 04 11223344",                       // Unknown Tag inside
	)

	record, err := ParseDirectoryRecord(rawData)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	actualLines := strings.Split(record.Describe(), "\n")

	expectedLines := []string{
		"=== EMV DIRECTORY RECORD ===",
		`    - Record.Unknown Tag 99: DEAF`,
		`    - App[1].AID (4F): A0000000031010`,
		`    - App[1].ApplicationLabel (50): 56495341 ("VISA")`,
		`    - App[1].Discretionary.IssuerURL (5F50): 7777772E6D795F62616E6B2E6575 ("www.my_bank.eu")`,
		`    - App[1].Discretionary.Unknown Tag 99: 11223344`,
	}

	if diff := cmp.Diff(expectedLines, actualLines); diff != "" {
		t.Errorf("Describe mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDirectoryRecord_MultipleApplications(t *testing.T) {
	rawData := tlv.Hex(
		"70 1C",
		"61 0C", "4F 07 A0000000031010", "87 01 01",
		"00 00", // padding between templates
		"61 0A", "4F 05 A000000025", "9D 01 01",
	)

	record, err := ParseDirectoryRecord(rawData)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	want := [][]byte{
		tlv.Hex("A0000000031010"),
		tlv.Hex("A000000025"),
	}
	if diff := cmp.Diff(want, record.AIDs()); diff != "" {
		t.Errorf("AIDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDirectoryRecord_Errors(t *testing.T) {
	tests := []struct {
		name    string
		rawData []byte
	}{
		{"Empty", nil},
		{"Missing record template", tlv.Hex("61 03 4F 01 A0")},
		{"Truncated", tlv.Hex("70 05 61 03 4F")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDirectoryRecord(tt.rawData); err == nil {
				t.Error("ParseDirectoryRecord() expected an error")
			}
		})
	}
}
