package emv

import (
	"fmt"
	"sort"
)

// EMV DATA ELEMENT DICTIONARY:
// Tags alone say nothing about how a value should be read. EMV Book 3 (Annex A)
// assigns each data element a name and a format:
//
//   - b:   binary, shown as hex.
//   - n:   numeric, BCD packed, right justified and padded with leading zeros.
//   - cn:  compressed numeric, BCD packed, left justified and padded with 'F'.
//   - ans: alphanumeric special, ISO 8859 characters.
//   - date values are n 6 as YYMMDD.
//
// A Dictionary is an immutable table keyed by tag. Callers build one (usually
// DefaultDictionary, optionally extended through With or LoadDictionary) and
// pass it to whatever renders decoded elements.

// Well-known template and data element tags.
const (
	TagApplicationTemplate       uint32 = 0x61
	TagFCITemplate               uint32 = 0x6F
	TagRecordTemplate            uint32 = 0x70
	TagDirectoryDiscretionary    uint32 = 0x73
	TagFCIProprietaryTemplate    uint32 = 0xA5
	TagFCIIssuerDiscretionary    uint32 = 0xBF0C
	TagAID                       uint32 = 0x4F
	TagApplicationLabel          uint32 = 0x50
	TagPAN                       uint32 = 0x5A
	TagDFName                    uint32 = 0x84
	TagApplicationPriority       uint32 = 0x87
	TagSFI                       uint32 = 0x88
	TagCardholderName            uint32 = 0x5F20
	TagApplicationExpirationDate uint32 = 0x5F24
	TagPDOL                      uint32 = 0x9F38
)

// Formatter renders the raw value of a data element.
type Formatter func(value []byte) string

// Entry describes one data element.
type Entry struct {
	Name   string
	Format Formatter // nil means RenderHex
}

// Dictionary maps tags to their description. The zero value is an empty
// dictionary. A Dictionary is never modified after creation.
type Dictionary struct {
	entries map[uint32]Entry
}

// NewDictionary builds a dictionary from a copy of entries.
func NewDictionary(entries map[uint32]Entry) *Dictionary {
	d := &Dictionary{entries: make(map[uint32]Entry, len(entries))}
	for tag, e := range entries {
		d.entries[tag] = e
	}
	return d
}

// DefaultDictionary returns a fresh dictionary of common EMV data elements.
func DefaultDictionary() *Dictionary {
	return NewDictionary(emvEntries())
}

// With returns a new dictionary holding d's entries overridden by extra.
func (d *Dictionary) With(extra map[uint32]Entry) *Dictionary {
	merged := make(map[uint32]Entry, d.Len()+len(extra))
	if d != nil {
		for tag, e := range d.entries {
			merged[tag] = e
		}
	}
	for tag, e := range extra {
		merged[tag] = e
	}
	return &Dictionary{entries: merged}
}

// Lookup returns the entry for tag.
func (d *Dictionary) Lookup(tag uint32) (Entry, bool) {
	if d == nil {
		return Entry{}, false
	}
	e, ok := d.entries[tag]
	return e, ok
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Tags returns the known tags in ascending order.
func (d *Dictionary) Tags() []uint32 {
	if d == nil {
		return nil
	}
	tags := make([]uint32, 0, len(d.entries))
	for tag := range d.entries {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Name returns the name of tag, or its hex notation (0x9F10) when unknown.
func (d *Dictionary) Name(tag uint32) string {
	if e, ok := d.Lookup(tag); ok && e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("0x%X", tag)
}

// Render formats value according to the entry of tag, falling back to hex.
func (d *Dictionary) Render(tag uint32, value []byte) string {
	if e, ok := d.Lookup(tag); ok && e.Format != nil {
		return e.Format(value)
	}
	return RenderHex(value)
}

func emvEntries() map[uint32]Entry {
	return map[uint32]Entry{
		// templates
		TagApplicationTemplate:    {Name: "Application Template"},
		TagFCITemplate:            {Name: "File Control Information (FCI) Template"},
		TagRecordTemplate:         {Name: "READ RECORD Response Message Template"},
		TagDirectoryDiscretionary: {Name: "Directory Discretionary Template"},
		0x77:                      {Name: "Response Message Template Format 2"},
		0x80:                      {Name: "Response Message Template Format 1"},
		TagFCIProprietaryTemplate: {Name: "FCI Proprietary Template"},
		TagFCIIssuerDiscretionary: {Name: "FCI Issuer Discretionary Data"},

		// selection
		TagAID:                 {Name: "Application Identifier (AID) - card"},
		TagApplicationLabel:    {Name: "Application Label", Format: RenderString},
		TagDFName:              {Name: "Dedicated File (DF) Name"},
		TagApplicationPriority: {Name: "Application Priority Indicator"},
		TagSFI:                 {Name: "Short File Identifier (SFI)"},
		0x9D:                   {Name: "Directory Definition File (DDF) Name"},
		0x5F2D:                 {Name: "Language Preference", Format: RenderString},
		0x9F11:                 {Name: "Issuer Code Table Index"},
		0x9F12:                 {Name: "Application Preferred Name", Format: RenderString},
		TagPDOL:                {Name: "Processing Options Data Object List (PDOL)"},
		0x9F4D:                 {Name: "Log Entry"},
		0x5F50:                 {Name: "Issuer URL", Format: RenderString},
		0x5F53:                 {Name: "International Bank Account Number (IBAN)", Format: RenderString},
		0x5F54:                 {Name: "Bank Identifier Code (BIC)", Format: RenderString},
		0x5F55:                 {Name: "Issuer Country Code (alpha2 format)", Format: RenderString},
		0x5F56:                 {Name: "Issuer Country Code (alpha3 format)", Format: RenderString},
		0x42:                   {Name: "Issuer Identification Number (IIN)"},
		0x9F0C:                 {Name: "Issuer Identification Number Extended (IINE)"},
		0x9F0A:                 {Name: "Application Selection Registered Proprietary Data"},

		// card data
		0x56:                         {Name: "Track 1 Data"},
		0x57:                         {Name: "Track 2 Equivalent Data"},
		TagPAN:                       {Name: "Application Primary Account Number (PAN)", Format: RenderCompressedNumeric},
		TagCardholderName:            {Name: "Cardholder Name", Format: RenderString},
		TagApplicationExpirationDate: {Name: "Application Expiration Date", Format: RenderDate},
		0x5F25:                       {Name: "Application Effective Date", Format: RenderDate},
		0x5F28:                       {Name: "Issuer Country Code (ISO 3166)", Format: RenderBCD},
		0x5F30:                       {Name: "Service Code"},
		0x5F34:                       {Name: "Application Primary Account Number (PAN) Sequence Number", Format: RenderBCD},
		0x8C:                         {Name: "Card Risk Management Data Object List 1 (CDOL1)"},
		0x8D:                         {Name: "Card Risk Management Data Object List 2 (CDOL2)"},
		0x8E:                         {Name: "Cardholder Verification Method (CVM) List"},
		0x8F:                         {Name: "Certification Authority Public Key Index"},
		0x90:                         {Name: "Issuer Public Key Certificate"},
		0x92:                         {Name: "Issuer Public Key Remainder"},
		0x93:                         {Name: "Signed Static Application Data"},
		0x94:                         {Name: "Application File Locator (AFL)"},
		0x82:                         {Name: "Application Interchange Profile"},
		0x9F07:                       {Name: "Application Usage Control"},
		0x9F08:                       {Name: "Application Version Number"},
		0x9F0D:                       {Name: "Issuer Action Code - Default"},
		0x9F0E:                       {Name: "Issuer Action Code - Denial"},
		0x9F0F:                       {Name: "Issuer Action Code - Online"},
		0x9F1F:                       {Name: "Track 1 Discretionary Data"},
		0x9F32:                       {Name: "Issuer Public Key Exponent"},
		0x9F36:                       {Name: "Application Transaction Counter (ATC)"},
		0x9F42:                       {Name: "Application Currency Code (ISO 4217)", Format: RenderBCD},
		0x9F44:                       {Name: "Application Currency Exponent"},
		0x9F46:                       {Name: "ICC Public Key Certificate"},
		0x9F47:                       {Name: "ICC Public Key Exponent"},
		0x9F48:                       {Name: "ICC Public Key Remainder"},
		0x9F49:                       {Name: "Dynamic Data Authentication Data Object List (DDOL)"},
		0x9F4A:                       {Name: "Static Data Authentication Tag List"},
		0x9F62:                       {Name: "PCVC3 (Track1)"},
		0x9F63:                       {Name: "PUNATC (Track1)"},
		0x9F64:                       {Name: "NATC (Track1)"},
		0x9F65:                       {Name: "PCVC3 (Track2)"},
		0x9F66:                       {Name: "Terminal Transaction Qualifiers (TTQ)"},
		0x9F67:                       {Name: "NATC (Track2)"},
		0x9F68:                       {Name: "Card Additional Processes"},
		0x9F6B:                       {Name: "Track 2 Data/Card CVM Limit"},
		0x9F6C:                       {Name: "Card Transaction Qualifiers (CTQ)"},
	}
}
