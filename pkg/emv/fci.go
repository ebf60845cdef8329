package emv

import (
	"fmt"
	"strings"

	"github.com/sigsergv/pcsc-tutorial/pkg/bertlv"
	"github.com/sigsergv/pcsc-tutorial/pkg/tlv"
)

// FCI is the File Control Information template (tag '6F') an EMV card
// returns when an application or the PSE is selected.
type FCI struct {
	DFName              []byte                 `tlv:"84" fmt:"ascii"`
	ProprietaryTemplate FCIProprietaryTemplate `tlv:"A5"`
}

// FCIProprietaryTemplate contains the issuer-specific data found in tag 'A5'.
type FCIProprietaryTemplate struct {
	ApplicationLabel []byte `tlv:"50" fmt:"ascii"`

	// Optional EMV fields
	ApplicationPriorityIndicator []byte `tlv:"87" fmt:"int"`
	SFI                          []byte `tlv:"88"`
	PDOL                         []byte `tlv:"9F38"`
	LanguagePreference           []byte `tlv:"5F2D" fmt:"ascii"`
	IssuerCodeTableIndex         []byte `tlv:"9F11" fmt:"int"`
	ApplicationPreferredName     []byte `tlv:"9F12" fmt:"ascii"`

	IssuerDiscretionaryData *FCIIssuerDiscretionaryData `tlv:"BF0C"`

	Unknown []*bertlv.Tlv `tlv:",unknown"`
}

// FCIIssuerDiscretionaryData represents the discretionary data (Tag 'BF0C') which often contains specific bank or country information.
type FCIIssuerDiscretionaryData struct {
	LogEntry                           []byte `tlv:"9F4D"`
	IssuerIdentificationNumberExtended []byte `tlv:"9F0C"`
	IssuerCountryCodeAlpha3            []byte `tlv:"5F56" fmt:"ascii"`
	IssuerCountryCodeAlpha2            []byte `tlv:"5F55" fmt:"ascii"`
	BankIdentifierCode                 []byte `tlv:"5F54" fmt:"ascii"`
	IBAN                               []byte `tlv:"5F53" fmt:"ascii"`
	IssuerURL                          []byte `tlv:"5F50" fmt:"ascii"`
	IssuerIdentificationNumber         []byte `tlv:"42"`

	Unknown []*bertlv.Tlv `tlv:",unknown"`
}

// ParseFCI maps a SELECT response body onto an FCI. The '6F' wrapper is
// optional.
func ParseFCI(data []byte) (*FCI, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("emv: empty FCI")
	}

	elements, err := bertlv.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("emv: decode FCI: %w", err)
	}

	if len(elements) > 0 && elements[0].Tag() == TagFCITemplate {
		elements = elements[0].Children()
	}

	fci := &FCI{}
	if err := tlv.UnmarshalFromElements(elements, fci); err != nil {
		return nil, fmt.Errorf("emv: map FCI: %w", err)
	}

	return fci, nil
}

// Label returns the name to show for the application: the preferred name
// when present, otherwise the application label.
func (f *FCI) Label() string {
	p := f.ProprietaryTemplate
	if len(p.ApplicationPreferredName) > 0 {
		return RenderString(p.ApplicationPreferredName)
	}
	return RenderString(p.ApplicationLabel)
}

// SFI returns the short file identifier of the directory elementary file,
// present when the PSE was selected.
func (f *FCI) SFI() (byte, bool) {
	if len(f.ProprietaryTemplate.SFI) != 1 {
		return 0, false
	}
	return f.ProprietaryTemplate.SFI[0], true
}

// Describe lists the populated FCI fields, one per line.
func (f *FCI) Describe() string {
	var sb strings.Builder
	sb.WriteString("=== EMV FCI TEMPLATE ===")

	tlv.WriteStructFields(&sb, "FCI", f)

	tlv.WriteStructFields(&sb, "Proprietary", f.ProprietaryTemplate)

	if f.ProprietaryTemplate.IssuerDiscretionaryData != nil {
		tlv.WriteStructFields(&sb, "Discretionary", f.ProprietaryTemplate.IssuerDiscretionaryData)
	}

	return strings.TrimRight(sb.String(), "\n")
}
