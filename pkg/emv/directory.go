package emv

import (
	"fmt"
	"strings"

	"github.com/sigsergv/pcsc-tutorial/pkg/bertlv"
	"github.com/sigsergv/pcsc-tutorial/pkg/tlv"
)

// DirectoryDiscretionaryTemplate (tag '73') carries issuer data attached to a
// directory entry.
type DirectoryDiscretionaryTemplate struct {
	ApplicationSelectionRegisteredProprietaryData []byte `tlv:"9F0A"`
	IssuerCountryCodeAlpha3                       []byte `tlv:"5F56" fmt:"ascii"`
	IssuerCountryCodeAlpha2                       []byte `tlv:"5F55" fmt:"ascii"`
	BankIdentifierCode                            []byte `tlv:"5F54" fmt:"ascii"`
	IBAN                                          []byte `tlv:"5F53" fmt:"ascii"`
	IssuerURL                                     []byte `tlv:"5F50" fmt:"ascii"`
	IssuerIdentificationNumber                    []byte `tlv:"42"`
	IssuerIdentificationNumberExtended            []byte `tlv:"9F0C"`
	LogEntry                                      []byte `tlv:"9F4D"`

	Unknown []*bertlv.Tlv `tlv:",unknown"`
}

// ApplicationTemplate (tag '61') is one entry of the Payment System Directory.
type ApplicationTemplate struct {
	AID                          []byte                         `tlv:"4F"`             // Mandatory
	ApplicationLabel             []byte                         `tlv:"50" fmt:"ascii"` // Mandatory
	ApplicationPriorityIndicator []byte                         `tlv:"87" fmt:"int"`
	DirectoryDiscretionaryData   DirectoryDiscretionaryTemplate `tlv:"73"`
	ApplicationPreferredName     []byte                         `tlv:"9F12" fmt:"ascii"`
	DDFName                      []byte                         `tlv:"9D" fmt:"ascii"`

	Unknown []*bertlv.Tlv `tlv:",unknown"`
}

// DirectoryRecord is a record of the PSE directory file, wrapped in tag '70'.
type DirectoryRecord struct {
	Applications []ApplicationTemplate `tlv:"61"`

	Unknown []*bertlv.Tlv `tlv:",unknown"`
}

// ParseDirectoryRecord maps a READ RECORD response body onto a DirectoryRecord.
func ParseDirectoryRecord(data []byte) (*DirectoryRecord, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("emv: empty record")
	}

	elements, err := bertlv.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("emv: decode record: %w", err)
	}

	if len(elements) == 0 || elements[0].Tag() != TagRecordTemplate {
		return nil, fmt.Errorf("emv: record template (70) missing")
	}

	record := &DirectoryRecord{}
	if err := tlv.UnmarshalFromElements(elements[0].Children(), record); err != nil {
		return nil, fmt.Errorf("emv: map record: %w", err)
	}

	return record, nil
}

// AIDs returns the application identifiers listed in the record, in order.
func (r *DirectoryRecord) AIDs() [][]byte {
	aids := make([][]byte, 0, len(r.Applications))
	for _, app := range r.Applications {
		if len(app.AID) > 0 {
			aids = append(aids, app.AID)
		}
	}
	return aids
}

// Describe lists the populated fields of every application in the record.
func (r *DirectoryRecord) Describe() string {
	var sb strings.Builder
	sb.WriteString("=== EMV DIRECTORY RECORD ===")

	tlv.WriteStructFields(&sb, "Record", r)

	for i, app := range r.Applications {
		prefix := fmt.Sprintf("App[%d]", i+1)
		tlv.WriteStructFields(&sb, prefix, app)

		tlv.WriteStructFields(&sb, prefix+".Discretionary", app.DirectoryDiscretionaryData)
	}

	return strings.TrimRight(sb.String(), "\n")
}
