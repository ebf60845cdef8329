package tlvdump

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/sigsergv/pcsc-tutorial/pkg/bertlv"
	"github.com/sigsergv/pcsc-tutorial/pkg/emv"
	"gopkg.in/yaml.v3"
)

// encMode writes Core Deterministic CBOR (RFC 8949 section 4.2): the same
// tree always yields the same bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("tlvdump: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("tlvdump: CBOR decoder initialization failed: " + err.Error())
	}
}

// YAML writes the export model of elements as a YAML sequence.
func YAML(w io.Writer, elements []*bertlv.Tlv, dict *emv.Dictionary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	nodes := Nodes(elements, dict)
	if nodes == nil {
		nodes = []Node{}
	}
	if err := enc.Encode(nodes); err != nil {
		return fmt.Errorf("tlvdump: encode yaml: %w", err)
	}
	return enc.Close()
}

// CBOR returns the export model of elements as a CBOR array.
func CBOR(elements []*bertlv.Tlv, dict *emv.Dictionary) ([]byte, error) {
	nodes := Nodes(elements, dict)
	if nodes == nil {
		nodes = []Node{}
	}
	data, err := encMode.Marshal(nodes)
	if err != nil {
		return nil, fmt.Errorf("tlvdump: encode cbor: %w", err)
	}
	return data, nil
}

// ParseCBOR reads back a document written by CBOR.
func ParseCBOR(data []byte) ([]Node, error) {
	var nodes []Node
	if err := decMode.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("tlvdump: decode cbor: %w", err)
	}
	return nodes, nil
}
