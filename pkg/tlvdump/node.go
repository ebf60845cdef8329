// Package tlvdump presents decoded BER-TLV trees: as an indented text listing
// for people, and as YAML or CBOR documents for other tools.
package tlvdump

import (
	"fmt"

	"github.com/sigsergv/pcsc-tutorial/pkg/bertlv"
	"github.com/sigsergv/pcsc-tutorial/pkg/emv"
)

// Node is the export model of one element. Primitive elements carry Value,
// constructed ones carry Children.
type Node struct {
	Tag         string `yaml:"tag" cbor:"tag"`
	Name        string `yaml:"name,omitempty" cbor:"name,omitempty"`
	Class       string `yaml:"class" cbor:"class"`
	Constructed bool   `yaml:"constructed,omitempty" cbor:"constructed,omitempty"`
	Value       Bytes  `yaml:"value,omitempty" cbor:"value,omitempty"`
	Text        string `yaml:"text,omitempty" cbor:"text,omitempty"`
	Children    []Node `yaml:"children,omitempty" cbor:"children,omitempty"`
}

// Bytes is a value field. It is written as a hex string in YAML and as a
// byte string in CBOR.
type Bytes []byte

// MarshalYAML implements yaml.Marshaler.
func (b Bytes) MarshalYAML() (interface{}, error) {
	return fmt.Sprintf("%X", []byte(b)), nil
}

// Nodes converts decoded elements into their export model. Names and
// rendered text come from dict, which may be nil.
func Nodes(elements []*bertlv.Tlv, dict *emv.Dictionary) []Node {
	if len(elements) == 0 {
		return nil
	}
	nodes := make([]Node, 0, len(elements))
	for _, e := range elements {
		nodes = append(nodes, newNode(e, dict))
	}
	return nodes
}

func newNode(e *bertlv.Tlv, dict *emv.Dictionary) Node {
	n := Node{
		Tag:         fmt.Sprintf("%X", e.TagBytes()),
		Class:       e.Class().String(),
		Constructed: e.Encoding() == bertlv.Constructed,
	}
	if entry, ok := dict.Lookup(e.Tag()); ok {
		n.Name = entry.Name
	}

	if n.Constructed {
		n.Children = Nodes(e.Children(), dict)
		return n
	}

	if len(e.Bytes()) > 0 {
		n.Value = Bytes(e.Bytes())
	}
	if entry, ok := dict.Lookup(e.Tag()); ok && entry.Format != nil {
		n.Text = entry.Format(e.Bytes())
	}
	return n
}
