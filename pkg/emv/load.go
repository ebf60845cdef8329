package emv

import (
	"fmt"
	"io"

	"github.com/sigsergv/pcsc-tutorial/pkg/tlv"
	"gopkg.in/yaml.v3"
)

// dictionaryFile is the YAML layout accepted by LoadDictionary:
//
//	tags:
//	  - tag: "9F6E"
//	    name: Form Factor Indicator
//	    format: hex
type dictionaryFile struct {
	Tags []dictionaryEntry `yaml:"tags"`
}

type dictionaryEntry struct {
	Tag    string `yaml:"tag"`
	Name   string `yaml:"name"`
	Format string `yaml:"format"`
}

// Formatters lists the renderers a dictionary file can refer to by name.
var Formatters = map[string]Formatter{
	"":       RenderHex,
	"hex":    RenderHex,
	"bcd":    RenderBCD,
	"cn":     RenderCompressedNumeric,
	"string": RenderString,
	"date":   RenderDate,
	"ascii":  tlv.MakeSafeASCII,
}

// LoadDictionary reads YAML tag definitions from r and layers them over base.
// A nil base starts from an empty dictionary.
func LoadDictionary(r io.Reader, base *Dictionary) (*Dictionary, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file dictionaryFile
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("emv: read dictionary: %w", err)
	}

	extra := make(map[uint32]Entry, len(file.Tags))
	for i, e := range file.Tags {
		tag, err := tlv.ParseTag(e.Tag)
		if err != nil {
			return nil, fmt.Errorf("emv: dictionary entry %d: %w", i, err)
		}
		format, ok := Formatters[e.Format]
		if !ok {
			return nil, fmt.Errorf("emv: dictionary entry %d (%X): unknown format %q", i, tag, e.Format)
		}
		extra[tag] = Entry{Name: e.Name, Format: format}
	}

	return base.With(extra), nil
}
