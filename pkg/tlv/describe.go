package tlv

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/sigsergv/pcsc-tutorial/pkg/bertlv"
)

// REPORT FORMAT:
// One line per populated field, indented by four spaces:
//
//	    - FCI.DFName (84): A0000000041010
//	    - Proprietary.Label (50): 4D43 ("MC")
//	    - Proprietary.Priority (87): 01 (Dec: 1)
//	    - FCI.Unknown Tag 9F01: 1234
//
// Only []byte fields and the []*bertlv.Tlv catch-all are reported. Nested
// templates are left to the caller, which picks their prefix.

// WriteStructFields appends the report lines of s, a struct or a pointer to
// one, to sb. A non-empty builder gets a separating newline first. No
// trailing newline is written, so strings.Split yields no empty last line.
func WriteStructFields(sb *strings.Builder, prefix string, s interface{}) {
	lines := structLines(prefix, s)
	if len(lines) == 0 {
		return
	}
	if sb.Len() > 0 {
		sb.WriteByte('\n')
	}
	sb.WriteString(strings.Join(lines, "\n"))
}

func structLines(prefix string, s interface{}) []string {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	var lines []string
	for i := range v.NumField() {
		field, sf := v.Field(i), v.Type().Field(i)

		switch {
		case field.Type() == elementsType:
			for _, e := range field.Interface().([]*bertlv.Tlv) {
				lines = append(lines, fmt.Sprintf("    - %s.Unknown Tag %X: %X", prefix, e.TagBytes(), RawValue(e)))
			}
		case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.Uint8:
			if field.Len() == 0 {
				continue
			}
			label := sf.Name
			if tag := sf.Tag.Get("tlv"); tag != "" {
				label += " (" + tag + ")"
			}
			lines = append(lines, fmt.Sprintf("    - %s.%s: %s", prefix, label, showBytes(field.Bytes(), sf.Tag.Get("fmt"))))
		}
	}
	return lines
}

// showBytes renders data in hex, followed by a decoded form for the "ascii"
// and "int" formats.
func showBytes(data []byte, format string) string {
	switch format {
	case "ascii":
		return fmt.Sprintf("%X (%q)", data, MakeSafeASCII(data))
	case "int":
		var n uint64
		for _, b := range data {
			n = n<<8 | uint64(b)
		}
		return fmt.Sprintf("%X (Dec: %d)", data, n)
	}
	return fmt.Sprintf("%X", data)
}

// MakeSafeASCII replaces every byte outside printable ASCII with a dot.
func MakeSafeASCII(data []byte) string {
	out := make([]byte, len(data))
	for i, b := range data {
		if b < 0x20 || b > 0x7E {
			b = '.'
		}
		out[i] = b
	}
	return string(out)
}
