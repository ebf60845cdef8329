// Package bertlv decodes and encodes BER-TLV (Basic Encoding Rules
// Tag-Length-Value) structures as found in smart-card and EMV data objects.
//
// # Elements
//
// A decoded element is a *Tlv. Its tag is kept both as the raw 1 to 4 bytes
// read from the stream and as their big-endian integer value. The first tag
// byte carries the class (bits 8-7) and the encoding (bit 6):
//
//	b8 b7 | b6 | b5..b1
//	class | constructed | tag number (11111 = more tag bytes follow)
//
// A primitive element holds raw bytes (Bytes). A constructed element holds
// child elements (Children), decoded from its value field.
//
// # Decoding
//
// Decode scans a complete buffer and returns the top-level elements in stream
// order. Zero bytes found where a tag is expected are padding and are
// skipped. Nesting is handled with an explicit stack, so deeply nested input
// cannot overflow the goroutine stack; Decoder.MaxDepth bounds it further.
//
//	elements, err := bertlv.Decode(data)
//	if errors.Is(err, bertlv.ErrUnexpectedEnd) {
//	    // truncated response
//	}
//	if fci, ok := bertlv.Find(0x6F, elements); ok {
//	    fmt.Println(fci)
//	}
package bertlv

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sigsergv/pcsc-tutorial/pkg/bits"
)

// MaxTagBytes is the longest tag accepted by the codec.
const MaxTagBytes = 4

// Encoding tells whether a value holds raw bytes or nested elements.
type Encoding int

const (
	Primitive Encoding = iota
	Constructed
)

func (e Encoding) String() string {
	switch e {
	case Primitive:
		return "PRIMITIVE"
	case Constructed:
		return "CONSTRUCTED"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// Class is the tag class found in bits 8-7 of the first tag byte.
type Class int

const (
	Universal       Class = 0b00
	Application     Class = 0b01
	ContextSpecific Class = 0b10
	Private         Class = 0b11
)

func (c Class) String() string {
	switch c {
	case Universal:
		return "UNIVERSAL"
	case Application:
		return "APPLICATION"
	case ContextSpecific:
		return "CONTEXT_SPECIFIC"
	case Private:
		return "PRIVATE"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// Value is the content of an element: either Bytes or Children.
type Value interface {
	isValue()
	// Len returns the number of bytes or the number of children.
	Len() int
}

// Bytes is the value of a primitive element.
type Bytes []byte

// Children is the value of a constructed element.
type Children []*Tlv

func (Bytes) isValue()    {}
func (Children) isValue() {}

func (b Bytes) Len() int    { return len(b) }
func (c Children) Len() int { return len(c) }

// Tlv is a single decoded BER-TLV element. It is immutable once built.
type Tlv struct {
	tag      uint32
	tagBytes []byte
	encoding Encoding
	class    Class
	value    Value
}

// New builds an element from an integer tag and raw value bytes. The tag is
// split into its minimal big-endian byte sequence. When the tag is
// constructed and the value is not empty, the value is decoded into children.
func New(tag uint32, value []byte) (*Tlv, error) {
	tb, err := tagToBytes(tag)
	if err != nil {
		return nil, err
	}
	return FromTagBytes(tb, value)
}

// FromTagBytes builds an element from the raw tag bytes, as they appear in a
// stream, and raw value bytes.
func FromTagBytes(tagBytes []byte, value []byte) (*Tlv, error) {
	t, err := newHeader(tagBytes)
	if err != nil {
		return nil, err
	}

	if len(value) == 0 {
		t.value = Bytes{}
		return t, nil
	}

	if t.encoding == Constructed {
		children, err := Decode(value)
		if err != nil {
			return nil, err
		}
		t.value = Children(children)
		return t, nil
	}

	t.value = Bytes(bytes.Clone(value))
	return t, nil
}

// NewConstructed builds an element holding the given children. It fails with
// a *ValueError when the tag is primitive, unless no children are given.
func NewConstructed(tag uint32, children ...*Tlv) (*Tlv, error) {
	tb, err := tagToBytes(tag)
	if err != nil {
		return nil, err
	}
	t, err := newHeader(tb)
	if err != nil {
		return nil, err
	}

	if len(children) == 0 {
		t.value = Children{}
		return t, nil
	}

	if t.encoding == Primitive {
		return nil, &ValueError{Reason: msgIncompatibleValue}
	}

	for i, c := range children {
		if c == nil {
			return nil, &ValueError{Reason: fmt.Sprintf("nil child at index %d", i)}
		}
	}

	t.value = Children(append([]*Tlv(nil), children...))
	return t, nil
}

// MustNew is like New but panics on error. Intended for fixtures and tables.
func MustNew(tag uint32, value []byte) *Tlv {
	t, err := New(tag, value)
	if err != nil {
		panic(fmt.Sprintf("bertlv.MustNew(0x%X): %v", tag, err))
	}
	return t
}

// MustConstructed is like NewConstructed but panics on error.
func MustConstructed(tag uint32, children ...*Tlv) *Tlv {
	t, err := NewConstructed(tag, children...)
	if err != nil {
		panic(fmt.Sprintf("bertlv.MustConstructed(0x%X): %v", tag, err))
	}
	return t
}

// newHeader validates the tag bytes and derives tag, class and encoding.
func newHeader(tagBytes []byte) (*Tlv, error) {
	if len(tagBytes) == 0 || len(tagBytes) > MaxTagBytes {
		return nil, fmt.Errorf("bertlv: %w: %d tag bytes", ErrInvalidTag, len(tagBytes))
	}

	var tag uint32
	for _, b := range tagBytes {
		tag = tag<<8 | uint32(b)
	}

	b0 := tagBytes[0]
	encoding := Primitive
	if bits.IsSet(b0, 6) {
		encoding = Constructed
	}

	return &Tlv{
		tag:      tag,
		tagBytes: bytes.Clone(tagBytes),
		encoding: encoding,
		class:    Class(bits.GetRange(b0, 8, 7)),
	}, nil
}

// tagToBytes splits tag into its minimal big-endian representation. Zero has
// no representation and is rejected.
func tagToBytes(tag uint32) ([]byte, error) {
	if tag == 0 {
		return nil, fmt.Errorf("bertlv: %w: tag value 0", ErrInvalidTag)
	}
	var out []byte
	for v := tag; v != 0; v >>= 8 {
		out = append(out, byte(v))
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Tag returns the big-endian integer value of the tag bytes.
func (t *Tlv) Tag() uint32 { return t.tag }

// TagBytes returns a copy of the raw tag bytes.
func (t *Tlv) TagBytes() []byte { return bytes.Clone(t.tagBytes) }

func (t *Tlv) Encoding() Encoding { return t.encoding }

func (t *Tlv) Class() Class { return t.class }

// Value returns the element content, Bytes or Children.
func (t *Tlv) Value() Value { return t.value }

// Bytes returns the raw value of a primitive element, nil otherwise.
func (t *Tlv) Bytes() []byte {
	if b, ok := t.value.(Bytes); ok {
		return b
	}
	return nil
}

// Children returns the nested elements of a constructed element, nil otherwise.
func (t *Tlv) Children() []*Tlv {
	if c, ok := t.value.(Children); ok {
		return c
	}
	return nil
}

// Equal reports whether t and o have the same tag and the same value. Tag
// bytes and encoding are not compared.
func (t *Tlv) Equal(o *Tlv) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.tag != o.tag {
		return false
	}
	return valuesEqual(t.value, o.value)
}

func valuesEqual(a, b Value) bool {
	if a.Len() == 0 && b.Len() == 0 {
		return true
	}
	switch av := a.(type) {
	case Bytes:
		bv, ok := b.(Bytes)
		return ok && bytes.Equal(av, bv)
	case Children:
		bv, ok := b.(Children)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !av[i].Equal(bv[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders the element as Tlv(0x9F10, "31"), or for constructed values
// Tlv(0x3F10, [Tlv(0x8A, "414243"),Tlv(0x10, "00")]).
func (t *Tlv) String() string {
	var sb strings.Builder
	t.writeTo(&sb)
	return sb.String()
}

func (t *Tlv) writeTo(sb *strings.Builder) {
	fmt.Fprintf(sb, "Tlv(0x%X, ", t.tag)
	if children, ok := t.value.(Children); ok {
		sb.WriteByte('[')
		for i, c := range children {
			if i > 0 {
				sb.WriteByte(',')
			}
			c.writeTo(sb)
		}
		sb.WriteByte(']')
	} else {
		fmt.Fprintf(sb, "%q", fmt.Sprintf("%X", t.Bytes()))
	}
	sb.WriteByte(')')
}

// Find returns the first element of elements with the given tag. Children are
// not searched.
func Find(tag uint32, elements []*Tlv) (*Tlv, bool) {
	for _, e := range elements {
		if e.tag == tag {
			return e, true
		}
	}
	return nil, false
}

// FindPath follows path through nested constructed elements, taking the first
// match at each level.
//
//	// FCI template -> FCI proprietary template -> SFI
//	sfi, ok := bertlv.FindPath(elements, 0x6F, 0xA5, 0x88)
func FindPath(elements []*Tlv, path ...uint32) (*Tlv, bool) {
	if len(path) == 0 {
		return nil, false
	}
	var cur *Tlv
	for i, tag := range path {
		if i > 0 {
			elements = cur.Children()
		}
		e, ok := Find(tag, elements)
		if !ok {
			return nil, false
		}
		cur = e
	}
	return cur, true
}
