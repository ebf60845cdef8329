package bertlv

import (
	"errors"
	"fmt"
)

// Error kinds reported by the codec. Every error returned by this package
// matches exactly one of them through errors.Is.
var (
	// ErrInvalidTag is reported when a tag spans more than 4 bytes, or when a
	// tag has no bytes at all.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrUnexpectedEnd is reported when the input is exhausted in the middle of
	// a tag, a length or a value, and when a long-form length announces more
	// than 4 length octets.
	ErrUnexpectedEnd = errors.New("unexpected end of data")

	// ErrInvalidValue is reported when a value does not fit the encoding of
	// its tag.
	ErrInvalidValue = errors.New("invalid value")

	// ErrTooDeep is reported when the nesting of constructed elements exceeds
	// Decoder.MaxDepth.
	ErrTooDeep = errors.New("nesting too deep")
)

// msgIncompatibleValue is kept verbatim, callers match on it.
const msgIncompatibleValue = "Incompatible value (Tlv) for encoding PRIMITIVE"

// SyntaxError describes a malformed BER-TLV input. Offset is the position in
// the outermost buffer where the faulty element (or padding byte) starts.
type SyntaxError struct {
	Err    error  // one of the Err* sentinels
	Offset int    // byte offset of the element being decoded
	Tag    []byte // tag bytes read so far, if any
}

func (e *SyntaxError) Unwrap() error { return e.Err }

func (e *SyntaxError) Error() string {
	if len(e.Tag) > 0 {
		return fmt.Sprintf("bertlv: %v (tag %X at offset %d)", e.Err, e.Tag, e.Offset)
	}
	return fmt.Sprintf("bertlv: %v at offset %d", e.Err, e.Offset)
}

// ValueError is returned by the constructors when the value does not fit the
// tag's encoding. Its message is the bare reason.
type ValueError struct {
	Reason string
}

func (e *ValueError) Error() string { return e.Reason }

func (e *ValueError) Unwrap() error { return ErrInvalidValue }
