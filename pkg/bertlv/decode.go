package bertlv

import (
	"bytes"
)

// DECODER STATE MACHINE:
// The decoder walks the buffer with a single cursor. Each step is one of:
//
//   - end of frame: the cursor reached the end of the innermost open value.
//     The frame is closed; closing the root frame terminates the decode.
//   - padding: a 0x00 byte where a tag is expected is consumed silently.
//   - element: tag, then length, then value. A constructed element with a
//     non-empty value opens a new frame bounded by the end of that value.
//
// Frames live on an explicit stack rather than the call stack. Elements are
// appended to their parent before their own children are read, which yields
// pre-order output with children in stream order.

// Decoder decodes BER-TLV buffers. The zero value is ready to use.
type Decoder struct {
	// MaxDepth limits how many constructed elements with content may be
	// nested. Zero means no limit.
	MaxDepth int
}

// frame is an open constructed value.
type frame struct {
	node     *Tlv // nil for the root frame
	end      int  // offset just past the value
	children []*Tlv
}

// Decode decodes data with a default Decoder.
func Decode(data []byte) ([]*Tlv, error) {
	var d Decoder
	return d.Decode(data)
}

// Decode parses data into its top-level elements. Any error aborts the whole
// decode; no partial result is returned. An empty buffer yields an empty,
// non-nil list.
func (d *Decoder) Decode(data []byte) ([]*Tlv, error) {
	stack := []frame{{end: len(data), children: []*Tlv{}}}
	p := 0

	for {
		top := &stack[len(stack)-1]

		if p >= top.end {
			if len(stack) == 1 {
				return top.children, nil
			}
			top.node.value = Children(top.children)
			stack = stack[:len(stack)-1]
			continue
		}

		if data[p] == 0x00 {
			p++
			continue
		}

		start := p
		tagEnd, err := scanTag(data, p, top.end)
		if err != nil {
			return nil, &SyntaxError{Err: err, Offset: start, Tag: bytes.Clone(data[start:min(tagEnd, top.end)])}
		}
		tagBytes := data[start:tagEnd]
		if len(tagBytes) > MaxTagBytes {
			return nil, &SyntaxError{Err: ErrInvalidTag, Offset: start, Tag: bytes.Clone(tagBytes)}
		}

		length, valueStart, err := scanLength(data, tagEnd, top.end)
		if err != nil {
			return nil, &SyntaxError{Err: err, Offset: start, Tag: bytes.Clone(tagBytes)}
		}
		valueEnd := valueStart + length

		node, _ := newHeader(tagBytes)

		if node.encoding == Constructed && length > 0 {
			if d.MaxDepth > 0 && len(stack) > d.MaxDepth {
				return nil, &SyntaxError{Err: ErrTooDeep, Offset: start, Tag: bytes.Clone(tagBytes)}
			}
			top.children = append(top.children, node)
			stack = append(stack, frame{node: node, end: valueEnd, children: []*Tlv{}})
			p = valueStart
			continue
		}

		node.value = Bytes(bytes.Clone(data[valueStart:valueEnd]))
		if node.value.Len() == 0 {
			node.value = Bytes{}
		}
		top.children = append(top.children, node)
		p = valueEnd
	}
}

// scanTag returns the offset just past the tag starting at p. The tag is not
// length-checked here.
func scanTag(data []byte, p, end int) (int, error) {
	b0 := data[p]
	p++
	if b0&0x1F != 0x1F {
		return p, nil
	}
	for {
		if p >= end {
			return p, ErrUnexpectedEnd
		}
		b := data[p]
		p++
		if b&0x80 == 0 {
			return p, nil
		}
	}
}

// scanLength decodes the length field at p and checks that the announced
// value fits before end. It returns the length and the value offset.
func scanLength(data []byte, p, end int) (length, valueStart int, err error) {
	if p >= end {
		return 0, 0, ErrUnexpectedEnd
	}
	b1 := data[p]
	p++

	n := uint64(b1 & 0x7F)
	if b1&0x80 != 0 {
		count := int(b1 & 0x7F)
		if count > 4 {
			return 0, 0, ErrUnexpectedEnd
		}
		if end-p < count {
			return 0, 0, ErrUnexpectedEnd
		}
		n = 0
		for _, b := range data[p : p+count] {
			n = n<<8 | uint64(b)
		}
		p += count
	}

	if uint64(end-p) < n {
		return 0, 0, ErrUnexpectedEnd
	}
	return int(n), p, nil
}
