package bertlv

// Encoding is canonical: tag bytes are written as stored and lengths use the
// shortest definite form.
//
//	0..127          -> LL
//	128..255        -> 81 LL
//	256..65535      -> 82 LL LL
//	65536..2^24-1   -> 83 LL LL LL
//	2^24..2^32-1    -> 84 LL LL LL LL

// Encode returns the canonical encoding of the given elements, concatenated.
func Encode(elements ...*Tlv) []byte {
	var out []byte
	for _, e := range elements {
		out = e.AppendEncoded(out)
	}
	return out
}

// Encode returns the canonical encoding of t.
func (t *Tlv) Encode() []byte {
	return t.AppendEncoded(nil)
}

// AppendEncoded appends the canonical encoding of t to dst.
func (t *Tlv) AppendEncoded(dst []byte) []byte {
	dst = append(dst, t.tagBytes...)
	switch v := t.value.(type) {
	case Children:
		var inner []byte
		for _, c := range v {
			inner = c.AppendEncoded(inner)
		}
		dst = appendLength(dst, len(inner))
		dst = append(dst, inner...)
	case Bytes:
		dst = appendLength(dst, len(v))
		dst = append(dst, v...)
	default:
		dst = appendLength(dst, 0)
	}
	return dst
}

// EncodedLen returns the number of bytes AppendEncoded would write.
func (t *Tlv) EncodedLen() int {
	n := t.contentLen()
	return len(t.tagBytes) + lengthSize(n) + n
}

func (t *Tlv) contentLen() int {
	switch v := t.value.(type) {
	case Children:
		n := 0
		for _, c := range v {
			n += c.EncodedLen()
		}
		return n
	case Bytes:
		return len(v)
	}
	return 0
}

func lengthSize(n int) int {
	if n < 0x80 {
		return 1
	}
	size := 1
	for v := uint64(n); v != 0; v >>= 8 {
		size++
	}
	return size
}

func appendLength(dst []byte, n int) []byte {
	if n < 0x80 {
		return append(dst, byte(n))
	}
	var buf [8]byte
	i := len(buf)
	for v := uint64(n); v != 0; v >>= 8 {
		i--
		buf[i] = byte(v)
	}
	dst = append(dst, 0x80|byte(len(buf)-i))
	return append(dst, buf[i:]...)
}
