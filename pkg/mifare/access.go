// Package mifare decodes and encodes the access conditions stored in the
// sector trailer of MIFARE Classic cards.
//
// ACCESS BITS LAYOUT (bytes 6 to 8 of the trailer, n = block 0..3):
//
//	byte 6:  ^C2(n) in b5..b8,  ^C1(n) in b1..b4
//	byte 7:   C1(n) in b5..b8,  ^C3(n) in b1..b4
//	byte 8:   C3(n) in b5..b8,   C2(n) in b1..b4
//
// Every bit is stored twice, once inverted. A card refuses to authenticate a
// sector whose copies disagree, which is why Validate exists.
package mifare

import (
	"errors"
	"fmt"

	"github.com/sigsergv/pcsc-tutorial/pkg/bits"
)

// TrailerSize is the size of a sector trailer block.
const TrailerSize = 16

// ErrInconsistent reports access bytes whose inverted copies do not match.
var ErrInconsistent = errors.New("mifare: inconsistent access bits")

// Condition holds the access bits of one block.
type Condition struct {
	C1, C2, C3 bool
}

// Code returns the bits as the 3-bit number C1C2C3 used in datasheet tables.
func (c Condition) Code() byte {
	var code byte
	code = bits.SetTo(code, 3, c.C1)
	code = bits.SetTo(code, 2, c.C2)
	code = bits.SetTo(code, 1, c.C3)
	return code
}

func (c Condition) String() string {
	return fmt.Sprintf("%03b", c.Code())
}

// AccessConditions are the conditions of blocks 0 to 2 followed by the
// sector trailer (block 3).
type AccessConditions [4]Condition

// TransportConditions is the factory setting (FF 07 80): data blocks are
// open with key A or B, the trailer is managed with key A.
var TransportConditions = AccessConditions{
	{}, {}, {},
	{C3: true},
}

// Unpack reads the non-inverted copies from access bytes 6 to 8. Byte 6 is
// not consulted; use Validate to check it.
func Unpack(access [3]byte) AccessConditions {
	var ac AccessConditions
	for n := uint(0); n < 4; n++ {
		ac[n] = Condition{
			C1: bits.IsSet(access[1], 5+n),
			C2: bits.IsSet(access[2], 1+n),
			C3: bits.IsSet(access[2], 5+n),
		}
	}
	return ac
}

// Pack produces access bytes 6 to 8, inverted copies included.
func (ac AccessConditions) Pack() [3]byte {
	var b6, b7, b8 byte
	for n := uint(0); n < 4; n++ {
		c := ac[n]
		b6 = bits.SetTo(b6, 5+n, !c.C2)
		b6 = bits.SetTo(b6, 1+n, !c.C1)
		b7 = bits.SetTo(b7, 5+n, c.C1)
		b7 = bits.SetTo(b7, 1+n, !c.C3)
		b8 = bits.SetTo(b8, 5+n, c.C3)
		b8 = bits.SetTo(b8, 1+n, c.C2)
	}
	return [3]byte{b6, b7, b8}
}

// Validate checks that every inverted copy in the access bytes agrees with
// its plain counterpart.
func Validate(access [3]byte) error {
	b6, b7, b8 := access[0], access[1], access[2]
	for n := uint(0); n < 4; n++ {
		switch {
		case bits.IsSet(b7, 5+n) == bits.IsSet(b6, 1+n):
			return fmt.Errorf("%w: C1 of block %d", ErrInconsistent, n)
		case bits.IsSet(b8, 1+n) == bits.IsSet(b6, 5+n):
			return fmt.Errorf("%w: C2 of block %d", ErrInconsistent, n)
		case bits.IsSet(b8, 5+n) == bits.IsSet(b7, 1+n):
			return fmt.Errorf("%w: C3 of block %d", ErrInconsistent, n)
		}
	}
	return nil
}

// FromTrailer validates and unpacks the access bytes of a sector trailer.
func FromTrailer(trailer []byte) (AccessConditions, error) {
	if len(trailer) != TrailerSize {
		return AccessConditions{}, fmt.Errorf("mifare: trailer is %d bytes, want %d", len(trailer), TrailerSize)
	}
	access := [3]byte{trailer[6], trailer[7], trailer[8]}
	if err := Validate(access); err != nil {
		return AccessConditions{}, err
	}
	return Unpack(access), nil
}
