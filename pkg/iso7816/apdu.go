package iso7816

import (
	"bytes"
	"fmt"

	"github.com/sigsergv/pcsc-tutorial/pkg/bertlv"
)

// COMMAND APDU (ISO 7816-3 and 7816-4):
//
//	CLA INS P1 P2 [Lc Data] [Le]
//
// The four encoding cases:
//   - Case 1: header only.
//   - Case 2: header + Le.
//   - Case 3: header + Lc + Data.
//   - Case 4: header + Lc + Data + Le.
//
// Short lengths take one byte (Le 00 means 256). Extended lengths take two
// bytes behind a 00 marker (Le 0000 means 65536) and are used as soon as
// Nc > 255 or Ne > 256.
//
// RESPONSE APDU:
//
//	[Data] SW1 SW2

// APDU limits according to ISO 7816-3.
const (
	// MaxShortLc is the largest Nc encodable with a one byte Lc.
	MaxShortLc = 255

	// MaxShortLe is the largest Ne encodable with a one byte Le (00).
	MaxShortLe = 256

	// MaxExtendedLc is the largest Nc encodable with an extended Lc.
	MaxExtendedLc = 65535

	// MaxExtendedLe is the largest Ne encodable with an extended Le (0000).
	MaxExtendedLe = 65536

	// MaxAPDUBufferSize is the size of the largest extended command:
	// header(4) + Lc(3) + data(65535) + Le(2), plus one spare byte.
	MaxAPDUBufferSize = 4 + 3 + MaxExtendedLc + 2 + 1
)

// CommandAPDU represents a command sent to the card.
type CommandAPDU struct {
	Class       Class
	Instruction Instruction
	P1, P2      byte
	Data        []byte
	Ne          int // Expected response length (0 means none)
}

// NewCommandAPDU creates a basic command.
func NewCommandAPDU(cla Class, ins Instruction, p1, p2 byte, data []byte, ne int) *CommandAPDU {
	return &CommandAPDU{
		Class:       cla,
		Instruction: ins,
		P1:          p1,
		P2:          p2,
		Data:        data,
		Ne:          ne,
	}
}

// ParseCommandAPDU decodes a raw C-APDU, as typed on a command line, into
// a CommandAPDU. All four cases are accepted in short and extended form.
func ParseCommandAPDU(raw []byte) (*CommandAPDU, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("command too short: length %d", len(raw))
	}

	cla, err := NewClass(raw[0])
	if err != nil {
		return nil, err
	}
	ins, err := NewInstruction(InsCode(raw[1]))
	if err != nil {
		return nil, err
	}
	cmd := NewCommandAPDU(cla, ins, raw[2], raw[3], nil, 0)

	body := raw[4:]
	switch {
	case len(body) == 0:
		// case 1
	case len(body) == 1:
		cmd.Ne = shortLe(body[0])
	case body[0] != 0x00:
		nc := int(body[0])
		switch len(body) {
		case 1 + nc:
		case 2 + nc:
			cmd.Ne = shortLe(body[1+nc])
		default:
			return nil, fmt.Errorf("short Lc %d does not match body length %d", nc, len(body))
		}
		cmd.Data = bytes.Clone(body[1 : 1+nc])
	case len(body) == 3:
		cmd.Ne = extendedLe(body[1], body[2])
	case len(body) > 3:
		nc := int(body[1])<<8 | int(body[2])
		if nc == 0 {
			return nil, fmt.Errorf("extended Lc of zero")
		}
		switch len(body) {
		case 3 + nc:
		case 5 + nc:
			cmd.Ne = extendedLe(body[3+nc], body[4+nc])
		default:
			return nil, fmt.Errorf("extended Lc %d does not match body length %d", nc, len(body))
		}
		cmd.Data = bytes.Clone(body[3 : 3+nc])
	default:
		return nil, fmt.Errorf("malformed command body % X", body)
	}

	return cmd, nil
}

func shortLe(le byte) int {
	if le == 0x00 {
		return MaxShortLe
	}
	return int(le)
}

func extendedLe(hi, lo byte) int {
	le := int(hi)<<8 | int(lo)
	if le == 0 {
		return MaxExtendedLe
	}
	return le
}

// Bytes encodes the command, picking short or extended lengths from Nc and Ne.
func (c *CommandAPDU) Bytes() ([]byte, error) {
	nc := len(c.Data)
	ne := c.Ne
	if nc > MaxExtendedLc {
		return nil, fmt.Errorf("data length %d exceeds %d", nc, MaxExtendedLc)
	}
	if ne < 0 || ne > MaxExtendedLe {
		return nil, fmt.Errorf("expected length %d out of range", ne)
	}

	class, err := c.Class.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode Class: %w", err)
	}

	buf := new(bytes.Buffer)
	buf.Write([]byte{class, byte(c.Instruction.Raw), c.P1, c.P2})

	extended := nc > MaxShortLc || ne > MaxShortLe

	if nc > 0 {
		if extended {
			buf.Write([]byte{0x00, byte(nc >> 8), byte(nc)})
		} else {
			buf.WriteByte(byte(nc))
		}
		buf.Write(c.Data)
	}

	if ne > 0 {
		switch {
		case !extended:
			buf.WriteByte(byte(ne)) // 256 wraps to 00
		case nc == 0:
			// Case 2 extended: the 00 marker tells Le apart from a short Lc.
			buf.Write([]byte{0x00, byte(ne >> 8), byte(ne)})
		default:
			buf.Write([]byte{byte(ne >> 8), byte(ne)})
		}
	}

	return buf.Bytes(), nil
}

// String returns a readable representation of the command meta-data.
func (c *CommandAPDU) String() string {
	return fmt.Sprintf("%s | P1: %02X, P2: %02X | Lc: %d | Le: %d",
		c.Instruction.Verbose(), c.P1, c.P2, len(c.Data), c.Ne)
}

// ResponseAPDU represents the reply from the card (R-APDU).
type ResponseAPDU struct {
	Data   []byte
	Status StatusWord
}

// ParseResponseAPDU splits raw bytes received from the card into body and
// status word. The input must contain at least SW1 and SW2.
func ParseResponseAPDU(raw []byte) (*ResponseAPDU, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("response too short: length %d", len(raw))
	}

	n := len(raw) - 2
	return &ResponseAPDU{
		Data:   bytes.Clone(raw[:n]),
		Status: NewStatusWord(raw[n], raw[n+1]),
	}, nil
}

// Elements decodes the response body as BER-TLV.
func (r *ResponseAPDU) Elements() ([]*bertlv.Tlv, error) {
	return bertlv.Decode(r.Data)
}

// String returns a readable representation of the response.
func (r *ResponseAPDU) String() string {
	return fmt.Sprintf("Data (%d bytes) | Status: %s", len(r.Data), r.Status.Verbose())
}
