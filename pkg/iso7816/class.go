package iso7816

import (
	"fmt"

	"github.com/sigsergv/pcsc-tutorial/pkg/bits"
)

// CLASS BYTE (ISO/IEC 7816-4, section 5.4.1):
//
//	b8 = 1                  proprietary, the other bits are not interpreted
//	0 0 0 c s s l l         first interindustry: SM on b4-b3, channel 0-3 on b2-b1
//	0 1 s c l l l l         further interindustry: SM on b6, channel 4-19 on b4-b1
//
// In both interindustry forms b5 (c) announces command chaining.

// SecureMessaging defines the security level applied to the APDU.
type SecureMessaging int

const (
	// SMNone indicates no secure messaging or no indication given.
	SMNone SecureMessaging = 0
	// SMProprietary indicates a proprietary secure messaging format (First Interindustry only).
	SMProprietary SecureMessaging = 1
	// SMHeaderNoProc indicates SM according to ISO, where the header is not processed.
	SMHeaderNoProc SecureMessaging = 2
	// SMHeaderAuth indicates SM according to ISO, where the header is authenticated (First Interindustry only).
	SMHeaderAuth SecureMessaging = 3
)

// Class represents the parsed ISO 7816-4 Class byte (CLA).
type Class struct {
	Raw             byte
	IsProprietary   bool
	IsChained       bool
	SecureMessaging SecureMessaging
	Channel         uint8 // Logical channel number (0-19)
}

// NewClass creates a Class object by decoding a raw CLA byte.
func NewClass(cla byte) (Class, error) {
	if cla == 0xFF {
		return Class{}, fmt.Errorf("invalid CLA value: 0xFF is reserved")
	}

	c := Class{Raw: cla}

	if bits.IsSet(cla, 8) {
		c.IsProprietary = true
		return c, nil
	}

	c.IsChained = bits.IsSet(cla, 5)

	if !bits.IsSet(cla, 7) {
		c.SecureMessaging = SecureMessaging(bits.GetRange(cla, 4, 3))
		c.Channel = bits.GetRange(cla, 2, 1)
		return c, nil
	}

	if bits.IsSet(cla, 6) {
		c.SecureMessaging = SMHeaderNoProc
	}
	c.Channel = bits.GetRange(cla, 4, 1) + 4

	return c, nil
}

// NewInterindustryClass creates a Class object from parameters.
// It automatically selects First or Further interindustry encoding based on the channel number.
func NewInterindustryClass(isChained bool, sm SecureMessaging, channel uint8) (Class, error) {
	if channel > 19 {
		return Class{}, fmt.Errorf("channel %d out of range (max 19)", channel)
	}

	// one SM bit only in the further range
	if channel >= 4 && (sm == SMProprietary || sm == SMHeaderAuth) {
		return Class{}, fmt.Errorf("SM indicator %d not supported for further interindustry range (ch 4-19)", sm)
	}

	c := Class{
		IsChained:       isChained,
		SecureMessaging: sm,
		Channel:         channel,
	}

	raw, err := c.Encode()
	if err != nil {
		return Class{}, err
	}
	c.Raw = raw

	return c, nil
}

// Encode converts the Class back to its CLA byte.
func (c *Class) Encode() (byte, error) {
	if c.IsProprietary {
		return c.Raw, nil
	}
	if c.Channel > 19 {
		return 0, fmt.Errorf("channel %d out of range (max 19)", c.Channel)
	}

	res := bits.SetTo(0, 5, c.IsChained)

	if c.Channel <= 3 {
		return res | byte(c.SecureMessaging&0b11)<<2 | c.Channel, nil
	}

	res = bits.Set(res, 7)
	res = bits.SetTo(res, 6, c.SecureMessaging != SMNone)
	return res | (c.Channel - 4), nil
}

// Verbose returns a human-readable description of the CLA byte configuration.
func (c Class) Verbose() string {
	if c.IsProprietary {
		return fmt.Sprintf("Class: Proprietary (0x%02X)", c.Raw)
	}

	rangeName := "First Interindustry (Ch 0-3)"
	if c.Channel >= 4 {
		rangeName = "Further Interindustry (Ch 4-19)"
	}

	smDesc := "Unknown"
	switch c.SecureMessaging {
	case SMNone:
		smDesc = "None"
	case SMProprietary:
		smDesc = "Proprietary"
	case SMHeaderNoProc:
		smDesc = "ISO (Header not processed)"
	case SMHeaderAuth:
		smDesc = "ISO (Header authenticated)"
	}

	chaining := "Last or only command"
	if c.IsChained {
		chaining = "More commands follow (Chaining)"
	}

	return fmt.Sprintf(
		"Range: %s\nChaining: %s\nSecure Messaging: %s\nLogical Channel: %d",
		rangeName, chaining, smDesc, c.Channel,
	)
}
