/*
Package iso7816 is the APDU transport layer used to fetch BER-TLV data from a
smart card (ISO/IEC 7816-3 and 7816-4).

# Fundamentals

The exchange with a card is strictly synchronous:
 1. The host sends a Command APDU (header and optional body).
 2. The card answers with a Response APDU (optional body and the SW1 SW2 trailer).

Response bodies of EMV and most ISO 7816-4 commands are BER-TLV encoded;
ResponseAPDU.Elements decodes them with package bertlv.

# Status Words

Every response ends with a 2-byte Status Word (SW).
  - 0x9000: Success.
  - 0x61XX: Success, XX more bytes are waiting (GET RESPONSE).
  - 0x6CXX: Wrong Le, XX is the length the card expects.
  - Other: warnings and errors, see StatusWord.Verbose.

# Usage

	client := iso7816.NewClient(card) // card is any Transmitter, e.g. *scard.Card
	cmd, err := iso7816.ParseCommandAPDU(raw)
	if err != nil {
	    return err
	}
	trace, err := client.Send(cmd)
	if err != nil {
	    return err
	}
	if !trace.IsSuccess() {
	    return fmt.Errorf("card answered %s", trace.Last().Response.Status.Verbose())
	}
	elements, err := bertlv.Decode(trace.Data())
*/
package iso7816
