package iso7816

import (
	"fmt"
	"log/slog"
)

// CLIENT:
// Client drives a Transmitter and hides the T=0 transport procedures:
//   - "61 XX": GET RESPONSE with Le = XX (00 meaning 256) on the same channel.
//   - "6C XX": the original command again with Le = XX.
//
// Send returns the Trace of every exchange it performed.

// maxExchanges bounds the number of exchanges of one Send call, so a card
// answering 61XX forever cannot keep the client busy.
const maxExchanges = 64

// Transmitter abstracts the physical card connection. *scard.Card satisfies it.
type Transmitter interface {
	Transmit(cmd []byte) ([]byte, error)
}

// Client manages the communication with the card.
type Client struct {
	Card Transmitter

	// Logger receives one debug record per exchange. Nil disables logging.
	Logger *slog.Logger
}

// NewClient creates a new Client instance.
func NewClient(card Transmitter) *Client {
	return &Client{Card: card}
}

// Send transmits a command and follows 61XX and 6CXX answers.
func (c *Client) Send(cmd *CommandAPDU) (Trace, error) {
	var trace Trace

	for next := cmd; next != nil; {
		if len(trace) == maxExchanges {
			return trace, fmt.Errorf("gave up after %d exchanges", maxExchanges)
		}

		resp, err := c.exchange(next)
		if err != nil {
			return trace, err
		}
		trace = append(trace, Transaction{Command: next, Response: resp})

		next, err = followUp(cmd, next, resp.Status)
		if err != nil {
			return trace, err
		}
	}

	return trace, nil
}

func (c *Client) exchange(cmd *CommandAPDU) (*ResponseAPDU, error) {
	rawCmd, err := cmd.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}

	rawResp, err := c.Card.Transmit(rawCmd)
	if err != nil {
		return nil, fmt.Errorf("transmission error: %w", err)
	}

	if c.Logger != nil {
		c.Logger.Debug("apdu exchange", "command", fmt.Sprintf("%X", rawCmd), "response", fmt.Sprintf("%X", rawResp))
	}

	return ParseResponseAPDU(rawResp)
}

// followUp returns the command to send after a response with status sw, or
// nil when the exchange is complete.
func followUp(original, last *CommandAPDU, sw StatusWord) (*CommandAPDU, error) {
	switch sw.SW1() {
	case 0x61:
		// GET RESPONSE stays on the logical channel of the original command.
		cls := original.Class
		cls.IsChained = false

		ins, err := NewInstruction(INS_GET_RESPONSE)
		if err != nil {
			return nil, err
		}
		return NewCommandAPDU(cls, ins, 0x00, 0x00, nil, shortLe(sw.SW2())), nil

	case 0x6C:
		retry := *last
		retry.Ne = shortLe(sw.SW2())
		return &retry, nil
	}
	return nil, nil
}
