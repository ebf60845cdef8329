package iso7816

// TRACE:
// One logical command may take several physical exchanges in T=0:
//  1. "61 XX": XX bytes are waiting, the host sends GET RESPONSE.
//  2. "6C XX": wrong Le, the host re-sends the command with Le = XX.
//
// A Trace records every exchange in order. Its outcome is the outcome of the
// last one.

// Transaction is one Command-Response pair.
type Transaction struct {
	Command  *CommandAPDU
	Response *ResponseAPDU
}

// IsSuccess checks if the transaction ended with a successful status.
// It returns false if the response is missing.
func (t *Transaction) IsSuccess() bool {
	if t.Response == nil {
		return false
	}
	return t.Response.Status.IsSuccess()
}

// Trace is the ordered list of transactions behind one logical command.
type Trace []Transaction

// Last returns the final transaction of the trace, or nil.
func (t Trace) Last() *Transaction {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

// IsSuccess reports whether the final transaction succeeded.
func (t Trace) IsSuccess() bool {
	last := t.Last()
	if last == nil {
		return false
	}
	return last.IsSuccess()
}

// Data returns the response body of the logical command: the bodies of every
// 61XX response followed by the body of the final one.
func (t Trace) Data() []byte {
	var data []byte
	for i, tx := range t {
		if tx.Response == nil {
			continue
		}
		if i == len(t)-1 || tx.Response.Status.SW1() == 0x61 {
			data = append(data, tx.Response.Data...)
		}
	}
	return data
}
