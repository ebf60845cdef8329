package tlvdump

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sigsergv/pcsc-tutorial/pkg/bertlv"
	"github.com/sigsergv/pcsc-tutorial/pkg/emv"
)

const indent = "  "

// Text writes one line per element, children indented under their parent:
//
//	6F File Control Information (FCI) Template
//	  84 Dedicated File (DF) Name: hex(A0 00 00 00 03 10 10)
//	  A5 FCI Proprietary Template
//	    50 Application Label: VISA
func Text(w io.Writer, elements []*bertlv.Tlv, dict *emv.Dictionary) error {
	bw := bufio.NewWriter(w)
	writeText(bw, elements, dict, 0)
	return bw.Flush()
}

func writeText(w *bufio.Writer, elements []*bertlv.Tlv, dict *emv.Dictionary, depth int) {
	prefix := strings.Repeat(indent, depth)
	for _, e := range elements {
		label := fmt.Sprintf("%s%X %s", prefix, e.TagBytes(), dict.Name(e.Tag()))
		if e.Encoding() == bertlv.Constructed {
			fmt.Fprintln(w, label)
			writeText(w, e.Children(), dict, depth+1)
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", label, dict.Render(e.Tag(), e.Bytes()))
	}
}
