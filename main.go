// pcsc-tutorial decodes BER-TLV data, the encoding of smart-card and EMV
// data objects, and prints it as an annotated tree.
//
// Input comes from one of three places:
//
// Hex arguments or --file: hex text (whitespace ignored), or raw bytes with
// --binary. Without either, stdin is read the same way.
//
// Card mode (--apdu): the command APDU is sent to the card in the PC/SC
// reader chosen with --reader, and the response body is decoded.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/sigsergv/pcsc-tutorial/pkg/bertlv"
	"github.com/sigsergv/pcsc-tutorial/pkg/emv"
	"github.com/sigsergv/pcsc-tutorial/pkg/tlv"
	"github.com/sigsergv/pcsc-tutorial/pkg/tlvdump"
)

// defaultMaxDepth bounds nesting of command line input.
const defaultMaxDepth = 64

type options struct {
	file        string
	binary      bool
	apdu        string
	reader      int
	listReaders bool
	format      string
	dict        string
	maxDepth    int
	logLevel    string
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options

	flagSet := pflag.NewFlagSet("pcsc-tutorial", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.file, "file", "f", "", "read input from this file instead of arguments or stdin")
	flagSet.BoolVar(&opts.binary, "binary", false, "input is raw bytes rather than hex text")
	flagSet.StringVar(&opts.apdu, "apdu", "", "send this command APDU (hex) to the card and decode the response")
	flagSet.IntVar(&opts.reader, "reader", 0, "index of the PC/SC reader used with --apdu")
	flagSet.BoolVar(&opts.listReaders, "list-readers", false, "list PC/SC readers and exit")
	flagSet.StringVar(&opts.format, "format", "text", "output format: text, yaml, cbor or emv")
	flagSet.StringVar(&opts.dict, "dict", "", "YAML file with extra tag definitions")
	flagSet.IntVar(&opts.maxDepth, "max-depth", defaultMaxDepth, "maximum nesting depth, 0 for unlimited")
	flagSet.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(stderr, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stderr, flagSet)
		return nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q", opts.logLevel)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if opts.listReaders {
		return listReaders(stdout)
	}

	dict, err := loadDictionary(opts.dict)
	if err != nil {
		return err
	}

	data, err := readInput(&opts, flagSet.Args(), stdin, logger)
	if err != nil {
		return err
	}
	logger.Debug("decoding", "bytes", len(data), "max_depth", opts.maxDepth)

	decoder := bertlv.Decoder{MaxDepth: opts.maxDepth}
	elements, err := decoder.Decode(data)
	if err != nil {
		var syntaxErr *bertlv.SyntaxError
		if errors.As(err, &syntaxErr) {
			logger.Debug("malformed input", "offset", syntaxErr.Offset, "tag", fmt.Sprintf("%X", syntaxErr.Tag))
		}
		return err
	}
	logger.Info("decoded", "elements", len(elements))

	return write(stdout, opts.format, elements, dict)
}

func readInput(opts *options, args []string, stdin io.Reader, logger *slog.Logger) ([]byte, error) {
	switch {
	case opts.apdu != "":
		if len(args) > 0 || opts.file != "" {
			return nil, fmt.Errorf("--apdu cannot be combined with other input")
		}
		return transmitAPDU(opts.reader, opts.apdu, logger)
	case len(args) > 0:
		if opts.file != "" {
			return nil, fmt.Errorf("unexpected argument %q with --file", args[0])
		}
		return tlv.ParseHex(args...)
	}

	var raw []byte
	var err error
	if opts.file != "" {
		raw, err = os.ReadFile(opts.file)
	} else {
		raw, err = io.ReadAll(stdin)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if opts.binary {
		return raw, nil
	}
	return tlv.ParseHex(string(raw))
}

func loadDictionary(path string) (*emv.Dictionary, error) {
	dict := emv.DefaultDictionary()
	if path == "" {
		return dict, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	return emv.LoadDictionary(f, dict)
}

func write(w io.Writer, format string, elements []*bertlv.Tlv, dict *emv.Dictionary) error {
	switch strings.ToLower(format) {
	case "text":
		return tlvdump.Text(w, elements, dict)
	case "yaml":
		return tlvdump.YAML(w, elements, dict)
	case "cbor":
		data, err := tlvdump.CBOR(elements, dict)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "emv":
		return describeEMV(w, elements)
	default:
		return fmt.Errorf("unknown --format %q", format)
	}
}

// describeEMV prints the field report of FCI templates and directory records.
func describeEMV(w io.Writer, elements []*bertlv.Tlv) error {
	if len(elements) == 0 {
		return fmt.Errorf("no data to describe")
	}

	switch elements[0].Tag() {
	case emv.TagFCITemplate:
		fci, err := emv.ParseFCI(bertlv.Encode(elements[0]))
		if err != nil {
			return err
		}
		fmt.Fprintln(w, fci.Describe())
		if label := fci.Label(); label != "" {
			fmt.Fprintf(w, "Application: %s\n", label)
		}
	case emv.TagRecordTemplate:
		record, err := emv.ParseDirectoryRecord(bertlv.Encode(elements[0]))
		if err != nil {
			return err
		}
		fmt.Fprintln(w, record.Describe())
		for _, aid := range record.AIDs() {
			fmt.Fprintf(w, "AID: %X\n", aid)
		}
	default:
		return fmt.Errorf("tag %X is neither an FCI (6F) nor a record template (70)", elements[0].TagBytes())
	}
	return nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `pcsc-tutorial decodes BER-TLV data and prints it as a tree.

Usage:
  pcsc-tutorial [flags] [HEX...]
  pcsc-tutorial [flags] --file response.hex
  pcsc-tutorial [flags] --apdu 00A404000E325041592E5359532E444446303100

Flags:
%s`, flagSet.FlagUsages())
}
