package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ebfe/scard"

	"github.com/sigsergv/pcsc-tutorial/pkg/iso7816"
	"github.com/sigsergv/pcsc-tutorial/pkg/tlv"
)

// listReaders prints the PC/SC readers with their --reader index.
func listReaders(w io.Writer) error {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return fmt.Errorf("establish PC/SC context: %w", err)
	}
	defer func() { _ = ctx.Release() }()

	readers, err := ctx.ListReaders()
	if err != nil {
		return fmt.Errorf("list readers: %w", err)
	}
	for i, r := range readers {
		fmt.Fprintf(w, "%d: %s\n", i, r)
	}
	return nil
}

// transmitAPDU sends one command to the card in reader index and returns the
// response body once 61XX and 6CXX exchanges are done.
func transmitAPDU(index int, apduHex string, logger *slog.Logger) ([]byte, error) {
	raw, err := tlv.ParseHex(apduHex)
	if err != nil {
		return nil, fmt.Errorf("--apdu: %w", err)
	}
	cmd, err := iso7816.ParseCommandAPDU(raw)
	if err != nil {
		return nil, fmt.Errorf("--apdu: %w", err)
	}

	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("establish PC/SC context: %w", err)
	}
	defer func() {
		if err := ctx.Release(); err != nil {
			logger.Warn("failed to release PC/SC context", "error", err)
		}
	}()

	readers, err := ctx.ListReaders()
	if err != nil {
		return nil, fmt.Errorf("list readers: %w", err)
	}
	if index < 0 || index >= len(readers) {
		return nil, fmt.Errorf("reader %d not found (%d available)", index, len(readers))
	}
	logger.Info("using reader", "name", readers[index])

	// T=0 or T=1 avoids "Parameter Incorrect" on readers that reject a single protocol.
	card, err := ctx.Connect(readers[index], scard.ShareShared, scard.ProtocolT0|scard.ProtocolT1)
	if err != nil {
		return nil, fmt.Errorf("connect to card: %w", err)
	}
	defer func() {
		if err := card.Disconnect(scard.LeaveCard); err != nil {
			logger.Warn("failed to disconnect card", "error", err)
		}
	}()

	client := iso7816.NewClient(card)
	client.Logger = logger
	logger.Debug("sending", "command", cmd.String())

	trace, err := client.Send(cmd)
	if err != nil {
		return nil, err
	}
	last := trace.Last()
	if !trace.IsSuccess() {
		return nil, fmt.Errorf("card answered %s", last.Response.Status.Verbose())
	}
	return trace.Data(), nil
}
