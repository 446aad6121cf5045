package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Printer opens print contexts. Opening fails when the platform refuses a
// new context, the equivalent of a blocked print window.
type Printer interface {
	Open(ctx context.Context) (PrintContext, error)
}

// PrintContext receives one document, prints it and is closed exactly once.
type PrintContext interface {
	Write(doc *PrintDocument) error
	Print(ctx context.Context) error
	Close() error
}

// DocumentWriter encodes a print document into a byte stream.
type DocumentWriter func(w io.Writer, doc *PrintDocument) error

// HTMLWriter encodes the standalone HTML document.
func HTMLWriter(autoPrint bool) DocumentWriter {
	return func(w io.Writer, doc *PrintDocument) error {
		return WriteHTML(w, doc, autoPrint)
	}
}

var errNoOutput = errors.New("no output to print to")

// StreamPrinter encodes the document and streams it to a writer when
// printed; an HTTP response carrying an auto-printing page is the usual
// target.
type StreamPrinter struct {
	w      io.Writer
	encode DocumentWriter
}

func NewStreamPrinter(w io.Writer, encode DocumentWriter) *StreamPrinter {
	return &StreamPrinter{w: w, encode: encode}
}

func (p *StreamPrinter) Open(context.Context) (PrintContext, error) {
	if p.w == nil {
		return nil, errNoOutput
	}

	return &streamContext{w: p.w, encode: p.encode}, nil
}

type streamContext struct {
	w      io.Writer
	encode DocumentWriter
	buf    bytes.Buffer
	closed bool
}

func (c *streamContext) Write(doc *PrintDocument) error {
	c.buf.Reset()
	return c.encode(&c.buf, doc)
}

func (c *streamContext) Print(ctx context.Context) error {
	if c.closed {
		return errors.New("print context closed")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := io.Copy(c.w, &c.buf)

	return err
}

func (c *streamContext) Close() error {
	c.closed = true
	c.buf.Reset()

	return nil
}

// SpoolPrinter writes each document to a temporary file in a spool
// directory and hands it to a print command such as lp. The file is
// removed when the context closes.
type SpoolPrinter struct {
	dir     string
	command []string
	ext     string
	encode  DocumentWriter
}

// NewSpoolPrinter spools PDF documents. command is split on spaces; the
// spool file path is appended as the last argument.
func NewSpoolPrinter(dir, command string) *SpoolPrinter {
	return &SpoolPrinter{
		dir:     dir,
		command: strings.Fields(command),
		ext:     ".pdf",
		encode:  WritePDF,
	}
}

// String names the print command, for display.
func (p *SpoolPrinter) String() string {
	return strings.Join(p.command, " ")
}

func (p *SpoolPrinter) Open(context.Context) (PrintContext, error) {
	if len(p.command) == 0 {
		return nil, errors.New("no print command configured")
	}

	f, err := os.CreateTemp(p.dir, "invoice-*"+p.ext)
	if err != nil {
		return nil, fmt.Errorf("creating spool file: %w", err)
	}

	return &spoolContext{file: f, command: p.command, encode: p.encode}, nil
}

type spoolContext struct {
	file    *os.File
	command []string
	encode  DocumentWriter
}

func (c *spoolContext) Write(doc *PrintDocument) error {
	if err := c.encode(c.file, doc); err != nil {
		return err
	}

	return c.file.Sync()
}

func (c *spoolContext) Print(ctx context.Context) error {
	args := append(c.command[1:len(c.command):len(c.command)], c.file.Name())

	out, err := exec.CommandContext(ctx, c.command[0], args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("running %s: %w: %s", c.command[0], err, strings.TrimSpace(string(out)))
	}

	return nil
}

func (c *spoolContext) Close() error {
	closeErr := c.file.Close()

	if err := os.Remove(c.file.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing spool file: %w", err)
	}

	return closeErr
}
