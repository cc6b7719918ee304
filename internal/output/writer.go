package output

import (
	"bufio"
	"context"
	"io"
	"sync"

	"fix2json/internal/codec"
	"fix2json/internal/ingest"

	"github.com/yanun0323/errors"
)

const yamlDocumentSeparator = "---\n"

// WriterOptions controls document output.
type WriterOptions struct {
	Format Format
	Pretty bool
	// AutoFlush pushes every document to the underlying writer as soon as it
	// is written, for streaming input.
	AutoFlush bool
}

// Writer writes one document per decoded message.
type Writer struct {
	mu        sync.Mutex
	w         *bufio.Writer
	formatter Formatter
	opts      WriterOptions
	docs      int64
}

// NewWriter creates a document writer over w.
func NewWriter(w io.Writer, opts WriterOptions) (*Writer, error) {
	formatter, err := NewFormatter(opts.Format, opts.Pretty)
	if err != nil {
		return nil, err
	}
	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	return &Writer{
		w:         bufio.NewWriter(w),
		formatter: formatter,
		opts:      opts,
	}, nil
}

// Emit formats msg and writes it, newline terminated.
func (w *Writer) Emit(_ context.Context, line ingest.Line, msg *codec.Message) error {
	doc, err := w.formatter.Format(msg.Record)
	if err != nil {
		return errors.Wrapf(err, "format line %d", line.Number)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.opts.Format == FormatYAML && w.docs > 0 {
		if _, err := w.w.WriteString(yamlDocumentSeparator); err != nil {
			return errors.Wrap(err, "write document separator")
		}
	}
	if _, err := w.w.Write(doc); err != nil {
		return errors.Wrapf(err, "write line %d", line.Number)
	}
	if len(doc) == 0 || doc[len(doc)-1] != '\n' {
		if err := w.w.WriteByte('\n'); err != nil {
			return errors.Wrapf(err, "write line %d", line.Number)
		}
	}
	w.docs++

	if w.opts.AutoFlush {
		return w.w.Flush()
	}
	return nil
}

// Flush writes any buffered documents.
func (w *Writer) Flush(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Flush()
}

// Documents returns the number of documents written.
func (w *Writer) Documents() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.docs
}
