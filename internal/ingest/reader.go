package ingest

import (
	"bufio"
	"context"
	"io"
	"strings"

	"fix2json/internal/obs"
	"fix2json/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/pkg/sys"
)

const (
	defaultSeparator    byte = 0x01
	initialBufferSize        = 64 * 1024
	defaultMaxLineBytes      = 4 << 20
)

// Line is one candidate FIX message and its 1-based position in the input.
type Line struct {
	Number int64
	Text   string
}

// ReaderOptions controls line scanning.
type ReaderOptions struct {
	// Separator is the FIX field delimiter. Lines without it are skipped.
	Separator    byte
	MaxLineBytes int
	Metrics      *obs.Metrics
}

func (o ReaderOptions) withDefaults() ReaderOptions {
	if o.Separator == 0 {
		o.Separator = defaultSeparator
	}
	if o.MaxLineBytes <= 0 {
		o.MaxLineBytes = defaultMaxLineBytes
	}
	return o
}

// Reader yields lines that look like FIX messages. Log prefixes, banners and
// blank lines are dropped because they carry no separator.
type Reader struct {
	sc      *bufio.Scanner
	opts    ReaderOptions
	line    int64
	skipped int64
}

// NewReader wraps r with line scanning.
func NewReader(r io.Reader, opts ReaderOptions) *Reader {
	opts = opts.withDefaults()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, min(initialBufferSize, opts.MaxLineBytes)), opts.MaxLineBytes)
	return &Reader{sc: sc, opts: opts}
}

// Next returns the next line containing the separator. It returns io.EOF at
// the end of input, the context error once ctx is done, and
// exception.ErrIngestClosed when the process is shutting down.
func (r *Reader) Next(ctx context.Context) (Line, error) {
	for {
		select {
		case <-ctx.Done():
			return Line{}, ctx.Err()
		case <-sys.Shutdown():
			return Line{}, exception.ErrIngestClosed
		default:
		}

		if !r.sc.Scan() {
			err := r.sc.Err()
			if err == nil {
				return Line{}, io.EOF
			}
			if err == bufio.ErrTooLong {
				return Line{}, errors.Wrapf(exception.ErrIngestLineTooLong, "line %d exceeds %d bytes", r.line+1, r.opts.MaxLineBytes)
			}
			return Line{}, errors.Wrapf(err, "read line %d", r.line+1)
		}

		r.line++
		r.opts.Metrics.IncLineRead()
		text := r.sc.Text()
		if strings.IndexByte(text, r.opts.Separator) < 0 {
			r.skipped++
			r.opts.Metrics.IncLineSkipped()
			continue
		}
		return Line{Number: r.line, Text: text}, nil
	}
}

// Lines returns the number of lines scanned so far.
func (r *Reader) Lines() int64 {
	return r.line
}

// Skipped returns the number of lines dropped for lacking the separator.
func (r *Reader) Skipped() int64 {
	return r.skipped
}
