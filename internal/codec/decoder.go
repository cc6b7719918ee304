package codec

import (
	"fmt"

	"fix2json/internal/dictionary"
	"fix2json/internal/model"
	"fix2json/pkg/exception"
)

// Options tunes a Decoder.
type Options struct {
	// Separator delimits fields on the wire. Zero selects SOH.
	Separator byte
	// CheckGroupCounts fails a line whose group counter disagrees with the
	// number of entries found. By default the token stream is trusted.
	CheckGroupCounts bool
}

// Message is the decoded form of one line.
type Message struct {
	Type   string
	Name   string
	Record *model.Record
}

// LineError reports a line that could not be decoded.
type LineError struct {
	Line   int64
	Raw    string
	Detail string
	Err    error
}

func (e *LineError) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Decoder turns raw FIX lines into records. It only reads the dictionary and
// the compiled contexts, so one Decoder may serve many goroutines.
type Decoder struct {
	dict      *dictionary.Dictionary
	compiled  *dictionary.Compiled
	tokenizer *Tokenizer
	opts      Options
}

// NewDecoder creates a decoder. When compiled is nil the dictionary is
// compiled here.
func NewDecoder(dict *dictionary.Dictionary, compiled *dictionary.Compiled, opts Options) (*Decoder, error) {
	if dict == nil {
		return nil, exception.ErrNilDictionary
	}
	if compiled == nil {
		compiled = dictionary.Compile(dict)
	}
	return &Decoder{
		dict:      dict,
		compiled:  compiled,
		tokenizer: NewTokenizer(dict.Fields, opts.Separator),
		opts:      opts,
	}, nil
}

// Separator returns the field separator the decoder splits on.
func (d *Decoder) Separator() byte {
	return d.tokenizer.Separator()
}

// Tokenize splits a raw line into tokens.
func (d *Decoder) Tokenize(line string) []Token {
	return d.tokenizer.Tokenize(line)
}

// Decode tokenizes and assembles one line.
func (d *Decoder) Decode(line string) (*Message, error) {
	msg, err := d.Assemble(d.Tokenize(line))
	if err != nil {
		if le, ok := err.(*LineError); ok {
			le.Raw = line
		}
		return nil, err
	}
	return msg, nil
}
