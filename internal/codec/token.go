package codec

import (
	"strconv"
	"strings"

	"fix2json/internal/dictionary"

	"github.com/yanun0323/decimal"
)

// DefaultSeparator is the ASCII SOH character delimiting FIX fields.
const DefaultSeparator byte = 0x01

// Token is one decoded tag=value occurrence, in wire order.
type Token struct {
	Tag   string
	ID    dictionary.FieldID
	Name  string
	Type  dictionary.FieldType
	Value any
	Raw   string
}

// IsCounter reports whether the token opens a repeating group.
func (t Token) IsCounter() bool {
	return t.Type == dictionary.TypeNumInGroup
}

// Tokenizer splits raw lines into tokens resolved against a field catalog.
type Tokenizer struct {
	catalog *dictionary.Catalog
	sep     byte
}

// NewTokenizer creates a tokenizer. A zero separator selects SOH.
func NewTokenizer(catalog *dictionary.Catalog, sep byte) *Tokenizer {
	if sep == 0 {
		sep = DefaultSeparator
	}
	return &Tokenizer{catalog: catalog, sep: sep}
}

// Separator returns the field separator in use.
func (t *Tokenizer) Separator() byte {
	return t.sep
}

// Tokenize splits line into tokens. Lines without the separator yield nil;
// segments lacking a tag or a value are dropped.
func (t *Tokenizer) Tokenize(line string) []Token {
	if strings.IndexByte(line, t.sep) < 0 {
		return nil
	}

	tokens := make([]Token, 0, strings.Count(line, string(t.sep))+1)
	for len(line) != 0 {
		var segment string
		if i := strings.IndexByte(line, t.sep); i >= 0 {
			segment, line = line[:i], line[i+1:]
		} else {
			segment, line = line, ""
		}

		tag, raw, ok := strings.Cut(segment, "=")
		if !ok {
			continue
		}
		tag = strings.TrimSpace(tag)
		raw = strings.TrimSpace(raw)
		if tag == "" || raw == "" {
			continue
		}
		tokens = append(tokens, t.token(tag, raw))
	}
	return tokens
}

func (t *Tokenizer) token(tag, raw string) Token {
	tok := Token{
		Tag:   tag,
		Name:  tag,
		Type:  dictionary.TypeString,
		Value: raw,
		Raw:   raw,
	}
	id, err := strconv.Atoi(tag)
	if err != nil {
		return tok
	}
	tok.ID = dictionary.FieldID(id)

	def, ok := t.catalog.Field(tok.ID)
	if !ok {
		return tok
	}
	tok.Name = def.Name
	tok.Type = def.Type
	tok.Value = convert(def, raw)
	return tok
}

func convert(def *dictionary.FieldDef, raw string) any {
	if m, ok := def.Mnemonic(raw); ok {
		return m
	}
	switch {
	case def.Type.IsInteger():
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
		if d, ok := parseDecimal(raw); ok {
			return d
		}
	case def.Type.IsDecimal():
		if d, ok := parseDecimal(raw); ok {
			return d
		}
	}
	return raw
}

func parseDecimal(raw string) (d decimal.Decimal, ok bool) {
	if !isDecimalLiteral(raw) {
		return d, false
	}
	d, err := decimal.New(raw)
	if err != nil {
		return d, false
	}
	return d, true
}

// isDecimalLiteral accepts an optional sign, digits and at most one point.
func isDecimalLiteral(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	var digits int
	var point bool
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !point:
			point = true
		default:
			return false
		}
	}
	return digits != 0
}
