package output

import (
	"bytes"
	"strings"

	"fix2json/internal/model"
	"fix2json/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
	"gopkg.in/yaml.v3"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const indent = 2

// ParseFormat accepts "json", "yaml" or "yml" in any case. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errors.Wrapf(exception.ErrUnsupportedFormat, "format %q", s)
	}
}

// Formatter encodes one record into a standalone document.
type Formatter interface {
	Format(rec *model.Record) ([]byte, error)
}

// NewFormatter returns the formatter for format. pretty only affects JSON;
// YAML is always written in block style.
func NewFormatter(format Format, pretty bool) (Formatter, error) {
	switch format {
	case FormatJSON, "":
		return jsonFormatter{pretty: pretty}, nil
	case FormatYAML:
		return yamlFormatter{}, nil
	default:
		return nil, errors.Wrapf(exception.ErrUnsupportedFormat, "format %q", format)
	}
}

type jsonFormatter struct {
	pretty bool
}

func (f jsonFormatter) Format(rec *model.Record) ([]byte, error) {
	if f.pretty {
		return sonic.ConfigStd.MarshalIndent(rec, "", strings.Repeat(" ", indent))
	}
	return sonic.ConfigStd.Marshal(rec)
}

type yamlFormatter struct{}

func (yamlFormatter) Format(rec *model.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(rec); err != nil {
		return nil, errors.Wrap(err, "encode yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "close yaml encoder")
	}
	return buf.Bytes(), nil
}
