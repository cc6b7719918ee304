package model

import (
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/speakeasy-api/openapi/sequencedmap"
	"github.com/yanun0323/decimal"
	"gopkg.in/yaml.v3"
)

var (
	_ yaml.Marshaler = (*Record)(nil)
)

// Record is an ordered key/value document produced for one decoded message
// or one repeating group entry. Values are int64, decimal.Decimal, string or
// []*Record. Setting an existing key replaces its value in place.
type Record struct {
	fields *sequencedmap.Map[string, any]
}

// NewRecord allocates an empty record.
func NewRecord() *Record {
	return &Record{fields: sequencedmap.New[string, any]()}
}

// Set stores value under key, keeping the key's first position.
func (r *Record) Set(key string, value any) {
	r.fields.Set(key, value)
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	return r.fields.Get(key)
}

// Group returns the entries stored under key when it holds a repeating group.
func (r *Record) Group(key string) ([]*Record, bool) {
	v, ok := r.Get(key)
	if !ok {
		return nil, false
	}
	g, ok := v.([]*Record)
	return g, ok
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, r.fields.Len())
	for k := range r.fields.All() {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return r.fields.Len()
}

// Map converts the record into plain maps and slices, losing key order.
func (r *Record) Map() map[string]any {
	if r == nil {
		return nil
	}
	out := make(map[string]any, r.fields.Len())
	for k, value := range r.fields.All() {
		switch v := value.(type) {
		case []*Record:
			entries := make([]map[string]any, 0, len(v))
			for _, e := range v {
				entries = append(entries, e.Map())
			}
			out[k] = entries
		default:
			out[k] = v
		}
	}
	return out
}

// MarshalJSON encodes the record as a JSON object in key order. Decimals are
// written as JSON numbers.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	return r.appendJSON(make([]byte, 0, 32*r.fields.Len()+2))
}

func (r *Record) appendJSON(buf []byte) ([]byte, error) {
	buf = append(buf, '{')
	first := true
	for k, v := range r.fields.All() {
		if !first {
			buf = append(buf, ',')
		}
		first = false
		key, err := sonic.ConfigStd.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		if buf, err = appendJSONValue(buf, v); err != nil {
			return nil, err
		}
	}
	return append(buf, '}'), nil
}

func appendJSONValue(buf []byte, value any) ([]byte, error) {
	switch v := value.(type) {
	case []*Record:
		buf = append(buf, '[')
		for i, e := range v {
			if i > 0 {
				buf = append(buf, ',')
			}
			var err error
			if buf, err = e.appendJSON(buf); err != nil {
				return nil, err
			}
		}
		return append(buf, ']'), nil
	case int64:
		return strconv.AppendInt(buf, v, 10), nil
	case decimal.Decimal:
		return append(buf, v.String()...), nil
	default:
		b, err := sonic.ConfigStd.Marshal(v)
		if err != nil {
			return nil, err
		}
		return append(buf, b...), nil
	}
}

// MarshalYAML encodes the record as an ordered YAML mapping.
func (r *Record) MarshalYAML() (any, error) {
	return r.yamlNode()
}

func (r *Record) yamlNode() (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if r == nil {
		return node, nil
	}
	node.Content = make([]*yaml.Node, 0, 2*r.fields.Len())
	for k, v := range r.fields.All() {
		val, err := yamlValue(v)
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			val,
		)
	}
	return node, nil
}

func yamlValue(value any) (*yaml.Node, error) {
	switch v := value.(type) {
	case []*Record:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: make([]*yaml.Node, 0, len(v))}
		for _, e := range v {
			n, err := e.yamlNode()
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, n)
		}
		return seq, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}, nil
	case decimal.Decimal:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: v.String()}, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(v); err != nil {
			return nil, err
		}
		return n, nil
	}
}
