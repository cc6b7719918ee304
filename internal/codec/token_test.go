package codec_test

import (
	"testing"

	"fix2json/internal/codec"
	"fix2json/internal/dictionary"
	"fix2json/internal/dictionary/dictionarytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/decimal"
)

func newTokenizer(t *testing.T, sep byte) *codec.Tokenizer {
	t.Helper()
	dict, err := dictionarytest.Load()
	require.NoError(t, err)
	return codec.NewTokenizer(dict.Fields, sep)
}

func TestTokenizeValues(t *testing.T) {
	tk := newTokenizer(t, 0)
	assert.Equal(t, codec.DefaultSeparator, tk.Separator())

	testCases := []struct {
		desc     string
		pair     string
		name     string
		typ      dictionary.FieldType
		expected any
	}{
		{"mnemonic", "40=2", "OrdType", "CHAR", "Limit"},
		{"enum miss keeps raw", "40=9", "OrdType", "CHAR", "9"},
		{"mnemonic with underscores", "35=D", "MsgType", dictionary.TypeString, "ORDER SINGLE"},
		{"mnemonic on integer field", "452=3", "PartyRole", dictionary.TypeInt, "CLIENT ID"},
		{"integer", "34=42", "MsgSeqNum", dictionary.TypeSeqNum, int64(42)},
		{"negative integer", "803=-7", "PartySubIDType", dictionary.TypeInt, int64(-7)},
		{"counter", "453=2", "NoPartyIDs", dictionary.TypeNumInGroup, int64(2)},
		{"integer not parsable", "34=abc", "MsgSeqNum", dictionary.TypeSeqNum, "abc"},
		{"string stays string", "11=00123", "ClOrdID", dictionary.TypeString, "00123"},
		{"timestamp stays string", "52=20240102-10:00:00", "SendingTime", "UTCTIMESTAMP", "20240102-10:00:00"},
		{"decimal not parsable", "44=1.2.3", "Price", dictionary.TypePrice, "1.2.3"},
		{"exponent kept raw", "44=1e3", "Price", dictionary.TypePrice, "1e3"},
		{"unknown tag", "9999=x", "9999", dictionary.TypeString, "x"},
		{"non numeric tag", "abc=1", "abc", dictionary.TypeString, "1"},
		{"surrounding spaces", " 55 = AAPL ", "Symbol", dictionary.TypeString, "AAPL"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			tokens := tk.Tokenize(dictionarytest.Line(tc.pair))
			require.Len(t, tokens, 1)
			assert.Equal(t, tc.name, tokens[0].Name)
			assert.Equal(t, tc.typ, tokens[0].Type)
			assert.Equal(t, tc.expected, tokens[0].Value)
		})
	}
}

func TestTokenizeDecimal(t *testing.T) {
	tk := newTokenizer(t, 0)

	testCases := []struct {
		desc     string
		pair     string
		expected string
	}{
		{"price", "44=101.25", "101.25"},
		{"whole quantity", "38=100", "100"},
		{"negative", "270=-0.5", "-0.5"},
		{"integer field with fraction", "34=2.5", "2.5"},
		{"trailing zero", "44=100.50", "100.5"},
		{"leading point", "44=.5", "0.5"},
		{"plus sign", "38=+3", "3"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			tokens := tk.Tokenize(dictionarytest.Line(tc.pair))
			require.Len(t, tokens, 1)
			d, ok := tokens[0].Value.(decimal.Decimal)
			require.Truef(t, ok, "value %T is not a decimal", tokens[0].Value)
			assert.Equal(t, tc.expected, d.String())
		})
	}
}

func TestTokenizeSegments(t *testing.T) {
	tk := newTokenizer(t, 0)

	testCases := []struct {
		desc     string
		line     string
		expected []string
	}{
		{"no separator", "8=FIX.4.4", nil},
		{"empty line", "", nil},
		{"trailing separator", dictionarytest.Line("8=FIX.4.4", "35=0"), []string{"BeginString", "MsgType"}},
		{"missing trailing separator", "8=FIX.4.4" + dictionarytest.SOH + "35=0", []string{"BeginString", "MsgType"}},
		{"missing equals", dictionarytest.Line("8=FIX.4.4", "garbage", "35=0"), []string{"BeginString", "MsgType"}},
		{"empty tag", dictionarytest.Line("=x", "35=0"), []string{"MsgType"}},
		{"empty value", dictionarytest.Line("55=", "35=0"), []string{"MsgType"}},
		{"value containing equals", dictionarytest.Line("58=a=b"), []string{"58"}},
		{"only separators", dictionarytest.SOH + dictionarytest.SOH, []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			tokens := tk.Tokenize(tc.line)
			if tc.expected == nil {
				assert.Nil(t, tokens)
				return
			}
			names := make([]string, 0, len(tokens))
			for _, tok := range tokens {
				names = append(names, tok.Name)
			}
			assert.Equal(t, tc.expected, names)
		})
	}
}

func TestTokenizeKeepsRawAndOrder(t *testing.T) {
	tk := newTokenizer(t, '|')
	tokens := tk.Tokenize("35=D|40=2|58=a=b|")
	require.Len(t, tokens, 3)

	assert.Equal(t, "35", tokens[0].Tag)
	assert.Equal(t, dictionary.TagMsgType, tokens[0].ID)
	assert.Equal(t, "D", tokens[0].Raw)
	assert.Equal(t, "ORDER SINGLE", tokens[0].Value)

	assert.Equal(t, "2", tokens[1].Raw)
	assert.Equal(t, "a=b", tokens[2].Value)
	assert.False(t, tokens[1].IsCounter())
}
