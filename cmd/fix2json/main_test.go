package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fix2json/internal/dictionary/dictionarytest"
	"fix2json/internal/output"
	"fix2json/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	testCases := []struct {
		desc   string
		args   []string
		check  func(t *testing.T, o options)
		failed error
	}{
		{
			desc: "dictionary only",
			args: []string{"fix2json", "FIX44.xml"},
			check: func(t *testing.T, o options) {
				assert.Equal(t, "FIX44.xml", o.config.Dictionary)
				assert.Empty(t, o.config.Input)
				assert.Equal(t, output.FormatJSON, o.config.Output.Format)
				assert.False(t, o.config.Output.Pretty)
			},
		},
		{
			desc: "pretty with input",
			args: []string{"fix2json", "-p", "FIX44.xml", "messages.log"},
			check: func(t *testing.T, o options) {
				assert.Equal(t, "FIX44.xml", o.config.Dictionary)
				assert.Equal(t, "messages.log", o.config.Input)
				assert.True(t, o.config.Output.Pretty)
			},
		},
		{
			desc: "yaml binary name",
			args: []string{"/usr/local/bin/fix2yaml", "FIX44.xml"},
			check: func(t *testing.T, o options) {
				assert.Equal(t, output.FormatYAML, o.config.Output.Format)
			},
		},
		{
			desc: "flags override",
			args: []string{"fix2yaml", "-format", "json", "-sep", "|", "-strict", "-workers", "2", "-batch", "8", "-q", "-pg", "postgres://db/fix", "FIX44.xml"},
			check: func(t *testing.T, o options) {
				assert.Equal(t, output.FormatJSON, o.config.Output.Format)
				assert.Equal(t, byte('|'), o.config.Decoder.Separator)
				assert.True(t, o.config.Decoder.CheckGroupCounts)
				assert.Equal(t, 2, o.config.Pipeline.Workers)
				assert.Equal(t, 8, o.config.Pipeline.BatchSize)
				assert.True(t, o.config.Output.Disabled)
				require.NotNil(t, o.config.Postgres)
				assert.Equal(t, "postgres://db/fix", o.config.Postgres.Conn.ConnString)
			},
		},
		{
			desc:   "missing dictionary",
			args:   []string{"fix2json"},
			failed: exception.ErrInvalidArgument,
		},
		{
			desc:   "too many arguments",
			args:   []string{"fix2json", "a.xml", "b.log", "c.log"},
			failed: exception.ErrInvalidArgument,
		},
		{
			desc:   "bad separator",
			args:   []string{"fix2json", "-sep", "ab", "a.xml"},
			failed: exception.ErrInvalidSeparator,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			var stderr bytes.Buffer
			o, err := parseArgs(tc.args, &stderr)
			if tc.failed != nil {
				assert.ErrorContains(t, err, tc.failed.Error())
				return
			}
			require.NoError(t, err)
			tc.check(t, o)
		})
	}
}

func TestParseArgsPostgresKeepsConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fix2json.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"postgres": {"host": "db", "sslMode": "require", "params": {"application_name": "audit"}, "batchSize": 50}
	}`), 0o644))

	o, err := parseArgs([]string{"fix2json", "-config", path, "-pg", "postgres://replica/fix", "FIX44.xml"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.NotNil(t, o.config.Postgres)
	assert.Equal(t, "postgres://replica/fix", o.config.Postgres.Conn.ConnString)
	assert.Equal(t, "db", o.config.Postgres.Conn.Host)
	assert.Equal(t, "require", o.config.Postgres.Conn.SSLMode)
	assert.Equal(t, map[string]string{"application_name": "audit"}, o.config.Postgres.Conn.Params)
	assert.Equal(t, 50, o.config.Postgres.Sink.BatchSize)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	dictPath := filepath.Join(dir, "FIX44.xml")
	require.NoError(t, os.WriteFile(dictPath, []byte(dictionarytest.XML), 0o644))

	input := strings.Join([]string{
		"10:00:00 session banner",
		dictionarytest.Line("8=FIX.4.4", "35=0", "34=1"),
		dictionarytest.Line("8=FIX.4.4", "35=ZZ"),
		dictionarytest.Line("8=FIX.4.4", "35=D", "11=ORD-1", "40=2"),
	}, "\n")
	msgPath := filepath.Join(dir, "messages.log")
	require.NoError(t, os.WriteFile(msgPath, []byte(input), 0o644))

	var stdout bytes.Buffer
	require.NoError(t, run([]string{"fix2json", "-stats", dictPath, msgPath}, &stdout))
	assert.Equal(t,
		`{"BeginString":"FIX.4.4","MsgType":"HEARTBEAT","MsgSeqNum":1}`+"\n"+
			`{"BeginString":"FIX.4.4","MsgType":"ORDER SINGLE","ClOrdID":"ORD-1","OrdType":"Limit"}`+"\n",
		stdout.String())
}

func TestRunMissingDictionary(t *testing.T) {
	var stdout bytes.Buffer
	err := run([]string{"fix2json", filepath.Join(t.TempDir(), "missing.xml")}, &stdout)
	assert.Error(t, err)
	assert.Empty(t, stdout.String())
}
