package conn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionDSN(t *testing.T) {
	testCases := []struct {
		desc     string
		opt      Option
		expected string
	}{
		{
			desc:     "defaults",
			opt:      Option{},
			expected: "postgres://localhost:5432?sslmode=disable",
		},
		{
			desc: "full",
			opt: Option{
				Host:     "db",
				Port:     6543,
				User:     "fix",
				Password: "s3cret",
				Database: "audit",
				SSLMode:  "require",
				Params:   map[string]string{"application_name": "fix2json", "": "ignored"},
			},
			expected: "postgres://fix:s3cret@db:6543/audit?application_name=fix2json&sslmode=require",
		},
		{
			desc:     "user without password",
			opt:      Option{User: "fix", Database: "audit"},
			expected: "postgres://fix@localhost:5432/audit?sslmode=disable",
		},
		{
			desc:     "connection string wins",
			opt:      Option{Host: "ignored", ConnString: "host=db user=fix"},
			expected: "host=db user=fix",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			dsn, err := tc.opt.DSN()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, dsn)
		})
	}
}

func TestOptionDSNInvalidPort(t *testing.T) {
	_, err := Option{Port: 70000}.DSN()
	assert.Error(t, err)
}

func TestOptionRedacted(t *testing.T) {
	assert.Equal(t, "postgres://fix:xxxxx@db:5432/audit?sslmode=disable",
		Option{Host: "db", User: "fix", Password: "s3cret", Database: "audit"}.Redacted())
	assert.Equal(t, "postgres://fix:xxxxx@db/audit",
		Option{ConnString: "postgres://fix:s3cret@db/audit"}.Redacted())
	assert.Equal(t, "<dsn>", Option{ConnString: "host=db password=s3cret"}.Redacted())
}

func TestClientNil(t *testing.T) {
	var c *Client
	assert.Nil(t, c.DB())
	assert.NoError(t, c.Close())
}
