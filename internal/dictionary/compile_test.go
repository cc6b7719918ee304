package dictionary_test

import (
	"fmt"
	"testing"

	"fix2json/internal/dictionary"
	"fix2json/internal/dictionary/dictionarytest"
	"fix2json/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileContexts(t *testing.T) {
	dict := dictionarytest.Must(dictionarytest.Load())
	compiled := dictionary.Compile(dict)
	assert.Empty(t, compiled.Issues)

	testCases := []struct {
		desc   string
		lookup func() (*dictionary.Context, bool)
		fields []string
		groups []string
	}{
		{
			desc:   "component",
			lookup: func() (*dictionary.Context, bool) { return compiled.Component("Instrument") },
			fields: []string{"Symbol"},
			groups: []string{},
		},
		{
			desc:   "component holding only a group",
			lookup: func() (*dictionary.Context, bool) { return compiled.Component("Parties") },
			fields: []string{},
			groups: []string{"PartyIDs"},
		},
		{
			desc:   "group with nested group",
			lookup: func() (*dictionary.Context, bool) { return compiled.Group("PartyIDs") },
			fields: []string{"PartyID", "PartyIDSource", "PartyRole"},
			groups: []string{"PartySubIDs"},
		},
		{
			desc:   "group inside a message",
			lookup: func() (*dictionary.Context, bool) { return compiled.Group("MDEntries") },
			fields: []string{"MDEntryPx", "MDEntrySize", "MDEntryType"},
			groups: []string{"PartyIDs"},
		},
		{
			desc:   "message with header and trailer",
			lookup: func() (*dictionary.Context, bool) { return compiled.Message("0") },
			fields: []string{
				"BeginString", "BodyLength", "CheckSum", "MsgSeqNum", "MsgType",
				"SenderCompID", "SendingTime", "TargetCompID", "TestReqID",
			},
			groups: []string{"Hops"},
		},
		{
			desc:   "message flattening components",
			lookup: func() (*dictionary.Context, bool) { return compiled.Message("D") },
			fields: []string{
				"BeginString", "BodyLength", "CheckSum", "ClOrdID", "MsgSeqNum", "MsgType",
				"OrdType", "OrderQty", "Price", "SenderCompID", "SendingTime", "Side",
				"Symbol", "TargetCompID", "TransactTime",
			},
			groups: []string{"Hops", "PartyIDs"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			ctx, ok := tc.lookup()
			require.True(t, ok)
			assert.Equal(t, tc.fields, ctx.FieldNames())
			assert.Equal(t, tc.groups, ctx.GroupNames())
			assert.Equal(t, len(tc.fields), ctx.Len())
		})
	}
}

func TestCompileExcludesGroupFields(t *testing.T) {
	dict := dictionarytest.Must(dictionarytest.Load())
	compiled := dictionary.Compile(dict)

	ctx, ok := compiled.Message("D")
	require.True(t, ok)
	for _, name := range []string{"PartyID", "PartySubID", "NoPartyIDs", "HopCompID"} {
		assert.Falsef(t, ctx.Has(name), "%s leaked into message context", name)
	}

	_, ok = compiled.Message("Z")
	assert.False(t, ok)
}

func TestCompileIdempotent(t *testing.T) {
	dict := dictionarytest.Must(dictionarytest.Load())
	assert.Equal(t, dictionary.Compile(dict), dictionary.Compile(dict))

	c := dictionary.NewCompiler(dict)
	first, ok := c.Group("PartyIDs")
	require.True(t, ok)
	second, ok := c.Group("PartyIDs")
	require.True(t, ok)
	assert.Same(t, first, second)
}

func cycleDictionary() *dictionary.Dictionary {
	catalog := dictionary.NewCatalog()
	catalog.Add(dictionary.NewFieldDef(1, "A", dictionary.TypeString))
	catalog.Add(dictionary.NewFieldDef(2, "B", dictionary.TypeString))

	dict := dictionary.New(catalog)
	dict.AddComponent(&dictionary.ComponentDef{Name: "X", Members: []dictionary.Member{
		dictionary.FieldRef(1),
		dictionary.ComponentRef("Y"),
	}})
	dict.AddComponent(&dictionary.ComponentDef{Name: "Y", Members: []dictionary.Member{
		dictionary.FieldRef(2),
		dictionary.ComponentRef("X"),
	}})
	dict.AddMessage(&dictionary.MessageDef{Type: "C", Name: "Cycle", Members: []dictionary.Member{
		dictionary.ComponentRef("X"),
	}})
	return dict
}

func TestCompileCycle(t *testing.T) {
	compiled := dictionary.Compile(cycleDictionary())

	require.Len(t, compiled.Issues, 1)
	assert.ErrorContains(t, compiled.Issues[0], exception.ErrCyclicDefinition.Error())

	x, ok := compiled.Component("X")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, x.FieldNames())

	msg, ok := compiled.Message("C")
	require.True(t, ok)
	assert.True(t, msg.Has("A"))
}

func TestCompileUnknownReferences(t *testing.T) {
	catalog := dictionary.NewCatalog()
	catalog.Add(dictionary.NewFieldDef(1, "A", dictionary.TypeString))

	dict := dictionary.New(catalog)
	dict.AddMessage(&dictionary.MessageDef{Type: "U", Name: "Unknowns", Members: []dictionary.Member{
		dictionary.FieldRef(1),
		dictionary.ComponentRef("Ghost"),
		dictionary.GroupRef("Phantoms", 99),
	}})

	compiled := dictionary.Compile(dict)
	require.Len(t, compiled.Issues, 2)
	assert.ErrorContains(t, compiled.Issues[0], exception.ErrUnknownComponent.Error())
	assert.ErrorContains(t, compiled.Issues[1], exception.ErrUnknownGroup.Error())

	msg, ok := compiled.Message("U")
	require.True(t, ok)
	assert.Equal(t, []string{"A"}, msg.FieldNames())
	assert.Empty(t, msg.GroupNames())
}

func TestCompileTooDeep(t *testing.T) {
	catalog := dictionary.NewCatalog()
	dict := dictionary.New(catalog)
	const chain = 80
	for i := 0; i < chain; i++ {
		id := dictionary.FieldID(i + 1)
		catalog.Add(dictionary.NewFieldDef(id, fmt.Sprintf("F%d", i), dictionary.TypeString))
		members := []dictionary.Member{dictionary.FieldRef(id)}
		if i+1 < chain {
			members = append(members, dictionary.ComponentRef(fmt.Sprintf("C%d", i+1)))
		}
		dict.AddComponent(&dictionary.ComponentDef{Name: fmt.Sprintf("C%d", i), Members: members})
	}

	c := dictionary.NewCompiler(dict)
	ctx, ok := c.Component("C0")
	require.True(t, ok)
	require.NotEmpty(t, c.Issues())
	assert.ErrorContains(t, c.Issues()[0], exception.ErrDefinitionTooDeep.Error())
	assert.True(t, ctx.Has("F0"))
	assert.False(t, ctx.Has(fmt.Sprintf("F%d", chain-1)))
}

func TestContextNilSafe(t *testing.T) {
	var ctx *dictionary.Context
	assert.False(t, ctx.Has("A"))
	assert.Zero(t, ctx.Len())
	assert.Nil(t, ctx.FieldNames())
	_, ok := ctx.Group("G")
	assert.False(t, ok)
}
