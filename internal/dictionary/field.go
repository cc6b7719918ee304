package dictionary

import "strings"

// FieldID is the numeric tag of a FIX field.
type FieldID int

// Well-known field tags.
const (
	TagBeginString FieldID = 8
	TagBodyLength  FieldID = 9
	TagMsgType     FieldID = 35
	TagCheckSum    FieldID = 10
)

// FieldType is the upper-cased FIX data type name of a field.
type FieldType string

const (
	TypeString      FieldType = "STRING"
	TypeFloat       FieldType = "FLOAT"
	TypeAmt         FieldType = "AMT"
	TypePrice       FieldType = "PRICE"
	TypeQty         FieldType = "QTY"
	TypeInt         FieldType = "INT"
	TypeSeqNum      FieldType = "SEQNUM"
	TypeNumInGroup  FieldType = "NUMINGROUP"
	TypeLength      FieldType = "LENGTH"
	TypePriceOffset FieldType = "PRICEOFFSET"
)

// ParseFieldType normalizes a dictionary type attribute.
func ParseFieldType(s string) FieldType {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return TypeString
	}
	return FieldType(s)
}

// IsInteger reports whether values of the type decode to int64.
func (t FieldType) IsInteger() bool {
	switch t {
	case TypeInt, TypeSeqNum, TypeNumInGroup, TypeLength:
		return true
	default:
		return false
	}
}

// IsDecimal reports whether values of the type decode to a decimal.
func (t FieldType) IsDecimal() bool {
	switch t {
	case TypeFloat, TypeAmt, TypePrice, TypeQty, TypePriceOffset:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether the type belongs to the numeric set.
func (t FieldType) IsNumeric() bool {
	return t.IsInteger() || t.IsDecimal()
}

// EnumValue maps a raw wire value to its mnemonic.
type EnumValue struct {
	Raw      string
	Mnemonic string
}

// FieldDef describes one field of the dictionary.
type FieldDef struct {
	ID     FieldID
	Name   string
	Type   FieldType
	Values []EnumValue

	mnemonics map[string]string
}

// NewFieldDef builds a field definition with its enum lookup table.
func NewFieldDef(id FieldID, name string, typ FieldType, values ...EnumValue) *FieldDef {
	f := &FieldDef{
		ID:     id,
		Name:   name,
		Type:   typ,
		Values: values,
	}
	if len(values) != 0 {
		f.mnemonics = make(map[string]string, len(values))
		for _, v := range values {
			if _, ok := f.mnemonics[v.Raw]; !ok {
				f.mnemonics[v.Raw] = v.Mnemonic
			}
		}
	}
	return f
}

// Mnemonic returns the label declared for raw, if any.
func (f *FieldDef) Mnemonic(raw string) (string, bool) {
	if f == nil || f.mnemonics == nil {
		return "", false
	}
	m, ok := f.mnemonics[raw]
	return m, ok
}

// IsCounter reports whether the field counts repeating group entries.
func (f *FieldDef) IsCounter() bool {
	return f != nil && f.Type == TypeNumInGroup
}

// Catalog indexes field definitions by tag and by name.
type Catalog struct {
	byID   map[FieldID]*FieldDef
	byName map[string]*FieldDef
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byID:   make(map[FieldID]*FieldDef),
		byName: make(map[string]*FieldDef),
	}
}

// Add registers a field. It reports false when the tag is already taken.
func (c *Catalog) Add(f *FieldDef) bool {
	if _, ok := c.byID[f.ID]; ok {
		return false
	}
	c.byID[f.ID] = f
	if _, ok := c.byName[f.Name]; !ok {
		c.byName[f.Name] = f
	}
	return true
}

// Field returns the definition for a tag.
func (c *Catalog) Field(id FieldID) (*FieldDef, bool) {
	if c == nil {
		return nil, false
	}
	f, ok := c.byID[id]
	return f, ok
}

// FieldByName returns the definition for a field name.
func (c *Catalog) FieldByName(name string) (*FieldDef, bool) {
	if c == nil {
		return nil, false
	}
	f, ok := c.byName[name]
	return f, ok
}

// Len returns the number of fields in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byID)
}
