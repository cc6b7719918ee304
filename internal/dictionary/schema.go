package dictionary

import (
	"sort"
	"strings"
)

// Reserved component names for the standard header and trailer blocks.
const (
	HeaderName  = "Header"
	TrailerName = "Trailer"
)

// counterPrefix is the conventional prefix of NUMINGROUP field names.
const counterPrefix = "No"

// GroupName derives a repeating group's name from its counter field name.
// "NoPartyIDs" names the group "PartyIDs"; names without the prefix are kept.
func GroupName(counter string) string {
	if len(counter) > len(counterPrefix) && strings.HasPrefix(counter, counterPrefix) {
		return counter[len(counterPrefix):]
	}
	return counter
}

// MemberKind tags the variant held by a Member.
type MemberKind uint8

const (
	MemberField MemberKind = iota + 1
	MemberComponent
	MemberGroup
)

func (k MemberKind) String() string {
	switch k {
	case MemberField:
		return "field"
	case MemberComponent:
		return "component"
	case MemberGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Member is one entry in the child list of a message, component or group.
// Field is set for field and group members (the group's counter), Name for
// component and group members.
type Member struct {
	Kind  MemberKind
	Field FieldID
	Name  string
}

// FieldRef references a field by tag.
func FieldRef(id FieldID) Member {
	return Member{Kind: MemberField, Field: id}
}

// ComponentRef references a component by name.
func ComponentRef(name string) Member {
	return Member{Kind: MemberComponent, Name: name}
}

// GroupRef references a repeating group and its counter field.
func GroupRef(name string, counter FieldID) Member {
	return Member{Kind: MemberGroup, Field: counter, Name: name}
}

// ComponentDef is a named, reusable block of members.
type ComponentDef struct {
	Name    string
	Members []Member
}

// GroupDef describes the shape of one repetition of a repeating group.
type GroupDef struct {
	Name    string
	Counter FieldID
	Members []Member
}

// MessageDef is a message body keyed by its MsgType code.
type MessageDef struct {
	Type     string
	Name     string
	Category string
	Members  []Member
}

// Version identifies the FIX version a dictionary describes.
type Version struct {
	Type        string
	Major       string
	Minor       string
	ServicePack string
}

func (v Version) String() string {
	typ := v.Type
	if typ == "" {
		typ = "FIX"
	}
	s := typ + "." + v.Major + "." + v.Minor
	if v.ServicePack != "" && v.ServicePack != "0" {
		s += "SP" + v.ServicePack
	}
	return s
}

// Dictionary is the loaded schema graph. It is read-only after loading.
type Dictionary struct {
	Version    Version
	Fields     *Catalog
	components map[string]*ComponentDef
	groups     map[string]*GroupDef
	messages   map[string]*MessageDef
	issues     []error
}

// New creates an empty dictionary around a catalog.
func New(catalog *Catalog) *Dictionary {
	if catalog == nil {
		catalog = NewCatalog()
	}
	return &Dictionary{
		Fields:     catalog,
		components: make(map[string]*ComponentDef),
		groups:     make(map[string]*GroupDef),
		messages:   make(map[string]*MessageDef),
	}
}

// AddComponent registers a component, replacing any previous definition.
func (d *Dictionary) AddComponent(c *ComponentDef) {
	d.components[c.Name] = c
}

// AddMessage registers a message, replacing any previous definition.
func (d *Dictionary) AddMessage(m *MessageDef) {
	d.messages[m.Type] = m
}

// AddGroup registers a group. A second definition with the same name is
// merged into the first: members not yet present are appended.
func (d *Dictionary) AddGroup(g *GroupDef) *GroupDef {
	prev, ok := d.groups[g.Name]
	if !ok {
		d.groups[g.Name] = g
		return g
	}
	seen := make(map[Member]struct{}, len(prev.Members))
	for _, m := range prev.Members {
		seen[m] = struct{}{}
	}
	for _, m := range g.Members {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		prev.Members = append(prev.Members, m)
	}
	return prev
}

// Component looks up a component by name.
func (d *Dictionary) Component(name string) (*ComponentDef, bool) {
	c, ok := d.components[name]
	return c, ok
}

// Group looks up a group by name.
func (d *Dictionary) Group(name string) (*GroupDef, bool) {
	g, ok := d.groups[name]
	return g, ok
}

// Message looks up a message by its MsgType code.
func (d *Dictionary) Message(msgType string) (*MessageDef, bool) {
	m, ok := d.messages[msgType]
	return m, ok
}

// Issues returns the non-fatal inconsistencies found while loading.
func (d *Dictionary) Issues() []error {
	return d.issues
}

// ComponentNames returns component names in sorted order.
func (d *Dictionary) ComponentNames() []string {
	return sortedKeys(d.components)
}

// GroupNames returns group names in sorted order.
func (d *Dictionary) GroupNames() []string {
	return sortedKeys(d.groups)
}

// MessageTypes returns MsgType codes in sorted order.
func (d *Dictionary) MessageTypes() []string {
	return sortedKeys(d.messages)
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
