package dictionary

import (
	"io"
	"os"
	"strconv"
	"strings"

	"fix2json/pkg/exception"

	"github.com/agentflare-ai/go-xmldom"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const rootElement = "fix"

// LoadFile reads a QuickFIX-style XML data dictionary from disk.
func LoadFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open dictionary %s", path)
	}
	defer f.Close()

	dict, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load dictionary %s", path)
	}
	return dict, nil
}

// Load parses a QuickFIX-style XML data dictionary. Structural problems of the
// document are fatal; references to undefined fields are recorded as issues
// and skipped.
func Load(r io.Reader) (*Dictionary, error) {
	doc, err := xmldom.Decode(r)
	if err != nil {
		return nil, errors.Wrap(exception.ErrDictionaryMalformed, err.Error())
	}
	if doc == nil {
		return nil, errors.Wrap(exception.ErrDictionaryMalformed, "empty document")
	}
	root := doc.DocumentElement()
	if root == nil {
		return nil, errors.Wrap(exception.ErrDictionaryMalformed, "no root element")
	}
	if name := localName(root); name != rootElement {
		return nil, errors.Wrapf(exception.ErrDictionaryMalformed, "root element <%s>, expected <%s>", name, rootElement)
	}

	catalog, err := buildCatalog(childrenOf(root, "fields"))
	if err != nil {
		return nil, err
	}

	b := &builder{dict: New(catalog)}
	b.dict.Version = Version{
		Type:        attr(root, "type"),
		Major:       attr(root, "major"),
		Minor:       attr(root, "minor"),
		ServicePack: attr(root, "servicepack"),
	}

	if header, ok := firstChild(root, "header"); ok {
		b.dict.AddComponent(&ComponentDef{Name: HeaderName, Members: b.members(HeaderName, elements(header))})
	}
	if trailer, ok := firstChild(root, "trailer"); ok {
		b.dict.AddComponent(&ComponentDef{Name: TrailerName, Members: b.members(TrailerName, elements(trailer))})
	}
	for _, c := range childrenOf(root, "components") {
		if localName(c) != "component" {
			continue
		}
		name := attr(c, "name")
		b.dict.AddComponent(&ComponentDef{Name: name, Members: b.members(name, elements(c))})
	}
	for _, m := range childrenOf(root, "messages") {
		if localName(m) != "message" {
			continue
		}
		name, msgType := attr(m, "name"), attr(m, "msgtype")
		if msgType == "" {
			b.report(errors.Wrapf(exception.ErrDictionaryMalformed, "message %s has no msgtype", name))
			continue
		}
		b.dict.AddMessage(&MessageDef{
			Type:     msgType,
			Name:     name,
			Category: attr(m, "msgcat"),
			Members:  b.members(name, elements(m)),
		})
	}

	logs.Infof("dictionary %s loaded: fields=%d messages=%d components=%d groups=%d issues=%d",
		b.dict.Version, catalog.Len(), len(b.dict.messages), len(b.dict.components), len(b.dict.groups), len(b.dict.issues))
	return b.dict, nil
}

func buildCatalog(fields []xmldom.Element) (*Catalog, error) {
	catalog := NewCatalog()
	for _, el := range fields {
		if localName(el) != "field" {
			continue
		}
		number, name := attr(el, "number"), attr(el, "name")
		num, err := strconv.Atoi(number)
		if err != nil || num <= 0 {
			return nil, errors.Wrapf(exception.ErrDictionaryFieldNumber, "field %s number %q", name, number)
		}
		if name == "" {
			return nil, errors.Wrapf(exception.ErrDictionaryMalformed, "field %d has no name", num)
		}
		var values []EnumValue
		for _, v := range elements(el) {
			if localName(v) != "value" {
				continue
			}
			values = append(values, EnumValue{
				Raw:      attr(v, "enum"),
				Mnemonic: strings.ReplaceAll(attr(v, "description"), "_", " "),
			})
		}
		if !catalog.Add(NewFieldDef(FieldID(num), name, ParseFieldType(attr(el, "type")), values...)) {
			return nil, errors.Wrapf(exception.ErrDictionaryDuplicateTag, "field %s number %d", name, num)
		}
	}
	if catalog.Len() == 0 {
		return nil, exception.ErrDictionaryEmpty
	}
	return catalog, nil
}

type builder struct {
	dict *Dictionary
}

func (b *builder) report(err error) {
	logs.Warnf("dictionary: %+v", err)
	b.dict.issues = append(b.dict.issues, err)
}

// members converts the <field>, <component> and <group> children of a
// definition. Other elements are ignored.
func (b *builder) members(owner string, in []xmldom.Element) []Member {
	out := make([]Member, 0, len(in))
	for _, el := range in {
		name := attr(el, "name")
		switch localName(el) {
		case "field":
			f, ok := b.dict.Fields.FieldByName(name)
			if !ok {
				b.report(errors.Wrapf(exception.ErrUnknownField, "%s references field %s", owner, name))
				continue
			}
			out = append(out, FieldRef(f.ID))
		case "component":
			out = append(out, ComponentRef(name))
		case "group":
			counter, ok := b.dict.Fields.FieldByName(name)
			if !ok {
				b.report(errors.Wrapf(exception.ErrUnknownField, "%s references group counter %s", owner, name))
				continue
			}
			g := &GroupDef{Name: GroupName(name), Counter: counter.ID}
			g.Members = b.members(g.Name, elements(el))
			g = b.dict.AddGroup(g)
			out = append(out, GroupRef(g.Name, counter.ID))
		}
	}
	return out
}

// elements returns the element children of el.
func elements(el xmldom.Element) []xmldom.Element {
	children := el.Children()
	out := make([]xmldom.Element, 0, children.Length())
	for i := uint(0); i < children.Length(); i++ {
		if child := children.Item(i); child != nil {
			out = append(out, child)
		}
	}
	return out
}

// childrenOf returns the element children of every direct child of el named
// name, e.g. all <field> elements under <fields>.
func childrenOf(el xmldom.Element, name string) []xmldom.Element {
	var out []xmldom.Element
	for _, child := range elements(el) {
		if localName(child) == name {
			out = append(out, elements(child)...)
		}
	}
	return out
}

func firstChild(el xmldom.Element, name string) (xmldom.Element, bool) {
	for _, child := range elements(el) {
		if localName(child) == name {
			return child, true
		}
	}
	return nil, false
}

func localName(el xmldom.Element) string {
	return string(el.LocalName())
}

func attr(el xmldom.Element, name string) string {
	return strings.TrimSpace(string(el.GetAttribute(xmldom.DOMString(name))))
}
