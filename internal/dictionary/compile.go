package dictionary

import (
	"fix2json/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// maxDepth bounds component nesting while flattening.
const maxDepth = 64

// Context is the flattened membership of a message, component or group:
// every field reachable through direct field members and (recursively)
// component members. Fields of nested groups are not part of it; the nested
// groups themselves are recorded by name.
type Context struct {
	Name   string
	fields map[string]struct{}
	groups map[string]*GroupDef
}

// NewContext builds a context from explicit field names and nested groups.
func NewContext(name string, fields []string, groups ...*GroupDef) *Context {
	c := newContext(name)
	for _, f := range fields {
		c.fields[f] = struct{}{}
	}
	for _, g := range groups {
		if g != nil {
			c.groups[g.Name] = g
		}
	}
	return c
}

func newContext(name string) *Context {
	return &Context{
		Name:   name,
		fields: make(map[string]struct{}),
		groups: make(map[string]*GroupDef),
	}
}

// Has reports whether the named field belongs to the context.
func (c *Context) Has(field string) bool {
	if c == nil {
		return false
	}
	_, ok := c.fields[field]
	return ok
}

// Group returns the nested group declared in the context.
func (c *Context) Group(name string) (*GroupDef, bool) {
	if c == nil {
		return nil, false
	}
	g, ok := c.groups[name]
	return g, ok
}

// Len returns the number of member fields.
func (c *Context) Len() int {
	if c == nil {
		return 0
	}
	return len(c.fields)
}

// FieldNames returns the member fields in sorted order.
func (c *Context) FieldNames() []string {
	if c == nil {
		return nil
	}
	return sortedKeys(c.fields)
}

// GroupNames returns the nested group names in sorted order.
func (c *Context) GroupNames() []string {
	if c == nil {
		return nil
	}
	return sortedKeys(c.groups)
}

// Compiled holds the flattened contexts of a dictionary. It is never mutated
// after Compile returns and may be shared between goroutines.
type Compiled struct {
	Components map[string]*Context
	Groups     map[string]*Context
	Messages   map[string]*Context
	Issues     []error
}

// Component returns the flattened context of a component.
func (c *Compiled) Component(name string) (*Context, bool) {
	ctx, ok := c.Components[name]
	return ctx, ok
}

// Group returns the flattened context of a group.
func (c *Compiled) Group(name string) (*Context, bool) {
	ctx, ok := c.Groups[name]
	return ctx, ok
}

// Message returns the flattened context of a message by MsgType code.
func (c *Compiled) Message(msgType string) (*Context, bool) {
	ctx, ok := c.Messages[msgType]
	return ctx, ok
}

// Compile flattens every component, group and message of the dictionary.
func Compile(dict *Dictionary) *Compiled {
	c := NewCompiler(dict)
	for _, name := range dict.ComponentNames() {
		c.Component(name)
	}
	for _, name := range dict.GroupNames() {
		c.Group(name)
	}
	for _, msgType := range dict.MessageTypes() {
		c.Message(msgType)
	}
	if len(c.issues) != 0 {
		logs.Warnf("dictionary compiled with %d issue(s)", len(c.issues))
	}
	return &Compiled{
		Components: c.components,
		Groups:     c.groups,
		Messages:   c.messages,
		Issues:     c.issues,
	}
}

// Compiler flattens contexts on demand and memoizes them by name.
// It is not safe for concurrent use; share the result of Compile instead.
type Compiler struct {
	dict       *Dictionary
	components map[string]*Context
	groups     map[string]*Context
	messages   map[string]*Context
	inProgress map[string]struct{}
	reported   map[string]struct{}
	issues     []error
}

// NewCompiler creates a compiler for dict.
func NewCompiler(dict *Dictionary) *Compiler {
	return &Compiler{
		dict:       dict,
		components: make(map[string]*Context),
		groups:     make(map[string]*Context),
		messages:   make(map[string]*Context),
		inProgress: make(map[string]struct{}),
		reported:   make(map[string]struct{}),
	}
}

// Issues returns the inconsistencies reported so far.
func (c *Compiler) Issues() []error {
	return c.issues
}

// Component returns the flattened context of a component.
func (c *Compiler) Component(name string) (*Context, bool) {
	return c.component(name, 0)
}

// Group returns the flattened context of a group.
func (c *Compiler) Group(name string) (*Context, bool) {
	if ctx, ok := c.groups[name]; ok {
		return ctx, true
	}
	def, ok := c.dict.Group(name)
	if !ok {
		return nil, false
	}
	ctx := newContext(name)
	c.collect(name, def.Members, ctx, 0)
	c.groups[name] = ctx
	return ctx, true
}

// Message returns the flattened context of a message, header and trailer
// included.
func (c *Compiler) Message(msgType string) (*Context, bool) {
	if ctx, ok := c.messages[msgType]; ok {
		return ctx, true
	}
	def, ok := c.dict.Message(msgType)
	if !ok {
		return nil, false
	}
	members := make([]Member, 0, len(def.Members)+2)
	if _, ok := c.dict.Component(HeaderName); ok {
		members = append(members, ComponentRef(HeaderName))
	}
	members = append(members, def.Members...)
	if _, ok := c.dict.Component(TrailerName); ok {
		members = append(members, ComponentRef(TrailerName))
	}
	ctx := newContext(def.Name)
	c.collect(def.Name, members, ctx, 0)
	c.messages[msgType] = ctx
	return ctx, true
}

func (c *Compiler) component(name string, depth int) (*Context, bool) {
	if ctx, ok := c.components[name]; ok {
		return ctx, true
	}
	def, ok := c.dict.Component(name)
	if !ok {
		return nil, false
	}
	if _, busy := c.inProgress[name]; busy {
		c.report(errors.Wrapf(exception.ErrCyclicDefinition, "component %s", name))
		return nil, false
	}
	if depth > maxDepth {
		c.report(errors.Wrapf(exception.ErrDefinitionTooDeep, "component %s at depth %d", name, depth))
		return nil, false
	}

	c.inProgress[name] = struct{}{}
	ctx := newContext(name)
	c.collect(name, def.Members, ctx, depth)
	delete(c.inProgress, name)

	c.components[name] = ctx
	return ctx, true
}

func (c *Compiler) collect(owner string, members []Member, dst *Context, depth int) {
	for _, m := range members {
		switch m.Kind {
		case MemberField:
			if f, ok := c.dict.Fields.Field(m.Field); ok {
				dst.fields[f.Name] = struct{}{}
			}
		case MemberGroup:
			g, ok := c.dict.Group(m.Name)
			if !ok {
				c.report(errors.Wrapf(exception.ErrUnknownGroup, "%s references group %s", owner, m.Name))
				continue
			}
			dst.groups[g.Name] = g
		case MemberComponent:
			if _, ok := c.dict.Component(m.Name); !ok {
				c.report(errors.Wrapf(exception.ErrUnknownComponent, "%s references component %s", owner, m.Name))
				continue
			}
			sub, ok := c.component(m.Name, depth+1)
			if !ok {
				continue
			}
			for f := range sub.fields {
				dst.fields[f] = struct{}{}
			}
			for n, g := range sub.groups {
				dst.groups[n] = g
			}
		}
	}
}

func (c *Compiler) report(err error) {
	msg := err.Error()
	if _, ok := c.reported[msg]; ok {
		return
	}
	c.reported[msg] = struct{}{}
	logs.Warnf("dictionary: %+v", err)
	c.issues = append(c.issues, err)
}
