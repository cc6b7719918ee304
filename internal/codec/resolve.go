package codec

import (
	"fmt"

	"fix2json/internal/dictionary"
	"fix2json/internal/model"
	"fix2json/pkg/exception"
)

// Resolve rebuilds the entries of one repeating group. tokens must start
// right after the group's counter field. It returns the entries and the
// tokens that belong to the enclosing context.
func (d *Decoder) Resolve(tokens []Token, group *dictionary.Context) ([]*model.Record, []Token, error) {
	cur := newCursor(tokens)
	members, err := d.resolve(cur, group)
	if err != nil {
		return nil, nil, err
	}
	return members, cur.rest(), nil
}

// resolve consumes one group. The first field seen is the anchor: every
// later occurrence of it starts a new entry. The group ends at the first
// field that is not a member of its context; that field is given back.
func (d *Decoder) resolve(cur *cursor, group *dictionary.Context) ([]*model.Record, error) {
	var (
		members []*model.Record
		member  = model.NewRecord()
		anchor  string
	)

	for first := true; ; first = false {
		t, ok := cur.next()
		if !ok {
			break
		}

		switch {
		case !first && t.Name == anchor:
			members = appendMember(members, member)
			member = model.NewRecord()
			member.Set(t.Name, t.Value)
		case t.IsCounter() && declaresGroup(group, t.Name):
			if err := d.nest(cur, member, t, group); err != nil {
				return nil, err
			}
		case !group.Has(t.Name):
			cur.unread()
			return appendMember(members, member), nil
		default:
			member.Set(t.Name, t.Value)
		}

		if first {
			anchor = t.Name
		}
	}

	return appendMember(members, member), nil
}

// nest writes a counter and the group it opens into dst.
func (d *Decoder) nest(cur *cursor, dst *model.Record, counter Token, scope *dictionary.Context) error {
	dst.Set(counter.Name, counter.Value)
	name := dictionary.GroupName(counter.Name)

	if n, ok := counter.Value.(int64); ok && n == 0 {
		dst.Set(name, []*model.Record{})
		return nil
	}

	members, err := d.resolve(cur, d.groupContext(scope, name))
	if err != nil {
		return err
	}
	if members == nil {
		members = []*model.Record{}
	}

	if d.opts.CheckGroupCounts {
		if n, ok := counter.Value.(int64); !ok || n != int64(len(members)) {
			return &LineError{
				Err:    exception.ErrGroupCountMismatch,
				Detail: fmt.Sprintf("%s=%v parsed=%d", counter.Name, counter.Value, len(members)),
			}
		}
	}

	dst.Set(name, members)
	return nil
}

// groupContext finds the context of a group opened inside scope, falling
// back to the dictionary-wide definition of the same name.
func (d *Decoder) groupContext(scope *dictionary.Context, name string) *dictionary.Context {
	if g, ok := scope.Group(name); ok {
		if ctx, ok := d.compiled.Group(g.Name); ok {
			return ctx
		}
	}
	if ctx, ok := d.compiled.Group(name); ok {
		return ctx
	}
	return dictionary.NewContext(name, nil)
}

func declaresGroup(scope *dictionary.Context, counter string) bool {
	_, ok := scope.Group(dictionary.GroupName(counter))
	return ok
}

func appendMember(members []*model.Record, member *model.Record) []*model.Record {
	if member.Len() == 0 {
		return members
	}
	return append(members, member)
}
