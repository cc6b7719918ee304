package codec

import (
	"fix2json/internal/dictionary"
	"fix2json/internal/model"
	"fix2json/pkg/exception"
)

// Assemble builds the record of one message from its tokens. Scalars are
// written in arrival order; counter fields open repeating groups.
func (d *Decoder) Assemble(tokens []Token) (*Message, error) {
	msgType, ok := findMsgType(tokens)
	if !ok {
		return nil, &LineError{Err: exception.ErrMissingMsgType}
	}
	def, ok := d.dict.Message(msgType)
	if !ok {
		return nil, &LineError{Err: exception.ErrUnknownMsgType, Detail: "MsgType=" + msgType}
	}
	scope, _ := d.compiled.Message(msgType)

	rec := model.NewRecord()
	cur := newCursor(tokens)
	for {
		t, ok := cur.next()
		if !ok {
			break
		}
		if t.IsCounter() {
			if err := d.nest(cur, rec, t, scope); err != nil {
				return nil, err
			}
			continue
		}
		rec.Set(t.Name, t.Value)
	}

	return &Message{
		Type:   msgType,
		Name:   def.Name,
		Record: rec,
	}, nil
}

func findMsgType(tokens []Token) (string, bool) {
	for _, t := range tokens {
		if t.ID == dictionary.TagMsgType {
			return t.Raw, true
		}
	}
	return "", false
}
