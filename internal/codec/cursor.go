package codec

// cursor consumes tokens from the front and can give back the last one.
type cursor struct {
	tokens []Token
	pos    int
}

func newCursor(tokens []Token) *cursor {
	return &cursor{tokens: tokens}
}

func (c *cursor) next() (Token, bool) {
	if c.pos >= len(c.tokens) {
		return Token{}, false
	}
	t := c.tokens[c.pos]
	c.pos++
	return t, true
}

func (c *cursor) unread() {
	if c.pos > 0 {
		c.pos--
	}
}

func (c *cursor) rest() []Token {
	return c.tokens[c.pos:]
}
