package exception

import "errors"

// Decode errors
var (
	ErrMissingMsgType     = errors.New("decode: missing MsgType field")
	ErrUnknownMsgType     = errors.New("decode: unknown MsgType")
	ErrGroupCountMismatch = errors.New("decode: group count mismatch")
	ErrNilDictionary      = errors.New("decode: nil dictionary")
	ErrInvalidSeparator   = errors.New("decode: invalid separator")
)
