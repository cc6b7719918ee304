package exception

import "errors"

// Dictionary errors
var (
	ErrDictionaryMalformed    = errors.New("dictionary: malformed document")
	ErrDictionaryEmpty        = errors.New("dictionary: no fields defined")
	ErrDictionaryFieldNumber  = errors.New("dictionary: invalid field number")
	ErrDictionaryDuplicateTag = errors.New("dictionary: duplicate field number")
	ErrUnknownField           = errors.New("dictionary: unknown field")
	ErrUnknownComponent       = errors.New("dictionary: unknown component")
	ErrUnknownGroup           = errors.New("dictionary: unknown group")
	ErrCyclicDefinition       = errors.New("dictionary: cyclic definition")
	ErrDefinitionTooDeep      = errors.New("dictionary: definition nested too deep")
)
