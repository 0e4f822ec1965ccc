package history

import "errors"

var (
	ErrEmptyPath      = errors.New("field path is empty")
	ErrUnknownField   = errors.New("unknown clinical history field")
	ErrFieldKind      = errors.New("value does not match field kind")
	ErrPathConflict   = errors.New("field path crosses a non-mapping value")
	ErrInvalidTooth   = errors.New("invalid tooth number")
	ErrInvalidSurface = errors.New("invalid tooth surface")
	ErrUnknownTool    = errors.New("unknown odontogram tool")
	ErrNoteNotFound   = errors.New("follow-up note not found")
)
