package record

import "errors"

// Build errors are returned while a record is being assembled.
var (
	ErrEmptyName       = errors.New("name must not be empty")
	ErrDuplicateField  = errors.New("duplicate field")
	ErrDuplicateCast   = errors.New("duplicate cast")
	ErrUnsupportedType = errors.New("unsupported primitive type")
	ErrNoChoices       = errors.New("choice cast without choices")
	ErrRoleConflict    = errors.New("role already set to a different label")
	ErrUnknownRole     = errors.New("unknown role")
	ErrUnknownTrait    = errors.New("unknown possible trait")
)

// Access errors are returned when reading a record.
var (
	ErrUnknownField    = errors.New("unknown field")
	ErrNotCollected    = errors.New("field not collected")
	ErrNoSuchTransform = errors.New("no such transform")
	ErrTransformType   = errors.New("transform has unexpected type")
)
