package patch

import "errors"

const (
	OperationAdd     = "add"
	OperationReplace = "replace"
	OperationRemove  = "remove"
)

type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

var (
	ErrMalformedArguments = errors.New("malformed tool arguments")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrPathNotAllowed     = errors.New("path not allowed")
)

// valuePattern is the only document path a commit may write.
const valuePattern = "/fields/*/value"
