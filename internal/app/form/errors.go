package form

import "errors"

var (
	// ErrUnknownField indicates a field name no section declares.
	ErrUnknownField = errors.New("unknown form field")

	// ErrNotEditing indicates an edit-only operation on a create form.
	ErrNotEditing = errors.New("form is not editing an existing record")
)

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}
