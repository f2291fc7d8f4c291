package visibility

import "fmt"

// Error is a lookup failure with a machine-readable code.
type Error struct {
	Code    string    // empty_id, element_not_found
	Message string    // Human-readable message
	ID      ElementID // Element the lookup was for, if any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s: %q", e.Message, string(e.ID))
	}
	return e.Message
}

// Is matches errors by code so that errors.Is(err, ErrElementNotFound) holds
// for copies carrying an id.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithID returns a copy of the error for the given element.
func (e *Error) WithID(id ElementID) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		ID:      id,
	}
}

// Predefined errors
var (
	ErrEmptyID = &Error{
		Code:    "empty_id",
		Message: "element id is empty",
	}
	ErrElementNotFound = &Error{
		Code:    "element_not_found",
		Message: "element not found",
	}
)
