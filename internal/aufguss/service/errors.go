package aufguss

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidField = errors.New("invalid field")
)

// ValidationError carries a message that is safe to show to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err is a user input problem and returns its message.
func IsValidation(err error) (string, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Message, true
	}
	return "", false
}
