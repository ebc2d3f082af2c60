package validation

import "errors"

const (
	CodeMissingRequiredFields = "MISSING_REQUIRED_FIELDS"
	CodeUnsupportedOperator   = "UNSUPPORTED_OPERATOR"
	CodeInvalidPhoneFormat    = "INVALID_PHONE_FORMAT"
	CodeInvalidAmount         = "INVALID_AMOUNT"
	CodeInvalidProvider       = "INVALID_PROVIDER"
)

// Error is a rejected submission. Code is stable, Message is client-facing.
type Error struct {
	Code    string
	Message string
	// SupportedOperators is set for UNSUPPORTED_OPERATOR.
	SupportedOperators []string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// AsError unwraps a validation error from err.
func AsError(err error) (*Error, bool) {
	var vErr *Error
	if errors.As(err, &vErr) && vErr != nil {
		return vErr, true
	}
	return nil, false
}
