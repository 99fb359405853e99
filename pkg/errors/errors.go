package errors

import "errors"

// Codes shared by the domain layers and the HTTP surface.
const (
	CodeInvalidInput    = "invalid_input"
	CodeNetwork         = "network_error"
	CodeUnauthorized    = "unauthorized"
	CodeBackend         = "backend_error"
	CodeNotFound        = "not_found"
	CodeInvalidState    = "invalid_state"
	CodeMaxCards        = "max_cards_reached"
	CodeRequestInFlight = "request_in_flight"
	CodeStaleResponse   = "stale_response"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the outermost AppError in the chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// MessageOf returns the user facing message of the outermost AppError, falling
// back to err.Error().
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}

// Annotate wraps err with message, keeping the code already carried by err and
// using fallback when there is none.
func Annotate(err error, fallback, message string) error {
	code := CodeOf(err)
	if code == "" {
		code = fallback
	}
	return Wrap(code, message, err)
}
