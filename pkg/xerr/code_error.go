package xerr

import "fmt"

// CodeError is the error type every service returns to handlers.
type CodeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

// New creates a CodeError.
func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Message: msg}
}

const (
	OK                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	Gone                = 410
	InternalServerError = 500
)

var (
	ErrServerError = New(InternalServerError, "internal server error")
	ErrParam       = New(BadRequest, "invalid parameters")
	ErrForbidden   = New(Forbidden, "forbidden")
)

// CodeOf returns the code carried by err, or InternalServerError for foreign errors.
func CodeOf(err error) int {
	if err == nil {
		return OK
	}
	if e, ok := err.(*CodeError); ok {
		return e.Code
	}
	return InternalServerError
}
