package server

import (
	"errors"
	"fmt"

	"github.com/zeusync/fieldflip/internal/core/errs"
)

// Server-specific errors
var (
	ErrServerClosed         = errors.New("server is closed")
	ErrServerNotRunning     = errors.New("server is not running")
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrBadRequest           = errors.New("bad request")
	ErrUnknownKind          = fmt.Errorf("%w: unknown request kind", ErrBadRequest)
)

// Reply error codes.
const (
	CodeInvalidArgument = "E_INVALID_ARGUMENT"
	CodeMissingField    = "E_MISSING_FIELD"
	CodeBadRequest      = "E_BAD_REQUEST"
	CodeInternal        = "E_INTERNAL"
)

// ErrorBody is the error half of a failed reply.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, errs.ErrMissingField):
		return CodeMissingField
	case errors.Is(err, errs.ErrInvalidArgument):
		return CodeInvalidArgument
	case errors.Is(err, ErrBadRequest):
		return CodeBadRequest
	default:
		return CodeInternal
	}
}

func newErrorBody(err error) *ErrorBody {
	return &ErrorBody{Code: errorCode(err), Message: err.Error()}
}
