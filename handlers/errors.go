package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	ds "github.com/oaiiae/huma-contacts/datastores"
)

// ErrIDMismatch is returned when the ID of a request body differs from the one in its path.
var ErrIDMismatch = errors.New("id mismatch")

// ErrorModel is the body of every error response.
type ErrorModel struct {
	StatusCode int     `json:"statusCode" example:"404"               doc:"HTTP status code"`
	Message    string  `json:"message"    example:"contact not found" doc:"What went wrong"`
	Details    *string `json:"details"    nullable:"true"             doc:"Internal error details, when enabled"`

	err error
}

var _ huma.StatusError = (*ErrorModel)(nil)

func (e *ErrorModel) Error() string  { return e.Message }
func (e *ErrorModel) GetStatus() int { return e.StatusCode }
func (e *ErrorModel) Unwrap() error  { return e.err }

// NewError replaces [huma.NewError] so that errors raised by huma itself
// share [ErrorModel]. Request validation failures are reported as
// 400 Bad Request. Causes are appended to the message below 500 only.
func NewError(status int, msg string, errs ...error) huma.StatusError {
	if status == http.StatusUnprocessableEntity {
		status = http.StatusBadRequest
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	if status < http.StatusInternalServerError {
		causes := make([]string, 0, len(errs))
		for _, err := range errs {
			if err != nil {
				causes = append(causes, err.Error())
			}
		}
		if len(causes) > 0 {
			msg += ": " + strings.Join(causes, "; ")
		}
	}
	return &ErrorModel{StatusCode: status, Message: msg, err: errors.Join(errs...)}
}

// PanicError carries a value recovered from a panic and the stack at that point.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprint("panic: ", e.Value) }

// MapError is the one place where error kinds become HTTP statuses:
// invalid objects and ID mismatches are 400, missing objects 404 and
// anything else 500. Details are only given for 500 and only if details is set.
func MapError(err error, details bool) huma.StatusError {
	var statusErr huma.StatusError
	switch {
	case errors.As(err, &statusErr):
		return statusErr

	case errors.Is(err, ds.ErrInvalidObject), errors.Is(err, ErrIDMismatch):
		return &ErrorModel{StatusCode: http.StatusBadRequest, Message: err.Error(), err: err}

	case errors.Is(err, ds.ErrObjectNotFound):
		return &ErrorModel{StatusCode: http.StatusNotFound, Message: err.Error(), err: err}

	default:
		e := &ErrorModel{
			StatusCode: http.StatusInternalServerError,
			Message:    http.StatusText(http.StatusInternalServerError),
			err:        err,
		}
		if details {
			d := err.Error()
			var panicErr *PanicError
			if errors.As(err, &panicErr) {
				d += "\n\n" + string(panicErr.Stack)
			}
			e.Details = &d
		}
		return e
	}
}

// WriteError writes err as a JSON response. It is meant for middlewares
// running outside of an operation handler.
func WriteError(ctx huma.Context, err huma.StatusError) {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.SetStatus(err.GetStatus())
	_ = json.NewEncoder(ctx.BodyWriter()).Encode(err) //nolint: errchkjson // best effort
}
