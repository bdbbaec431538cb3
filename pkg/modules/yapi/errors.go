package yapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is returned by every Client operation. Op is the human readable
// operation label, Message the service message, response body or transport
// error text.
type Error struct {
	Op         string
	Message    string
	StatusCode int // HTTP status, 0 when no response was received
	ErrCode    int // YApi errcode, 0 unless the envelope reported a failure
	Err        error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// statusError is a non-2xx HTTP response
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.code, http.StatusText(e.code))
}

// envelopeError is a YApi response with a non-zero errcode
type envelopeError struct {
	code    int
	message string
}

func (e *envelopeError) Error() string {
	return e.message
}

// translate turns any failure of op into an *Error
func translate(op operation, err error) *Error {
	out := &Error{Op: op.label, Err: err}

	var se *statusError
	var ee *envelopeError
	switch {
	case errors.As(err, &se):
		out.StatusCode = se.code
		out.Message = strings.TrimSpace(se.body)
		if out.Message == "" {
			out.Message = se.Error()
		}
	case errors.As(err, &ee):
		out.StatusCode = http.StatusOK
		out.ErrCode = ee.code
		out.Message = ee.message
		if out.Message == "" {
			out.Message = op.defaultMessage
		}
	default:
		out.Message = err.Error()
	}

	return out
}
