package goghostex

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type Error interface {
	error
	Code() int
	HttpStatus() int
}

type apiError struct {
	code       int
	httpStatus int
	message    string
}

func (this *apiError) Error() string {
	return this.message
}

func (this *apiError) Code() int {
	return this.code
}

func (this *apiError) HttpStatus() int {
	return this.httpStatus
}

// NewError creates a new API error with the exchange code, the http status and a message
func NewError(code, httpStatus int, message string, args ...interface{}) Error {
	if len(args) > 0 {
		return &apiError{code, httpStatus, fmt.Sprintf(message, args...)}
	}
	return &apiError{code, httpStatus, message}
}

// IsTooManyRequests reports whether the exchange rejected the call for rate limit reasons.
// 418 means the IP is banned after repeated 429s.
func IsTooManyRequests(err error) bool {
	var e Error
	if !errors.As(err, &e) {
		return false
	}
	return e.HttpStatus() == http.StatusTooManyRequests || e.HttpStatus() == http.StatusTeapot
}
