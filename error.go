package graphql

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	errNotFound           graphErrType = "not_found"
	errCapacityExceeded   graphErrType = "capacity_exceeded"
	errServiceUnavailable graphErrType = "service_unavailable"
	errServiceFailure     graphErrType = "service_failure"
	errInternal           graphErrType = "internal_error"
)

// codeNotFound is the extensions.code servers commonly use for unknown
// entities.
const codeNotFound = "NOT_FOUND"

// ErrNotFound matches, via errors.Is, a GraphQL error in which the server
// reported that the requested entity does not exist.
var ErrNotFound = errors.New("graphql: not found")

type graphErrType string

// Error is a single entry of the errors array of a GraphQL response.
type Error struct {
	Message    string                 `json:"message,omitempty"`
	Name       graphErrType           `json:"name,omitempty"`
	TimeThrown string                 `json:"time_thrown,omitempty"`
	Data       interface{}            `json:"data,omitempty"`
	Path       []interface{}          `json:"path,omitempty"`
	Locations  []ErrorLocation        `json:"locations,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// ErrorLocation points into the request document.
type ErrorLocation struct {
	Line   int64 `json:"line"`
	Column int64 `json:"column"`
}

func (e Error) Error() string {
	return "graphql: " + e.Message
}

// Code returns extensions.code, or an empty string.
func (e Error) Code() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

// Is reports whether e matches target. A GraphQL error matches ErrNotFound
// when the server flagged it as such.
func (e Error) Is(target error) bool {
	if target != ErrNotFound {
		return false
	}
	return e.Name == errNotFound || strings.EqualFold(e.Code(), codeNotFound)
}

// TransportError is returned when the round-trip itself failed: the request
// could not be built or sent, the body could not be read or decoded, or the
// server answered with a non-200 status and no GraphQL errors.
type TransportError struct {
	// StatusCode is zero when no response was received.
	StatusCode int
	Err        error

	network bool
}

func (e *TransportError) Error() string {
	return "graphql: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ResponseShapeError is returned when a response was received without
// errors but the expected field is absent or has an unexpected type.
type ResponseShapeError struct {
	Field string
	Err   error
}

func (e *ResponseShapeError) Error() string {
	return fmt.Sprintf("graphql: response field %q: %v", e.Field, e.Err)
}

func (e *ResponseShapeError) Unwrap() error {
	return e.Err
}

var errMissingField = errors.New("missing from response")

// IsGraphQLErr reports whether err is an error returned by the server in
// the errors array of a response.
func IsGraphQLErr(err error) bool {
	var gerr Error
	return errors.As(err, &gerr)
}

// IsTransportErr reports whether err means the server could not be reached
// or rejected the operation. Server-side execution errors count.
func IsTransportErr(err error) bool {
	var terr *TransportError
	return errors.As(err, &terr) || IsGraphQLErr(err)
}

// IsResponseShapeErr reports whether err is a *ResponseShapeError.
func IsResponseShapeErr(err error) bool {
	var serr *ResponseShapeError
	return errors.As(err, &serr)
}

// IsNotFoundErr reports whether the server signalled an unknown entity.
func IsNotFoundErr(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func transportErr(err error, message string) error {
	return &TransportError{Err: errors.Wrap(err, message)}
}

func networkErr(err error) error {
	return &TransportError{Err: errors.Wrap(err, "sending request"), network: true}
}

func statusErr(code int) error {
	return &TransportError{
		StatusCode: code,
		Err:        errors.Errorf("server returned a non-200 status code: %d", code),
	}
}

func shouldRetry(errList []Error) bool {
	for _, err := range errList {
		if err.Name == errCapacityExceeded || err.Name == errServiceUnavailable || err.Name == errServiceFailure || err.Name == errInternal {
			return true
		}
	}

	return false
}
