// Package apperr defines the application error taxonomy. Every error kind
// carries the HTTP status the service boundary maps it to.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// KindInternal is the fallback for unclassified errors.
	KindInternal Kind = iota
	// KindConfig means required configuration is missing or invalid.
	KindConfig
	// KindExternalAPI means an upstream embedding or chat call failed.
	KindExternalAPI
	// KindVectorStore means malformed ingestion or a similarity computation failure.
	KindVectorStore
	// KindNotFound means a requested resource does not exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindExternalAPI:
		return "external_api"
	case KindVectorStore:
		return "vector_store"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindExternalAPI:
		return http.StatusBadGateway
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is an application error with a kind and an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Config reports missing or invalid configuration.
func Config(format string, args ...any) error {
	return &Error{Kind: KindConfig, Msg: fmt.Sprintf(format, args...)}
}

// ExternalAPI wraps a failed upstream call.
func ExternalAPI(err error, format string, args ...any) error {
	return &Error{Kind: KindExternalAPI, Msg: fmt.Sprintf(format, args...), Err: err}
}

// VectorStore wraps a store ingestion or computation failure.
func VectorStore(err error, format string, args ...any) error {
	return &Error{Kind: KindVectorStore, Msg: fmt.Sprintf(format, args...), Err: err}
}

// NotFound reports a missing resource.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or KindInternal for non-application errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// StatusOf returns the HTTP status for err. Unclassified errors map to 500.
func StatusOf(err error) int {
	return KindOf(err).Status()
}
