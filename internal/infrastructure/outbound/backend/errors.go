package backend

import (
	"errors"
	"net/http"

	"github.com/sophialabs/xraydash/internal/domain/viewer"
)

// ErrorKind classifies gateway failures.
type ErrorKind string

const (
	// KindNetwork means the backend could not be reached.
	KindNetwork ErrorKind = "network"
	// KindHTTP means the backend answered with a non-2xx status.
	KindHTTP ErrorKind = "http"
	// KindDecode means a 2xx body could not be understood.
	KindDecode ErrorKind = "decode"
)

// GatewayError is returned by every failed gateway call.
type GatewayError struct {
	Kind    ErrorKind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *GatewayError) Error() string { return e.Message }

func (e *GatewayError) Unwrap() error { return e.Err }

// Is lets a backend 404 match viewer.ErrUnknownExecution.
func (e *GatewayError) Is(target error) bool {
	return target == viewer.ErrUnknownExecution && e.Kind == KindHTTP && e.Status == http.StatusNotFound
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var gerr *GatewayError
	return errors.As(err, &gerr) && gerr.Kind == KindHTTP && gerr.Status == http.StatusNotFound
}
