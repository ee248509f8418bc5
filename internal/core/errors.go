package core

import (
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rtcports/internal/types"
)

// Error kinds. Every error returned by this package wraps at most one of
// these; match them with errors.Is.
var (
	ErrWrongPortType           = errors.New("wrong port type")
	ErrIncompatibleNegotiation = errors.New("incompatible negotiation properties")
	ErrMismatchedInterfaces    = errors.New("mismatched interfaces")
	ErrMismatchedPolarity      = errors.New("mismatched polarity")
	ErrConnectionFailed        = errors.New("connection failed")
	ErrDisconnectFailed        = errors.New("disconnect failed")
	ErrNotConnected            = errors.New("not connected")
	ErrUnknownConnectionOwner  = errors.New("unknown connection owner")
)

// ConnectionFailedError carries the status the framework returned when it
// rejected a connect request.
type ConnectionFailedError struct {
	Code types.ReturnCode
}

func (e *ConnectionFailedError) Error() string {
	return fmt.Sprintf("connection failed: %s (%d)", e.Code, int(e.Code))
}

func (e *ConnectionFailedError) Unwrap() error {
	return ErrConnectionFailed
}

func connectionFailed(code types.ReturnCode) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("framework rejected connection: %s", code)).
		WithCause(&ConnectionFailedError{Code: code})
}

func remoteError(op string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("remote call failed: %s", op)).
		WithCause(err)
}
