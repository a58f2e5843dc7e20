package domain

import (
	"errors"
)

// Workflow failure kinds. An *OperationError matches exactly one of these
// with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrResolution        = errors.New("name resolution error")
	ErrRemoteRejected    = errors.New("remote call rejected")
	ErrUserCancelled     = errors.New("operation cancelled")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUnknown           = errors.New("unknown error")
	ErrOperationInFlight = errors.New("operation already in flight for role")
)

var ErrForbidden = errors.New("access forbidden")

// Rejection reasons carried by ErrRemoteRejected failures.
const (
	ReasonNotFound        = "not_found"
	ReasonAlreadyAssigned = "already_assigned"
)

// OperationError is returned by the role workflow. Kind is one of the
// sentinels above, Message is safe to show to an operator, Err is the cause.
type OperationError struct {
	Kind    error
	Reason  string
	Message string
	Err     error
}

func (e *OperationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *OperationError) Is(target error) bool {
	return target == e.Kind
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// NewValidationError builds a ValidationError with an operator-facing message.
func NewValidationError(msg string) *OperationError {
	return &OperationError{Kind: ErrValidation, Message: msg}
}

// NewResolutionError builds a ResolutionError wrapping cause.
func NewResolutionError(msg string, cause error) *OperationError {
	return &OperationError{Kind: ErrResolution, Message: msg, Err: cause}
}

// ErrorKind is the short label used in logs, metrics and audit records.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrResolution):
		return "resolution"
	case errors.Is(err, ErrRemoteRejected):
		return "remote_rejected"
	case errors.Is(err, ErrUserCancelled):
		return "user_cancelled"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrOperationInFlight):
		return "in_flight"
	default:
		return "unknown"
	}
}

// RemoteError carries a structured error code decoded from the remote call,
// e.g. the custom error name of a contract revert.
type RemoteError struct {
	Code string
	Err  error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Err == nil:
		return e.Code
	case e.Code == "":
		return e.Err.Error()
	default:
		return e.Code + ": " + e.Err.Error()
	}
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
