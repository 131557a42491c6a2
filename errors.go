package aware

import (
	"errors"
	"fmt"
)

// ErrNetwork indicates that a request never produced a response-- the server
// was unreachable or the connection broke mid-flight. These are classified at
// the transport layer, at the moment they occur, so downstream code can branch
// on the kind rather than inspecting error text.
type ErrNetwork struct {
	Op  string
	Err error
}

func NewErrNetwork(op string, err error) *ErrNetwork {
	return &ErrNetwork{
		Op:  op,
		Err: err,
	}
}

func (e *ErrNetwork) Error() string {
	return fmt.Sprintf(
		"Unable to connect. Please check your internet connection. (%s: %s)",
		e.Op,
		e.Err,
	)
}

func (e *ErrNetwork) Unwrap() error {
	return e.Err
}

// ErrTimeout indicates that a request's own time bound elapsed before the
// request settled. It is a network-class failure, but kept distinguishable so
// callers can say "try again" rather than "check your connection."
type ErrTimeout struct {
	Op string
}

func NewErrTimeout(op string) *ErrTimeout {
	return &ErrTimeout{
		Op: op,
	}
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("%s timed out-- please try again", e.Op)
}

// IsNetworkError returns true if err is network-class: either an ErrNetwork
// or an ErrTimeout anywhere in its chain.
func IsNetworkError(err error) bool {
	var netErr *ErrNetwork
	var timeoutErr *ErrTimeout
	return errors.As(err, &netErr) || errors.As(err, &timeoutErr)
}

// ErrAuthFailed indicates the backend rejected the supplied credentials
// during login or signup. Message is already mapped to a user-facing string.
type ErrAuthFailed struct {
	Message string
}

func NewErrAuthFailed(message string) *ErrAuthFailed {
	return &ErrAuthFailed{
		Message: message,
	}
}

func (e *ErrAuthFailed) Error() string {
	return e.Message
}

// ErrSessionExpired indicates that a previously live session could no longer
// be refreshed. The local session has already been torn down by the time a
// caller sees this; the only recovery is a fresh login.
type ErrSessionExpired struct{}

func NewErrSessionExpired() *ErrSessionExpired {
	return &ErrSessionExpired{}
}

func (e *ErrSessionExpired) Error() string {
	return "Session expired. Please login again."
}

// ErrProcessing indicates the backend understood the request but could not
// produce a result-- e.g. an unreadable label image. Mapped from HTTP 417 and
// never retried automatically.
type ErrProcessing struct {
	Reason string
}

func NewErrProcessing(reason string) *ErrProcessing {
	if reason == "" {
		reason = "processing failed"
	}
	return &ErrProcessing{
		Reason: reason,
	}
}

func (e *ErrProcessing) Error() string {
	return e.Reason
}

// ErrUploadExhausted indicates both the direct-to-storage upload path and the
// backend-mediated fallback failed. The direct path's error is surfaced as
// primary since it is the preferred path and most diagnostic; the fallback's
// error rides along as secondary context.
type ErrUploadExhausted struct {
	Direct   error
	Fallback error
}

func NewErrUploadExhausted(direct, fallback error) *ErrUploadExhausted {
	return &ErrUploadExhausted{
		Direct:   direct,
		Fallback: fallback,
	}
}

func (e *ErrUploadExhausted) Error() string {
	return e.Direct.Error()
}

func (e *ErrUploadExhausted) Unwrap() error {
	return e.Direct
}

// ErrAPI is the generic non-2xx failure, carrying the backend's detail
// message when one was present in the response body.
type ErrAPI struct {
	StatusCode int
	Detail     string
}

func NewErrAPI(statusCode int, detail string) *ErrAPI {
	return &ErrAPI{
		StatusCode: statusCode,
		Detail:     detail,
	}
}

func (e *ErrAPI) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("received %d from API server", e.StatusCode)
	}
	return fmt.Sprintf("received %d from API server: %s", e.StatusCode, e.Detail)
}
