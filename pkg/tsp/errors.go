package tsp

import (
	"errors"
	"fmt"
	"strconv"
)

// Status codes produced by the client itself rather than the gateway.
const (
	StatusOK = 200
	// StatusTimeout is reported when the gateway did not answer in time.
	StatusTimeout = 107
	// StatusMalformedResponse is reported when the gateway answered with a
	// body that is not a status envelope.
	StatusMalformedResponse = 108
	// StatusRejected is reported for requests refused locally.
	StatusRejected = 500
)

var errMissingStatus = errors.New("status field is missing")

// Transport error codes, numbered after libcurl's CURLE_* values.
const (
	TransportCodeResolveHost = 6
	TransportCodeConnect     = 7
	TransportCodeTimeout     = 28
	TransportCodeTLS         = 35
	TransportCodeEmptyReply  = 52
	TransportCodeSend        = 55
	TransportCodeRecv        = 56
)

type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("tsp: invalid configuration: %s %s", e.Field, e.Reason)
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Field) == 0 {
		return "tsp: " + e.Reason
	}
	return fmt.Sprintf("tsp: %s: %s", e.Field, e.Reason)
}

// TransportError reports a request that never produced a gateway answer, or
// an answer with a non-2xx HTTP status, in which case Code is that status.
type TransportError struct {
	Code    int
	Message string
	Err     error
	timeout bool
}

func (e *TransportError) Error() string {
	return "tsp: transport error " + strconv.Itoa(e.Code) + ": " + e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTimeoutError reports a call that got no answer in time.
func NewTimeoutError(message string, err error) *TransportError {
	return &TransportError{Code: TransportCodeTimeout, Message: message, Err: err, timeout: true}
}

func (e *TransportError) Timeout() bool {
	return e.timeout
}

type DecodeError struct {
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	return "tsp: malformed gateway response: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// RemoteError is a well formed gateway answer whose status is not StatusOK.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("tsp: gateway status %d: %s", e.Status, e.Message)
}

// CodedError lets transports report their own numeric error code, which is
// passed through to ActionResponse.Status unchanged.
type CodedError interface {
	error
	ErrorCode() int
}

func IsTimeout(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Timeout()
}
