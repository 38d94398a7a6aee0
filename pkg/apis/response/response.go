package response

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

type responseError struct {
	Code    ErrCode `json:"code"`
	Message string  `json:"message"`
	// Detail carries the cause reported by the gateway or the history store.
	Detail string `json:"detail,omitempty"`
	Err    error  `json:"-"`
}

func (re *responseError) Error() string {
	if re == nil {
		return ""
	}
	if len(re.Detail) > 0 {
		return fmt.Sprintf("%d %s: %s", re.Code, re.Message, re.Detail)
	}
	return fmt.Sprintf("%d %s", re.Code, re.Message)
}

func (re *responseError) GetCode() ErrCode {
	if re == nil {
		return 0
	}
	return re.Code
}

func (re *responseError) Unwrap() error {
	return re.Err
}

// MultiError is the body of every failed REST call. All its methods are
// goroutine safe.
type MultiError struct {
	mtx    sync.Mutex
	errors []error
}

func NewMultiError(err ...error) *MultiError {
	return &MultiError{
		errors: err,
	}
}

func (e *MultiError) Add(err ...error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.errors = append(e.errors, err...)
}

// Errors returns a copy of the errors added so far.
func (e *MultiError) Errors() []error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return append(make([]error, 0, len(e.errors)), e.errors...)
}

func (e *MultiError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Errors []error `json:"errors"`
	}{
		Errors: e.Errors(),
	})
}

func (e *MultiError) UnmarshalJSON(bytes []byte) error {
	errs := struct {
		Errors []*responseError `json:"errors"`
	}{}
	if err := json.Unmarshal(bytes, &errs); err != nil {
		return err
	}
	for _, err := range errs.Errors {
		e.Add(err)
	}
	return nil
}

func (e *MultiError) Error() string {
	errs := e.Errors()
	es := make([]string, 0, len(errs))
	for _, err := range errs {
		es = append(es, err.Error())
	}
	return strings.Join(es, "; ")
}

func generateError(code ErrCode, s ...interface{}) *responseError {
	return &responseError{
		Code:    code,
		Message: fmt.Sprintf(errors[code], s...),
	}
}

func wrapError(code ErrCode, err error) *responseError {
	re := generateError(code)
	if err != nil {
		re.Err = err
		re.Detail = err.Error()
	}
	return re
}

func ErrResourceNotFound(resource string) *responseError {
	return generateError(ErrCodeResourceNotFound, resource)
}

func ErrInvalidParameter(name, reason string) *responseError {
	return generateError(ErrCodeInvalidParameter, name, reason)
}

func ErrHistoryFailed(err error) *responseError {
	return wrapError(ErrCodeHistoryFailed, err)
}

func ErrRequestFailed(err error) *responseError {
	return wrapError(ErrCodeRequestFailed, err)
}
