package tsp

import (
	"github.com/mitchellh/mapstructure"
)

// ActionResponse is the status envelope answered by the gateway, or produced
// locally when the gateway could not be reached or understood. In the latter
// case Err holds a *TransportError, *DecodeError or *ValidationError.
type ActionResponse struct {
	Status  int                    `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`

	Err error  `json:"-"`
	Raw []byte `json:"-"`
}

func (r *ActionResponse) OK() bool {
	return r != nil && r.Err == nil && r.Status == StatusOK
}

// RemoteErr returns a *RemoteError for well formed answers with a non-OK
// status, Err for local failures, and nil otherwise.
func (r *ActionResponse) RemoteErr() error {
	switch {
	case r == nil:
		return nil
	case r.Err != nil:
		return r.Err
	case r.Status != StatusOK:
		return &RemoteError{Status: r.Status, Message: r.Message}
	default:
		return nil
	}
}

// DecodeData decodes Data into out, converting between weakly typed values
// such as "1" and 1.
func (r *ActionResponse) DecodeData(out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(r.Data)
}

func transportFailure(te *TransportError) *ActionResponse {
	status := te.Code
	if te.Timeout() {
		status = StatusTimeout
	}
	return &ActionResponse{Status: status, Message: te.Message, Err: te}
}

func decodeFailure(body []byte, err error) *ActionResponse {
	de := &DecodeError{Body: body, Err: err}
	return &ActionResponse{Status: StatusMalformedResponse, Message: de.Error(), Err: de, Raw: body}
}

func rejected(err *ValidationError, message string) *ActionResponse {
	return &ActionResponse{Status: StatusRejected, Message: message, Err: err}
}
