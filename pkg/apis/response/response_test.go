package response

import (
	"encoding/json"
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestMultiErrorBody(t *testing.T) {
	cause := fmt.Errorf("throttled")
	body, err := json.Marshal(NewMultiError(ErrInvalidParameter("limit", "must not be negative"), ErrHistoryFailed(cause)))
	require.NoError(t, err)

	assert.JSONEq(t, `{"errors":[
		{"code":10003,"message":"Invalid parameter limit: must not be negative"},
		{"code":10007,"message":"History store request failed.","detail":"throttled"}
	]}`, string(body))
}

func TestResponseError(t *testing.T) {
	cause := fmt.Errorf("throttled")
	err := ErrHistoryFailed(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrCodeHistoryFailed, err.GetCode())
	assert.Equal(t, "10007 History store request failed.: throttled", err.Error())
	assert.Equal(t, "10004 Resource /x not found.", ErrResourceNotFound("/x").Error())

	var nilErr *responseError
	assert.Equal(t, ErrCode(0), nilErr.GetCode())
}
