package response

var errors = map[ErrCode]string{
	ErrCodeMalformedJSON:       "The JSON you provided was not well-formed or did not validate against our published format.",
	ErrCodeRequestBody:         "Request body error",
	ErrCodeInvalidParameter:    "Invalid parameter %s: %s",
	ErrCodeResourceNotFound:    "Resource %s not found.",
	ErrCodeLegalActionNotFound: "Legal action not found.",
	ErrCodeHistoryUnavailable:  "History store is not configured.",
	ErrCodeHistoryFailed:       "History store request failed.",
	ErrCodeRequestFailed:       "Request failed.",
}

// !!! IMPORTANT PLEASE READ FIRST !!!
// You SHOULD add new code at the end of enum firstly.

var ErrMalformedJSON = &responseError{
	Code:    ErrCodeMalformedJSON,
	Message: errors[ErrCodeMalformedJSON],
}

var ErrLegalActionNotFound = &responseError{
	Code:    ErrCodeLegalActionNotFound,
	Message: errors[ErrCodeLegalActionNotFound],
}

var ErrHistoryUnavailable = &responseError{
	Code:    ErrCodeHistoryUnavailable,
	Message: errors[ErrCodeHistoryUnavailable],
}
