package types

import "net/http"

// NewErrorResponse returns a response with the given status code and error
// message.
func NewErrorResponse(statusCode int, message string) *BaseResponse {
	resp := NewBaseResponse(statusCode, nil)
	resp.Error = NewError(statusCode, message)
	return &resp
}

// NewServiceUnavailableError returns a 503 Service Unavailable response.
func NewServiceUnavailableError(message string) *BaseResponse {
	return NewErrorResponse(http.StatusServiceUnavailable, message)
}
