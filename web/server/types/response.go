package types

import (
	"errors"
	"net/http"
)

// Response defines the interface for HTTP response wrappers.
type Response interface {
	GetStatusCode() int
	SetStatusCode(int)
	GetError() error
	SetError(*Error)
	// GetHeader returns the headers written with the response.
	GetHeader() http.Header
}

// BaseResponse provides a base implementation of Response.
type BaseResponse struct {
	StatusCode int    `json:"status_code"`
	Status     string `json:"status"`
	Error      *Error `json:"error,omitempty"`
	header     http.Header
}

var _ Response = (*BaseResponse)(nil)

// NewBaseResponse returns a new response with the specified status code and
// optional error.
func NewBaseResponse(statusCode int, err error) BaseResponse {
	resp := BaseResponse{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		header:     http.Header{},
	}

	if err != nil {
		var terr *Error
		if !errors.As(err, &terr) {
			terr = NewError(statusCode, err.Error())
		}
		resp.Error = terr
	}

	return resp
}

// GetStatusCode returns the HTTP status code for the response. A response
// without a status code is a 200 OK.
func (r *BaseResponse) GetStatusCode() int {
	if r.StatusCode == 0 {
		return http.StatusOK
	}
	return r.StatusCode
}

// SetStatusCode sets the HTTP status code and text.
func (r *BaseResponse) SetStatusCode(code int) {
	r.StatusCode = code
	r.Status = http.StatusText(code)
}

// GetError returns the response error, if any.
func (r *BaseResponse) GetError() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

// SetError sets the response error.
func (r *BaseResponse) SetError(err *Error) {
	r.Error = err
}

// GetHeader returns the response headers.
func (r *BaseResponse) GetHeader() http.Header {
	if r.header == nil {
		r.header = http.Header{}
	}
	return r.header
}
