package types

import (
	"net/http"

	"go.hackfix.me/vestibule/db/models"
)

// Request is implemented by the typed requests of handler pipelines. The
// session is set by the pipeline's authenticator before the handler runs.
type Request interface {
	SetHTTPRequest(*http.Request)
	GetHTTPRequest() *http.Request
	Session() RequestContext[struct{}]
	SetSession(RequestContext[struct{}])
}

// BaseRequest is embedded by typed requests to implement Request.
type BaseRequest struct {
	*http.Request
	session RequestContext[struct{}]
}

var _ Request = (*BaseRequest)(nil)

// GetHTTPRequest returns the underlying HTTP request.
func (r *BaseRequest) GetHTTPRequest() *http.Request {
	return r.Request
}

// SetHTTPRequest sets the underlying HTTP request.
func (r *BaseRequest) SetHTTPRequest(req *http.Request) {
	r.Request = req
}

// Session returns the decorated session context of the request.
func (r *BaseRequest) Session() RequestContext[struct{}] {
	return r.session
}

// SetSession sets the decorated session context of the request.
func (r *BaseRequest) SetSession(rc RequestContext[struct{}]) {
	r.session = rc
}

// CurrentUser returns the session user, or nil for anonymous requests.
func (r *BaseRequest) CurrentUser() *models.User {
	return r.session.CurrentUser()
}
