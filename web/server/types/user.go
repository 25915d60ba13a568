package types

import (
	"net/http"

	"go.hackfix.me/vestibule/db/models"
)

// WhoamiResponse reports the identity of the session that made the request.
// User is omitted for anonymous requests.
type WhoamiResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
}

// MeRequest is the request for the authenticated user's profile.
type MeRequest struct {
	BaseRequest `json:"-"`
}

// MeResponse is the authenticated user's profile.
type MeResponse struct {
	BaseResponse
	Data *models.User `json:"data,omitempty"`
}

// NewMeResponse returns a 200 OK response with the user's profile.
func NewMeResponse(user *models.User) *MeResponse {
	return &MeResponse{
		BaseResponse: NewBaseResponse(http.StatusOK, nil),
		Data:         user,
	}
}
