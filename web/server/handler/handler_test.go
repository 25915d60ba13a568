package handler_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/vestibule/db/models"
	"go.hackfix.me/vestibule/effect"
	"go.hackfix.me/vestibule/session"
	"go.hackfix.me/vestibule/web/server/handler"
	"go.hackfix.me/vestibule/web/server/middleware"
	"go.hackfix.me/vestibule/web/server/types"
)

const testSecret = "handler-test-secret-0123456789abcdefgh"

type mapStore map[session.AccessToken]*models.User

func (s mapStore) FetchUser(token session.AccessToken) effect.Effect[effect.Outcome[error, *models.User]] {
	return effect.New(func(context.Context) effect.Outcome[error, *models.User] {
		return effect.Success[error](s[token])
	})
}

type echoRequest struct {
	types.BaseRequest `json:"-"`
	Message           string `json:"message"`
}

type echoResponse struct {
	types.BaseResponse
	Message string `json:"message,omitempty"`
	User    string `json:"user,omitempty"`
}

func echo(_ context.Context, req *echoRequest) (*echoResponse, error) {
	if req.Message == "fail" {
		return nil, errors.New("database is on fire")
	}
	if req.Message == "teapot" {
		return nil, types.NewError(http.StatusTeapot, "short and stout")
	}

	resp := &echoResponse{
		BaseResponse: types.NewBaseResponse(http.StatusOK, nil),
		Message:      req.Message,
	}
	if u := req.CurrentUser(); u != nil {
		resp.User = u.Name
	}
	return resp, nil
}

func TestHandle(t *testing.T) {
	t.Parallel()

	v, err := session.NewVerifier([]string{testSecret})
	require.NoError(t, err)
	alice := &models.User{Name: "alice", AccessToken: "alice-token"}
	dec := middleware.NewDecorator(v, mapStore{"alice-token": alice}, slog.New(slog.DiscardHandler))
	cookie, err := v.Issue("alice-token", 0)
	require.NoError(t, err)

	tests := []struct {
		name       string
		pipeline   *handler.Pipeline
		body       string
		cookie     bool
		expStatus  int
		expBody    string
		expNoStore bool
	}{
		{
			name:      "ok/anonymous",
			pipeline:  handler.NewPipeline().Auth(handler.SessionAuth(dec)),
			body:      `{"message":"hi"}`,
			expStatus: http.StatusOK,
			expBody:   `{"status_code":200,"status":"OK","message":"hi"}`,
		},
		{
			name:       "ok/authenticated",
			pipeline:   handler.NewPipeline().Auth(handler.SessionAuth(dec)).ProcessRequest(handler.RequireUser).ProcessResponse(handler.NoStore),
			body:       `{"message":"hi"}`,
			cookie:     true,
			expStatus:  http.StatusOK,
			expBody:    `{"status_code":200,"status":"OK","message":"hi","user":"alice"}`,
			expNoStore: true,
		},
		{
			name:      "err/require_user",
			pipeline:  handler.NewPipeline().Auth(handler.SessionAuth(dec)).ProcessRequest(handler.RequireUser),
			body:      `{"message":"hi"}`,
			expStatus: http.StatusUnauthorized,
			expBody:   `{"status_code":401,"status":"Unauthorized","error":{"message":"a valid session is required"}}`,
		},
		{
			name:      "err/bad_json",
			pipeline:  handler.NewPipeline(),
			body:      `{"message":`,
			expStatus: http.StatusBadRequest,
			expBody:   `{"status_code":400,"status":"Bad Request","error":{"message":"failed decoding request body into JSON: unexpected EOF"}}`,
		},
		{
			name:      "err/internal_minimal",
			pipeline:  handler.NewPipeline(),
			body:      `{"message":"fail"}`,
			expStatus: http.StatusInternalServerError,
			expBody:   `{"status_code":500,"status":"Internal Server Error","error":{"message":"Internal Server Error"}}`,
		},
		{
			name:      "err/internal_full",
			pipeline:  handler.NewPipeline().ErrorLevel(types.ErrorLevelFull),
			body:      `{"message":"fail"}`,
			expStatus: http.StatusInternalServerError,
			expBody:   `{"status_code":500,"status":"Internal Server Error","error":{"message":"database is on fire"}}`,
		},
		{
			name:      "err/typed_none",
			pipeline:  handler.NewPipeline().ErrorLevel(types.ErrorLevelNone),
			body:      `{"message":"teapot"}`,
			expStatus: http.StatusTeapot,
			expBody:   `{"status_code":418,"status":"I'm a teapot","error":{"message":"I'm a teapot"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(tt.body))
			if tt.cookie {
				r.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: cookie})
			}
			w := httptest.NewRecorder()

			handler.Handle(echo, tt.pipeline).ServeHTTP(w, r)

			assert.Equal(t, tt.expStatus, w.Code)
			assert.JSONEq(t, tt.expBody, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			if tt.expNoStore {
				assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			}
		})
	}
}

func TestSessionAuthReusesIdentify(t *testing.T) {
	t.Parallel()

	alice := &models.User{Name: "alice"}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := types.WithRequestContext(r.Context(), types.NewRequestContext(alice, r, struct{}{}))

	// A nil decorator would panic if the decoration ran again.
	auth := handler.SessionAuth(nil)
	req := &types.BaseRequest{Request: r}
	_, err := auth(ctx, req)
	require.NoError(t, err)
	assert.Same(t, alice, req.Session().CurrentUser())
}
