package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	aerrors "go.hackfix.me/vestibule/app/errors"
	"go.hackfix.me/vestibule/session"
	stypes "go.hackfix.me/vestibule/web/server/types"
)

// Client is a friendly interface over the Vestibule HTTP API.
type Client struct {
	*http.Client
	baseURL    *url.URL
	cookieName string
	logger     *slog.Logger
}

// New returns a new client for the server at address, which can be either a
// host:port pair or a full URL.
func New(address, cookieName string, logger *slog.Logger) (*Client, error) {
	base, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	if cookieName == "" {
		cookieName = session.DefaultCookieName
	}

	return &Client{
		Client:     &http.Client{Timeout: time.Minute},
		baseURL:    base,
		cookieName: cookieName,
		logger:     logger.With("component", "web-client"),
	}, nil
}

// Whoami asks the server who the session cookie value belongs to. An empty
// value makes an anonymous request.
func (c *Client) Whoami(ctx context.Context, cookie string) (*stypes.WhoamiResponse, error) {
	resp := &stypes.WhoamiResponse{}
	if err := c.get(ctx, "/api/v1/whoami", cookie, resp); err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) get(ctx context.Context, path, cookie string, out any) (rerr error) {
	u := c.baseURL.JoinPath(path)
	errFields := []any{"url", u.String(), "method", http.MethodGet}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return aerrors.NewWithCause("failed creating request", err, errFields...)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: cookie})
	}

	c.logger.Debug("sending request", errFields...)

	resp, err := c.Do(req)
	if err != nil {
		return aerrors.NewWithCause("failed sending request", err, errFields...)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			rerr = errors.Join(rerr, fmt.Errorf("failed closing response body: %w", err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return aerrors.NewWithCause("failed reading response body", err, errFields...)
	}

	errFields = append(errFields, "status_code", resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		var errResp stypes.BaseResponse
		if jerr := json.Unmarshal(body, &errResp); jerr == nil && errResp.Error != nil {
			errFields = append(errFields, "cause", errResp.Error.Message)
		}
		return aerrors.NewWith("request failed", errFields...)
	}

	if err = json.Unmarshal(body, out); err != nil {
		return aerrors.NewWithCause("failed decoding response body", err, errFields...)
	}

	return nil
}

func parseAddress(address string) (*url.URL, error) {
	if address == "" {
		return nil, errors.New("empty server address")
	}

	u, err := url.Parse(address)
	if err != nil || u.Scheme == "" || u.Host == "" {
		// Treat it as a host:port pair.
		u, err = url.Parse("http://" + address)
		if err != nil {
			return nil, fmt.Errorf("invalid server address '%s': %w", address, err)
		}
	}

	return u, nil
}
