package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.hackfix.me/vestibule/web/server/types"
)

const maxBodyReadSize = 1 << 20 // 1MiB

// Serializer converts between the raw body data and typed requests and
// responses.
type Serializer interface {
	// Decode reads the request body into req.
	Decode(req types.Request) error
	// Encode returns the body of resp.
	Encode(resp types.Response) ([]byte, error)
	// ContentType is the media type of encoded responses.
	ContentType() string
}

// JSONSerializer implements JSON request and response serialization.
type JSONSerializer struct{}

var _ Serializer = JSONSerializer{}

// JSON returns a new JSON serializer.
func JSON() JSONSerializer {
	return JSONSerializer{}
}

// Decode decodes at most 1MiB of JSON from the request body into req. Requests
// without a body, such as most GET requests, are left untouched.
func (JSONSerializer) Decode(req types.Request) error {
	r := req.GetHTTPRequest()
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return nil
	}

	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyReadSize)).Decode(req); err != nil {
		return types.NewError(http.StatusBadRequest,
			fmt.Sprintf("failed decoding request body into JSON: %s", err))
	}

	return nil
}

// Encode implements Serializer.
func (JSONSerializer) Encode(resp types.Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed marshalling response into JSON: %w", err)
	}

	return data, nil
}

// ContentType implements Serializer.
func (JSONSerializer) ContentType() string {
	return "application/json"
}
