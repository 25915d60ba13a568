package handler

import (
	"context"
	"errors"
	"net/http"
	"reflect"

	"go.hackfix.me/vestibule/web/server/conn"
	"go.hackfix.me/vestibule/web/server/types"
)

// Handle adapts a typed handler function into an http.Handler that runs the
// stages of p in order:
//  1. authentication
//  2. request decoding
//  3. validation, if Req has a Validate() error method
//  4. request processors
//  5. the handler
//  6. response processors
//  7. response encoding and writing
//
// The first failing stage among 1-5 turns the response into an error
// response, sanitized according to the pipeline's error level. Stages 6 and 7
// always run.
//
// Req and Resp must be pointer types. New values are created with reflection,
// since generics alone can't instantiate the pointed-to types.
func Handle[Req types.Request, Resp types.Response](
	handlerFn func(context.Context, Req) (Resp, error),
	p *Pipeline,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := newInstance[Req]()
		req.SetHTTPRequest(r)
		var resp types.Response = newInstance[Resp]()

		ctx, err := p.prepare(r.Context(), req)
		if err == nil {
			var hresp Resp
			hresp, err = handlerFn(ctx, req)
			if !isNilResponse(hresp) {
				resp = hresp
			}
		}
		if err != nil {
			p.fail(resp, err)
		}

		if _, err = p.respond(ctx, conn.Open(w, r, resp)); err != nil {
			p.logger.Error("failed writing response",
				"method", r.Method, "path", r.URL.Path, "error", err.Error())
		}
	})
}

// prepare runs the stages before the handler.
func (p *Pipeline) prepare(ctx context.Context, req types.Request) (context.Context, error) {
	var err error
	if p.auth != nil {
		if ctx, err = p.auth(ctx, req); err != nil {
			return ctx, err
		}
	}

	if p.serializer != nil {
		if err = p.serializer.Decode(req); err != nil {
			return ctx, err //nolint:wrapcheck // Already a types.Error.
		}
	}

	if v, ok := req.(interface{ Validate() error }); ok {
		if err = v.Validate(); err != nil {
			return ctx, err //nolint:wrapcheck // Returned to the client.
		}
	}

	for _, process := range p.requestProcessors {
		if ctx, err = process(ctx, req); err != nil {
			return ctx, err
		}
	}

	return ctx, nil
}

// respond runs the response processors, and writes the encoded response.
func (p *Pipeline) respond(
	ctx context.Context, c conn.Conn[conn.HeadersOpen, types.Response],
) (conn.Conn[conn.HeadersSent, types.Response], error) {
	resp := c.Data()

	var err error
	for _, process := range p.responseProcessors {
		if ctx, err = process(ctx, resp); err != nil {
			p.fail(resp, err)
			break
		}
	}

	body, contentType, err := p.encode(resp)
	if err != nil {
		p.fail(resp, err)
		// The client still gets the status and a readable message.
		body, contentType = []byte(resp.GetError().Error()), "text/plain; charset=utf-8"
	}

	c = conn.AddHeaders(c, resp.GetHeader())
	c = conn.SetHeader(c, "Content-Type", contentType)

	return conn.Write(conn.WriteStatus(c, resp.GetStatusCode()), body)
}

func (p *Pipeline) encode(resp types.Response) ([]byte, string, error) {
	if p.serializer != nil {
		body, err := p.serializer.Encode(resp)
		return body, p.serializer.ContentType(), err
	}

	var body []byte
	if err := resp.GetError(); err != nil {
		body = []byte(err.Error())
	}

	return body, "application/octet-stream", nil
}

// fail turns resp into an error response. Errors that aren't a *types.Error
// are internal server errors.
func (p *Pipeline) fail(resp types.Response, err error) {
	statusCode := http.StatusInternalServerError
	var terr *types.Error
	switch {
	case !errors.As(err, &terr) || terr == nil:
		terr = types.NewError(statusCode, err.Error())
	case terr.StatusCode == 0:
		terr = types.NewError(statusCode, terr.Message)
	default:
		statusCode = terr.StatusCode
	}

	if statusCode >= http.StatusInternalServerError {
		p.logger.Error("request failed", "status", statusCode, "error", err.Error())
	}

	resp.SetStatusCode(statusCode)
	resp.SetError(p.errorLevel.Sanitize(terr))
}

//nolint:ireturn // Required for generic functionality.
func newInstance[T any]() T {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Pointer {
		panic("handler request and response types must be pointers to structs")
	}

	return reflect.New(t.Elem()).Interface().(T) //nolint:forcetypeassert // Guaranteed by the type check.
}

func isNilResponse(resp types.Response) bool {
	return resp == nil || reflect.ValueOf(resp).IsNil()
}
