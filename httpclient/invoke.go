package httpclient

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/gaborage/webclient/retry"
)

// Invoke performs a logical call and decodes the JSON response body into T.
// An empty body yields the zero value. Every failure, including a body that
// cannot be decoded, is returned as a *retry.FinalFailure.
func Invoke[T any](ctx context.Context, c Client, method string, req *Request) (T, error) {
	var out T

	resp, err := c.Do(ctx, method, req)
	if err != nil {
		return out, err
	}
	if len(resp.Body) == 0 {
		return out, nil
	}

	if err := json.Unmarshal(resp.Body, &out); err != nil {
		var zero T
		return zero, &retry.FinalFailure{
			Tag:      retry.Permanent,
			Attempts: resp.Stats.Attempts,
			Err:      NewDecodeError(fmt.Sprintf("%T", out), err),
		}
	}
	return out, nil
}

// JSONBody encodes v as a JSON request body
func JSONBody(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, NewValidationError("cannot encode request body: "+err.Error(), "body")
	}
	return body, nil
}

// NewJSONRequest builds a request for url with v encoded as its JSON body
func NewJSONRequest(url string, v any) (*Request, error) {
	body, err := JSONBody(v)
	if err != nil {
		return nil, err
	}
	return &Request{
		URL:     url,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
	}, nil
}
