package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request is an immutable call descriptor. Retry accounting lives outside of
// it (see pending in client.go) so dispatching the same descriptor twice is
// safe.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	// Body is JSON-marshaled unless it is nil or []byte. Readers are not
	// accepted: the body must be replayable for the single 401 retry.
	Body any
	// AuthEndpoint marks routes whose purpose is establishing or resetting
	// credentials (login, signup, OTP, password reset). A 401 from these is
	// the answer, not a stale session, so they are exempt from refresh.
	AuthEndpoint bool
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

func (r Request) build(baseURL, token, requestID string) (*http.Request, error) {
	u := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(r.Path, "/")
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch b := r.Body.(type) {
	case nil:
	case []byte:
		body = bytes.NewReader(b)
		contentType = "application/json"
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequest(r.Method, u, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}
