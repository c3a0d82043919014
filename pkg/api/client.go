// Package api is the single choke point for every call to the backend. It
// attaches the bearer token, tags each request with an id, normalizes every
// failure into *Error and runs the 401 refresh-and-retry protocol: at most
// one refresh and one re-dispatch per request, never for auth endpoints.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/logging"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/session"
	"github.com/AbduManaam/F.E-Commerce-sub000/pkg/tokenstore"
)

const refreshPath = "/auth/refresh"

type Client struct {
	baseURL string
	http    *http.Client
	store   *tokenstore.Store
	signal  *session.Signal

	// Concurrent 401s coalesce into one refresh network call. Correctness
	// does not depend on this; it avoids refresh storms and token-rotation
	// races at the backend.
	mu       sync.Mutex
	inflight *refreshCall
}

type refreshCall struct {
	done chan struct{}
	err  error
}

// pending pairs an immutable descriptor with its retry accounting. The
// retried flag, not object identity, is what bounds the protocol.
type pending struct {
	req     Request
	retried bool
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func NewClient(baseURL string, store *tokenstore.Store, signal *session.Signal, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		store:   store,
		signal:  signal,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do runs the full protocol for one request and resolves to either a
// response or a normalized *Error. Expected failures never come back as
// anything else.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	p := &pending{req: req}

	resp, apiErr := c.dispatch(ctx, p.req)
	if apiErr == nil {
		return resp, nil
	}

	if apiErr.Blocked() {
		c.invalidate(ctx, session.ReasonBlocked)
		return nil, apiErr
	}

	if !apiErr.Unauthorized() || p.req.AuthEndpoint || p.retried {
		return nil, apiErr
	}

	p.retried = true
	if err := c.refreshToken(ctx); err != nil {
		logging.FromContext(ctx).Warn("token refresh failed",
			"path", p.req.Path, "error", err)
		c.invalidate(ctx, session.ReasonExpired)
		return nil, apiErr
	}

	// New token is persisted before this point; the retry picks it up from
	// the store. Whatever the retry yields is final.
	resp, apiErr = c.dispatch(ctx, p.req)
	if apiErr != nil {
		if apiErr.Blocked() {
			c.invalidate(ctx, session.ReasonBlocked)
		}
		return nil, apiErr
	}
	return resp, nil
}

func (c *Client) dispatch(ctx context.Context, req Request) (*Response, *Error) {
	token := ""
	if tok := c.store.Get(); tok != nil {
		token = tok.Value
	}
	requestID := uuid.NewString()

	httpReq, err := req.build(c.baseURL, token, requestID)
	if err != nil {
		return nil, descriptorError(err)
	}
	httpReq = httpReq.WithContext(ctx)

	l := logging.FromContext(ctx).With(
		"method", req.Method, "path", req.Path, "request_id", requestID)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		l.Warn("request failed", "error", err)
		return nil, networkError(err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		l.Warn("request failed", "error", err)
		return nil, networkError(err)
	}

	if httpResp.StatusCode >= 400 {
		apiErr := errorFromBody(httpResp.StatusCode, body)
		l.Warn("request completed", "status", httpResp.StatusCode, "code", apiErr.Code)
		return nil, apiErr
	}

	l.Debug("request completed", "status", httpResp.StatusCode, "bytes", len(body))
	return &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: body}, nil
}

// Refresh rotates the access token eagerly, without waiting for a 401. The
// session itself is untouched; concurrent callers share one network call
// exactly like the 401 path.
func (c *Client) Refresh(ctx context.Context) error {
	return c.refreshToken(ctx)
}

// refreshToken performs at most one concurrent refresh; callers that arrive
// while one is in flight wait for its outcome.
func (c *Client) refreshToken(ctx context.Context) error {
	c.mu.Lock()
	if call := c.inflight; call != nil {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	call := &refreshCall{done: make(chan struct{})}
	c.inflight = call
	c.mu.Unlock()

	call.err = c.doRefresh(ctx)

	c.mu.Lock()
	c.inflight = nil
	c.mu.Unlock()
	close(call.done)
	return call.err
}

func (c *Client) doRefresh(ctx context.Context) error {
	resp, apiErr := c.dispatch(ctx, Request{
		Method:       http.MethodPost,
		Path:         refreshPath,
		AuthEndpoint: true,
	})
	if apiErr != nil {
		return apiErr
	}

	var payload struct {
		AccessToken       string `json:"access_token"`
		AccessTokenPascal string `json:"AccessToken"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return descriptorError(err)
	}
	token := payload.AccessToken
	if token == "" {
		token = payload.AccessTokenPascal
	}
	if token == "" {
		return &Error{Status: resp.Status, Code: "bad_refresh_payload", Message: "refresh response carried no token"}
	}
	c.store.Set(token)
	return nil
}

// invalidate tears the local session down and broadcasts. Navigation is the
// subscribers' business.
func (c *Client) invalidate(ctx context.Context, reason session.Reason) {
	logging.FromContext(ctx).Info("session invalidated", "reason", string(reason))
	c.store.Clear()
	c.signal.Publish(reason)
}
