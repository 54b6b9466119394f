package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/gameclient/internal/common"
	"github.com/dmitrijs2005/gameclient/internal/logging"
)

// HTTPClient talks JSON over HTTP to the backend.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     logging.Logger

	// concurrent 401s share one refresh call
	refreshGroup singleflight.Group
}

func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenSource, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log.With("component", "http_client"),
	}
}

func (c *HTTPClient) Get(ctx context.Context, endpoint string) (*Response, error) {
	return c.sendWithRefresh(ctx, http.MethodGet, endpoint, nil)
}

func (c *HTTPClient) Post(ctx context.Context, endpoint string, body any) (*Response, error) {
	return c.sendWithRefresh(ctx, http.MethodPost, endpoint, body)
}

func (c *HTTPClient) Put(ctx context.Context, endpoint string, body any) (*Response, error) {
	return c.sendAuthorized(ctx, http.MethodPut, endpoint, body)
}

func (c *HTTPClient) Delete(ctx context.Context, endpoint string) (*Response, error) {
	return c.sendAuthorized(ctx, http.MethodDelete, endpoint, nil)
}

func (c *HTTPClient) Login(ctx context.Context, req LoginRequest) (*Response, error) {
	return c.send(ctx, http.MethodPost, common.LoginPath, req, "")
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*Response, error) {
	return c.send(ctx, http.MethodPost, common.RegisterPath, req, "")
}

func (c *HTTPClient) sendAuthorized(ctx context.Context, method, endpoint string, body any) (*Response, error) {
	return c.send(ctx, method, endpoint, body, c.accessToken(ctx))
}

// sendWithRefresh retries once after a token refresh when a request that
// carried a token comes back 401. If the refresh cannot be done the first
// response is returned as is.
func (c *HTTPClient) sendWithRefresh(ctx context.Context, method, endpoint string, body any) (*Response, error) {
	token := c.accessToken(ctx)

	resp, err := c.send(ctx, method, endpoint, body, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || token == "" {
		return resp, nil
	}

	fresh, ok := c.refresh(ctx)
	if !ok {
		return resp, nil
	}

	return c.send(ctx, method, endpoint, body, fresh)
}

func (c *HTTPClient) accessToken(ctx context.Context) string {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		c.log.Warn(ctx, "reading access token failed", "error", err)
		return ""
	}
	return token
}

// refresh joins the in-flight refresh or starts one. The shared call is not
// bound to any single caller's cancellation; the client timeout still limits
// it. A caller whose ctx ends stops waiting without affecting the others.
func (c *HTTPClient) refresh(ctx context.Context) (string, bool) {
	ch := c.refreshGroup.DoChan("refresh", func() (any, error) {
		return c.doRefresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		c.log.Warn(ctx, "token refresh abandoned", "error", ctx.Err())
		return "", false
	case r := <-ch:
		if r.Err != nil {
			c.log.Warn(ctx, "token refresh failed", "error", r.Err)
			return "", false
		}
		return r.Val.(string), true
	}
}

func (c *HTTPClient) doRefresh(ctx context.Context) (string, error) {
	rt, err := c.tokens.RefreshToken(ctx)
	if err != nil {
		return "", fmt.Errorf("read refresh token: %w", err)
	}
	if rt == "" {
		return "", fmt.Errorf("no refresh token")
	}

	resp, err := c.send(ctx, http.MethodPost, common.TokenRefreshPath, refreshRequest{Refresh: rt}, "")
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
	}

	var rr refreshResponse
	if err := resp.Decode(&rr); err != nil || rr.Access == "" {
		return "", fmt.Errorf("refresh response has no access token")
	}

	if err := c.tokens.SetAccessToken(ctx, rr.Access); err != nil {
		// the request can still be retried with the new token
		c.log.Warn(ctx, "storing refreshed access token failed", "error", err)
	}

	return rr.Access, nil
}

func (c *HTTPClient) send(ctx context.Context, method, endpoint string, body any, token string) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrNetwork, err)
	}

	requestID := uuid.NewString()
	req.Header.Set(common.ContentTypeHeaderName, common.ContentTypeJSON)
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", method, "endpoint", endpoint, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrNetwork, err)
	}

	c.log.Debug(ctx, "request done",
		"method", method,
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: malformed JSON (status %d)", ErrNetwork, resp.StatusCode)
	}

	return &Response{StatusCode: resp.StatusCode, RequestID: requestID, Body: raw}, nil
}
