package api

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
	"go.uber.org/zap"

	"github.com/spec-kit/dealroom-client/pkg/util"
)

// TokenSource supplies the current bearer token, or "" when logged out. The
// session manager satisfies this.
type TokenSource interface {
	Token() string
}

// Options configures a collaborator client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Tokens is optional; without it the client sends unauthenticated
	// requests (the collaborator is expected to reject them).
	Tokens TokenSource
	// OnAuthFailure fires when any call is rejected with HTTP 401, before
	// the error is returned. Wired to the session manager's expiry path.
	OnAuthFailure func(context.Context)
	Logger        *zap.Logger
}

// Client is the shared HTTP transport for the auth, deals and messages
// collaborators. Credentials ride on a RoundTripper so every outgoing
// request goes through one attach point.
type Client struct {
	base          string
	http          *http.Client
	onAuthFailure func(context.Context)
	logger        *zap.Logger
}

// NewClient builds a client for the given collaborator base URL.
func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		base: strings.TrimRight(opts.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: &authTransport{next: http.DefaultTransport, tokens: opts.Tokens},
		},
		onAuthFailure: opts.OnAuthFailure,
		logger:        logger,
	}
}

// authTransport attaches the bearer token (when one is cached) and a request
// ID to every outgoing request.
type authTransport struct {
	next   http.RoundTripper
	tokens TokenSource
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("X-Request-ID", uuid.NewString())
	if t.tokens != nil {
		if token := t.tokens.Token(); token != "" {
			clone.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return t.next.RoundTrip(clone)
}

// errorBody matches the message shapes the backend generations emit.
type errorBody struct {
	Message string `json:"message"`
	Msg     string `json:"msg"`
	Error   string `json:"error"`
}

func (b errorBody) text() string {
	switch {
	case b.Message != "":
		return b.Message
	case b.Msg != "":
		return b.Msg
	default:
		return b.Error
	}
}

// do issues one JSON request. body and out may be nil. Non-2xx responses map
// onto the client error taxonomy; a 401 additionally fires the auth-failure
// hook and is never retried.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("collaborator unreachable",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return util.NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		if c.onAuthFailure != nil {
			c.onAuthFailure(ctx)
		}
		return util.NewSessionExpired(eb.text())
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		c.logger.Debug("collaborator rejected request",
			zap.String("method", method), zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return util.NewRequestError(eb.text(), fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return util.NewRequestError("unexpected response from backend", err)
	}
	return nil
}
