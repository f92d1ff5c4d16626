// Package api is the HTTP implementation of the submission collaborators.
//
// Protocol: JSON requests, responses wrapped in an envelope of
// {"ok": true, "data": ...} or {"ok": false, "error": "..."}. Authenticated
// routes carry a Bearer JWT obtained at login. The package never retries;
// transient failures surface to the caller as-is.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Client talks to one CRIMSON server. It implements submission.Service.
type Client struct {
	base  string
	hc    *http.Client
	log   *zap.Logger
	token string
}

// Option configures a client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithLogger sets the client logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, &Error{Msg: fmt.Sprintf("invalid base URL %q: %v", baseURL, err)}
	}
	c := &Client{
		base: baseURL,
		hc:   &http.Client{},
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// envelope is the server's uniform response wrapper.
type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

func (c *Client) endpoint(path string) (string, error) {
	u, err := url.JoinPath(c.base, path)
	if err != nil {
		return "", &Error{Msg: fmt.Sprintf("join %q: %v", path, err)}
	}
	return u, nil
}

// do sends one request and decodes the envelope into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	u, err := c.endpoint(path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &Error{Msg: err.Error()}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return &Error{Msg: fmt.Sprintf("%s %s: %v", method, path, err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Msg: fmt.Sprintf("read response: %v", err)}
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &Error{Msg: fmt.Sprintf("%s %s: unexpected response (status %s)", method, path, resp.Status)}
	}
	if !env.OK {
		msg := env.Error
		if msg == "" {
			msg = "unknown error"
		}
		return &ServerError{Status: resp.StatusCode, Msg: msg}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Error{Msg: fmt.Sprintf("decode response data: %v", err)}
		}
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return &Error{Msg: fmt.Sprintf("marshal request: %v", err)}
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

// Login authenticates and stores the returned bearer token.
func (c *Client) Login(ctx context.Context, username, key string) error {
	var data struct {
		Token string `json:"token"`
	}
	payload := map[string]string{"username": username, "key": key}
	if err := c.doJSON(ctx, http.MethodPost, "api/v1/auth/login", payload, &data); err != nil {
		return err
	}
	if data.Token == "" {
		return &Error{Msg: "login response carried no token"}
	}
	c.token = data.Token
	if exp := tokenExpiry(data.Token); !exp.IsZero() {
		c.log.Info("logged in", zap.String("username", username), zap.Time("token_expires", exp))
	}
	return nil
}

// tokenExpiry reads the expiry claim without verifying the signature; the
// server remains the authority, this only feeds the client log.
func tokenExpiry(token string) time.Time {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// Logout invalidates the session and drops the stored token.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, "api/v1/auth/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// Lock acquires the server-side edit lock for instrument.
func (c *Client) Lock(ctx context.Context, instrument string) error {
	return c.doJSON(ctx, http.MethodPut, "api/v1/locks/"+url.PathEscape(instrument), nil, nil)
}

// Unlock releases the server-side edit lock for instrument.
func (c *Client) Unlock(ctx context.Context, instrument string) error {
	return c.doJSON(ctx, http.MethodDelete, "api/v1/locks/"+url.PathEscape(instrument), nil, nil)
}

// Certify asks the server whether the file is an acceptable delivery.
func (c *Client) Certify(ctx context.Context, path string) error {
	payload := map[string]string{"file": filepath.Base(path)}
	return c.doJSON(ctx, http.MethodPost, "api/v1/certify", payload, nil)
}

// Upload stages the files on the server in one multipart request.
func (c *Client) Upload(ctx context.Context, paths []string) error {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return &Error{Msg: fmt.Sprintf("open %q: %v", p, err)}
		}
		part, err := mw.CreateFormFile("files", filepath.Base(p))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		f.Close()
		if err != nil {
			return &Error{Msg: fmt.Sprintf("stage %q: %v", p, err)}
		}
	}
	if err := mw.Close(); err != nil {
		return &Error{Msg: fmt.Sprintf("finish upload: %v", err)}
	}
	return c.do(ctx, http.MethodPost, "api/v1/files", body, mw.FormDataContentType(), nil)
}

// PostSubmission delivers the serialized record and returns the assigned
// submission id.
func (c *Client) PostSubmission(ctx context.Context, document []byte) (string, error) {
	var data struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "api/v1/submissions", bytes.NewReader(document), "application/x-yaml", &data)
	if err != nil {
		return "", err
	}
	return data.ID, nil
}
