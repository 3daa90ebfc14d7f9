package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// CSRFCookie is the cookie the backend stores its CSRF token in.
	CSRFCookie = "csrftoken"
	// CSRFHeader carries the token on mutating requests.
	CSRFHeader = "X-CSRFToken"

	maxErrorBody = 1 << 20
)

// Form is a flat multipart form body.
type Form map[string]string

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client. A cookie jar is
// installed when the client has none.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client issues requests relative to the backend base URL.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger zerolog.Logger
}

// NewClient builds a client for baseURL, e.g. "https://app.example.com".
func NewClient(baseURL string, options ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute", baseURL)
	}
	c := &Client{
		base:   base,
		http:   &http.Client{},
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("api: cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// SetCookie stores a cookie for the backend host, typically the session and
// CSRF cookies forwarded from the browser.
func (c *Client) SetCookie(name, value string) {
	c.http.Jar.SetCookies(c.base, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
}

// CSRFToken returns the token currently held in the cookie jar.
func (c *Client) CSRFToken() string {
	for _, cookie := range c.http.Jar.Cookies(c.base) {
		if cookie.Name == CSRFCookie {
			return cookie.Value
		}
	}
	return ""
}

// Get fetches path and decodes the JSON body into out when out is non-nil.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post sends form to path.
func (c *Client) Post(ctx context.Context, path string, form Form, out any) error {
	return c.do(ctx, http.MethodPost, path, form, out)
}

// Patch sends a partial update of form to path.
func (c *Client) Patch(ctx context.Context, path string, form Form, out any) error {
	return c.do(ctx, http.MethodPatch, path, form, out)
}

// Delete removes the resource at path.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("api: parse path %q: %w", path, err)
	}
	return c.base.ResolveReference(ref), nil
}

func (c *Client) do(ctx context.Context, method, path string, form Form, out any) error {
	target, err := c.resolve(path)
	if err != nil {
		return err
	}

	var (
		body        io.Reader
		contentType string
	)
	if form != nil {
		payload, ct, err := encodeForm(form)
		if err != nil {
			return err
		}
		body, contentType = payload, ct
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("api: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if method != http.MethodGet && method != http.MethodHead {
		if token := c.CSRFToken(); token != "" {
			req.Header.Set(CSRFHeader, token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, target.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().Str("method", method).Str("path", target.Path).Int("status", resp.StatusCode).Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return DecodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("api: decode %s %s: %w", method, target.Path, err)
	}
	return nil
}

// encodeForm writes form as multipart/form-data with keys in sorted order.
func encodeForm(form Form) (io.Reader, string, error) {
	keys := make([]string, 0, len(form))
	for key := range form {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, key := range keys {
		if err := writer.WriteField(key, form[key]); err != nil {
			return nil, "", fmt.Errorf("api: encode field %q: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("api: encode form: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}
