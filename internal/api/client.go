// Package api is the console's client for the admin HTTP API.
// Every request is credentialed: the session cookie set by login is kept in
// the client's jar and sent with every later request.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"

	"github.com/robby/adminctl/internal/logging"
)

// Error is a non-2xx response. Message is the server-supplied message, or a
// generic "status: <code> <text>" when the body carried none.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsStatus reports whether err is an API error with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Message returns the text to show a user for err: the server message for
// API errors, the error text otherwise.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// Client is a credentialed JSON client for the admin API.
type Client struct {
	http *http.Client
	base *url.URL
	log  *logrus.Logger
}

// New creates a client for the API rooted at baseURL. log may be nil.
func New(baseURL string, log *logrus.Logger) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse API URL: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	jar, err := newJar()
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = logging.Discard()
	}

	return &Client{
		http: &http.Client{Jar: jar},
		base: base,
		log:  log,
	}, nil
}

// ResetSession forgets every session cookie.
func (c *Client) ResetSession() error {
	jar, err := newJar()
	if err != nil {
		return err
	}
	c.http.Jar = jar
	return nil
}

// Get fetches path and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, nil, out)
}

// Post sends body as JSON to path and decodes the JSON response into out.
// out may be nil.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Delete sends a DELETE to path with query parameters and decodes the JSON
// response into out. out may be nil.
func (c *Client) Delete(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodDelete, path, query, nil, out)
}

// do executes one request. A 2xx response with an empty or non-JSON body is
// a success that leaves out untouched.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target, err := c.resolve(path, query)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	entry := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       target.Path,
		"request_id": requestID,
	})

	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("failed to encode %s body: %w", path, err)
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		entry.WithError(err).Warn("request failed")
		return fmt.Errorf("failed to %s %s: %w", strings.ToLower(method), path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", path, err)
	}
	entry = entry.WithField("status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode, Message: errorMessage(resp, payload)}
		entry.WithField("message", apiErr.Message).Info("request rejected")
		return apiErr
	}

	entry.Debug("request ok")
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		entry.WithError(err).Debug("response body is not JSON, ignoring")
	}
	return nil
}

// resolve joins an escaped relative path onto the base URL.
func (c *Client) resolve(path string, query url.Values) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse path %q: %w", path, err)
	}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	return c.base.ResolveReference(ref), nil
}

// errorMessage extracts {"message": ...} from an error body, falling back to
// the status line.
func errorMessage(resp *http.Response, payload []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	return fmt.Sprintf("status: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}

func newJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return jar, nil
}
