// Package client talks to the remote pharmacy API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"medeasy/admin/domain"
)

// Credential identifies the operator on every request. It is passed
// explicitly to each call rather than read from shared state.
type Credential struct {
	Token   string
	Cookies []*http.Cookie
}

// APIError is the single normalized form of a failed request. Status is 0
// when the request never produced a response.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return "api request failed: " + e.Err.Error()
	case e.Message != "":
		return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("api status %d", e.Status)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// Message returns the server-provided message carried by err, or fallback
// when there is none. Every mutating call reports failures through it.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status != 0 && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return fallback
}

// Client issues JSON requests against the API base URL.
type Client struct {
	base *url.URL
	http *http.Client
}

// New constructs a Client for baseURL. A zero timeout disables it.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}
	return &Client{base: base, http: &http.Client{Timeout: timeout}}, nil
}

func (c *Client) Get(ctx context.Context, cred Credential, path string, query url.Values, out any) error {
	return c.do(ctx, cred, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, cred Credential, path string, body, out any) error {
	return c.do(ctx, cred, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, cred Credential, path string, body, out any) error {
	return c.do(ctx, cred, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, cred Credential, path string) error {
	return c.do(ctx, cred, http.MethodDelete, path, nil, nil, nil)
}

// Accounts fetches the thresholds used for stock badges. On failure the
// defaults are returned together with the error.
func (c *Client) Accounts(ctx context.Context, cred Credential) (domain.AccountSettings, error) {
	settings := domain.DefaultAccountSettings()
	if err := c.Get(ctx, cred, "/api/accounts", nil, &settings); err != nil {
		return domain.DefaultAccountSettings(), err
	}
	return settings, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, cred Credential, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return &APIError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cred.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	}
	for _, cookie := range cred.Cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return normalize(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &APIError{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// normalize turns a non-2xx response into an APIError, lifting the message
// from a JSON body with either a "message" or "error" field.
func normalize(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		apiErr.Err = err
		return apiErr
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}
	return apiErr
}
