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
	"os"
	"time"
)

const defaultBaseURL = "http://localhost:5000/api"

const (
	networkErrMsg = "Network error. Please check your connection and try again."
	uploadErrMsg  = "Upload failed. Please check your file size and your connection, then try again."
)

// Envelope is the wire shape every backend response uses.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Errors  []FieldError    `json:"errors,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the normalized failure shape: backend application errors,
// non-2xx statuses and transport failures all surface as *Error.
// Transport failures carry Status 0.
type Error struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Status  int          `json:"status"`
}

// Error prefers the first field-level validation message over the
// generic envelope message when one is present.
func (e *Error) Error() string {
	if len(e.Errors) > 0 && e.Errors[0].Message != "" {
		return e.Errors[0].Message
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsNotFound reports whether the error is a 404 lookup absence, which
// callers treat as a control-flow branch rather than a failure.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Upload is one file part of a multipart request.
type Upload struct {
	Field    string
	Filename string
	MimeType string
	Data     []byte
}

// Client issues requests against the portal backend and normalizes the
// success/error envelope. All calls time out via the underlying
// http.Client and retry exactly once on transport-level failures;
// application errors are never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ResolveBaseURL picks the backend base URL: the explicit value when
// set, else the PORTAL_API_BASE_URL environment variable, else the
// local development default.
func ResolveBaseURL(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv("PORTAL_API_BASE_URL"); v != "" {
		return v
	}
	return defaultBaseURL
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    ResolveBaseURL(baseURL),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.doJSON(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	return c.doJSON(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = b
	}
	return c.do(ctx, method, path, "application/json", payload, out, networkErrMsg)
}

// PostMultipart sends fields and files as multipart/form-data. The
// Content-Type header comes from the multipart writer so the boundary
// is never set by hand.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, files []Upload, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return fmt.Errorf("create file part: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return fmt.Errorf("write file part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, w.FormDataContentType(), buf.Bytes(), out, uploadErrMsg)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, payload []byte, out interface{}, transportMsg string) error {
	resp, err := c.send(ctx, method, path, contentType, payload)
	if err != nil {
		// One retry for requests that never produced a response.
		resp, err = c.send(ctx, method, path, contentType, payload)
	}
	if err != nil {
		return &Error{Message: transportMsg, Status: 0}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Message: transportMsg, Status: 0}
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &Error{Message: transportMsg, Status: 0}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		return &Error{
			Message: env.Message,
			Errors:  env.Errors,
			Status:  resp.StatusCode,
		}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path, contentType string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.httpClient.Do(req)
}
