package graph

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
)

const defaultBaseURL = "https://graph.microsoft.com/v1.0"

// TokenProvider yields a bearer token for each request.
type TokenProvider func(ctx context.Context) (string, error)

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL       string
	TokenProvider TokenProvider
	HTTPClient    *http.Client
}

// Client is a minimal Microsoft Graph REST client.
type Client struct {
	baseURL       string
	tokenProvider TokenProvider
	httpClient    *http.Client
}

// NewClient creates a Graph client.
func NewClient(opts ClientOptions) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL:       baseURL,
		tokenProvider: opts.TokenProvider,
		httpClient:    httpClient,
	}
}

// NotFoundError reports a Graph 404.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("graph resource not found: %s", e.Path)
}

// IsNotFound reports whether err is a Graph 404. Cleanup paths use this to
// decide that a missing remote object counts as done.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// do performs a Graph request. path may be relative to the base URL or an
// absolute URL (beta endpoints). A nil out discards the response body; an
// *[]byte out receives it raw.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	if c.tokenProvider == nil {
		return fmt.Errorf("graph token provider is required")
	}
	token, err := c.tokenProvider(ctx)
	if err != nil {
		return fmt.Errorf("graph token: %w", err)
	}

	endpoint := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		endpoint = c.baseURL + path
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
	case []byte:
		reqBody = bytes.NewReader(b)
		contentType = "application/octet-stream"
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNotFound {
		return &NotFoundError{Path: path}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("graph %s %s failed: status=%d body=%s",
			method, path, resp.StatusCode, truncate(string(respBody), 512))
	}

	switch target := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*target = respBody
		return nil
	default:
		if len(respBody) == 0 {
			return nil
		}
		return json.Unmarshal(respBody, out)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
