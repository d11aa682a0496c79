package submit

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultTimeout covers slow uploads of multi-article payloads.
	DefaultTimeout = 60 * time.Second

	// DefaultUserAgent identifies the CLI to the endpoint.
	DefaultUserAgent = "wechat-blog/1.0"

	submissionsPath = "/api/submissions"
	healthPath      = "/health"

	// maxErrorBodyBytes bounds the response excerpt quoted in errors.
	maxErrorBodyBytes = 512
)

// Sentinel errors for submission.
var (
	ErrUnauthorized = errors.New("submission rejected: invalid or missing token")
	ErrRemoteStatus = errors.New("unexpected remote status")
)

// Client talks to one blog submission endpoint.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// WithToken sets the bearer token sent with each request.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout sets a custom timeout for the HTTP client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the HTTP client entirely (e.g., by tests).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithInsecureTLS disables certificate verification, for endpoints behind
// self-signed certs on internal networks.
func WithInsecureTLS() ClientOption {
	return func(c *Client) {
		c.httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- opt-in via config verify_ssl=false
		}
	}
}

// NewClient creates a client for the given base URL (scheme + host, no
// trailing path).
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Receipt is the endpoint's answer to a submission. Folder is empty when
// the endpoint accepted the payload without storing it; that is a valid
// outcome, not an error.
type Receipt struct {
	Stored bool            `json:"stored"`
	Folder string          `json:"folder,omitempty"`
	Raw    json.RawMessage `json:"raw,omitempty"`
}

// Submit POSTs the manifest and payload zip as one multipart request.
func (c *Client) Submit(ctx context.Context, manifest Manifest, payloadPath string) (*Receipt, error) {
	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}

	payload, err := os.Open(payloadPath) // #nosec G304 -- payload we just built
	if err != nil {
		return nil, fmt.Errorf("opening payload: %w", err)
	}
	defer payload.Close()

	body, contentType, err := multipartBody(manifestJSON, payload, filepath.Base(payloadPath))
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+submissionsPath, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting submission: %w", err)
	}
	defer resp.Body.Close()

	return parseReceipt(resp)
}

// multipartBody assembles the manifest field and payload_zip file part.
// The whole body is buffered in memory, which is fine for article-sized
// archives.
func multipartBody(manifestJSON []byte, payload io.Reader, fileName string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("manifest", string(manifestJSON)); err != nil {
		return nil, "", fmt.Errorf("writing manifest field: %w", err)
	}

	fw, err := w.CreateFormFile("payload_zip", fileName)
	if err != nil {
		return nil, "", fmt.Errorf("creating payload part: %w", err)
	}
	if _, err := io.Copy(fw, payload); err != nil {
		return nil, "", fmt.Errorf("copying payload: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finishing multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// parseReceipt interprets the endpoint's response.
func parseReceipt(resp *http.Response) (*Receipt, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %s: %s", ErrRemoteStatus, resp.Status, excerpt(raw))
	}

	var fields struct {
		Folder string `json:"folder"`
	}
	// A non-JSON 2xx body still counts as accepted-but-not-stored
	_ = json.Unmarshal(raw, &fields)

	return &Receipt{
		Stored: fields.Folder != "",
		Folder: fields.Folder,
		Raw:    raw,
	}, nil
}

// Health checks the endpoint's health route.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reaching %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("%w: %s: %s", ErrRemoteStatus, resp.Status, excerpt(raw))
	}
	return nil
}

// excerpt trims a response body for inclusion in an error message.
func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBodyBytes {
		s = s[:maxErrorBodyBytes] + "..."
	}
	if s == "" {
		return "(empty body)"
	}
	return s
}
