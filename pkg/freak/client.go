package freak

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/killallgit/sheetfreak/pkg/logger"
	"github.com/killallgit/sheetfreak/pkg/stream"
	"github.com/pkg/errors"
)

const (
	DefaultPath    = "/act"
	DefaultTimeout = 5 * time.Minute

	// maxErrorBody bounds how much of a failed response is kept as the reason
	maxErrorBody = 4 << 10
)

// Client talks to the sheet agent backend. It implements stream.Source.
type Client struct {
	baseURL    string
	path       string
	headers    map[string]string
	timeout    time.Duration
	httpClient *http.Client
	log        *logger.Logger
}

type Option func(*Client)

// WithPath sets the endpoint that accepts commands
func WithPath(path string) Option {
	return func(c *Client) {
		c.path = path
	}
}

// WithTimeout bounds a whole request, including reading the streamed body
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithHeaders adds headers to every request
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		if c.headers == nil {
			c.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		path:       DefaultPath,
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
		log:        logger.WithComponent("freak_client"),
	}
	for _, opt := range opts {
		opt(c)
	}

	// never modify a client handed in by the caller
	hc := *c.httpClient
	if hc.Timeout == 0 {
		hc.Timeout = c.timeout
	}
	if len(c.headers) > 0 {
		base := hc.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc.Transport = headerTransport{headers: c.headers, proxied: base}
	}
	c.httpClient = &hc
	return c
}

// Endpoint returns the URL commands are posted to
func (c *Client) Endpoint() string {
	path := c.path
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Open posts cmd and returns the streaming response body. Every failure to
// get a 2xx response with a body is a *stream.StreamUnavailableError.
func (c *Client) Open(ctx context.Context, cmd stream.Command) (io.ReadCloser, error) {
	body, err := json.Marshal(cmd)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal command")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, &stream.StreamUnavailableError{Err: errors.Wrap(err, "failed to create request")}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/plain")

	c.log.Debug("Opening response stream", "url", req.URL.String(), "sheet_id", cmd.SheetID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &stream.StreamUnavailableError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		reason := readReason(resp.Body)
		c.log.Warn("Backend rejected command", "status", resp.StatusCode, "reason", reason)
		return nil, &stream.StreamUnavailableError{StatusCode: resp.StatusCode, Reason: reason}
	}

	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, &stream.StreamUnavailableError{StatusCode: resp.StatusCode, Reason: "response has no body"}
	}
	return resp.Body, nil
}

// Ping checks that the backend answers on its base URL
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "backend %s unreachable", c.baseURL)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("backend %s answered with status %d", c.baseURL, resp.StatusCode)
	}
	return nil
}

// readReason extracts the error text of a failed response. The backend
// answers with plain text; a JSON {"error": ...} body is accepted as well.
func readReason(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}

	var errorResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &errorResp) == nil && errorResp.Error != "" {
		return errorResp.Error
	}
	return strings.TrimSpace(string(raw))
}

type headerTransport struct {
	headers map[string]string
	proxied http.RoundTripper
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.proxied.RoundTrip(req)
}

var _ stream.Source = (*Client)(nil)
