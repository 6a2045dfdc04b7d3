package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/user/pdfscraper-service/pkg/proxy"
)

// ErrTooLarge is returned when a body exceeds the configured cap.
var ErrTooLarge = errors.New("response body exceeds size limit")

// Client is an HTTPFetcher on net/http. Each request gets its own timeout,
// a rotated user agent and, when configured, a rotated proxy.
type Client struct {
	http     *http.Client
	proxies  *proxy.Manager
	maxBytes int64
}

// NewClient creates a new fetch client. maxBytes <= 0 disables the size cap.
func NewClient(proxies *proxy.Manager, timeout time.Duration, maxBytes int64) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxies.ProxyFunc
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		proxies:  proxies,
		maxBytes: maxBytes,
	}
}

// Head issues a HEAD request and returns its headers. The status code is not
// checked: a server that refuses HEAD simply yields no Content-Length.
func (c *Client) Head(ctx context.Context, url string) (http.Header, error) {
	resp, err := c.do(ctx, http.MethodHead, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return resp.Header, nil
}

// Get streams the body of a successful GET into w.
func (c *Client) Get(ctx context.Context, url string, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, http.MethodGet, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if c.maxBytes > 0 {
		body = io.LimitReader(resp.Body, c.maxBytes+1)
	}
	n, err := io.Copy(w, body)
	if err != nil {
		return n, fmt.Errorf("read body: %w", err)
	}
	if c.maxBytes > 0 && n > c.maxBytes {
		return n, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, c.maxBytes)
	}
	return n, nil
}

func (c *Client) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", c.proxies.GetUserAgent())
	req.Header.Set("Accept", "application/pdf,*/*;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", method, err)
	}
	return resp, nil
}
