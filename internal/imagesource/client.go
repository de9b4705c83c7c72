package imagesource

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/alexivanou/citylist-api/internal/config"
	"github.com/alexivanou/citylist-api/internal/model"
)

// Client downloads city images from the remote image host
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client that authenticates with a bearer token and identifies
// itself with the configured user agent
func NewClient(cfg config.ImageSourceConfig) *Client {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}

	base := http.DefaultTransport.(*http.Transport).Clone()
	base.DialContext = dialer.DialContext

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.ReadTimeout,
			Transport: &headerTransport{
				base:      base,
				authToken: cfg.AuthToken,
				userAgent: cfg.UserAgent,
			},
		},
	}
}

// Fetch returns the body of the image at url. Every failure is reported as
// model.ErrImageNotFound so callers can skip the image.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrImageNotFound, url, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrImageNotFound, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: unexpected status %d", model.ErrImageNotFound, url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrImageNotFound, url, err)
	}
	return data, nil
}

// headerTransport adds the Authorization and User-Agent headers to outgoing requests
type headerTransport struct {
	base      http.RoundTripper
	authToken string
	userAgent string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request
	req = req.Clone(req.Context())
	if t.authToken != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+t.authToken)
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}
