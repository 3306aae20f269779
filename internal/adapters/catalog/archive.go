package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/completeness/pkg/logger"
	"github.com/okian/completeness/pkg/retry"
)

// DefaultArchiveURL is the NASA Exoplanet Archive table API.
const DefaultArchiveURL = "https://exoplanetarchive.ipac.caltech.edu/cgi-bin/nstedAPI/nph-nstedAPI"

const defaultFetchTimeout = 2 * time.Minute

// ArchiveOption configures an ArchiveClient.
type ArchiveOption func(*ArchiveClient)

// WithBaseURL overrides the archive endpoint.
func WithBaseURL(u string) ArchiveOption {
	return func(c *ArchiveClient) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) ArchiveOption {
	return func(c *ArchiveClient) {
		if h != nil {
			c.http = h
		}
	}
}

// WithRetryPolicy sets the retry policy for failed downloads.
func WithRetryPolicy(p retry.Policy) ArchiveOption {
	return func(c *ArchiveClient) {
		c.policy = p
	}
}

// WithArchiveLogger sets the logger.
func WithArchiveLogger(l logger.Logger) ArchiveOption {
	return func(c *ArchiveClient) {
		if l != nil {
			c.log = l
		}
	}
}

// ArchiveClient downloads whole tables as CSV.
type ArchiveClient struct {
	baseURL string
	http    *http.Client
	policy  retry.Policy
	log     logger.Logger
}

// NewArchiveClient returns a client for DefaultArchiveURL unless
// configured otherwise.
func NewArchiveClient(opts ...ArchiveOption) *ArchiveClient {
	c := &ArchiveClient{
		baseURL: DefaultArchiveURL,
		http:    &http.Client{Timeout: defaultFetchTimeout},
		policy:  retry.DefaultPolicy(),
		log:     logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.policy.Logger = c.log
	return c
}

// URL returns the download address of table name.
func (c *ArchiveClient) URL(name string) string {
	q := url.Values{}
	q.Set("table", name)
	q.Set("select", "*")
	return c.baseURL + "?" + q.Encode()
}

// Fetch downloads table name. Transport errors, 5xx and 429 responses are
// retried; other non-2xx statuses fail at once with ErrStatus.
func (c *ArchiveClient) Fetch(ctx context.Context, name string) (Table, error) {
	u := c.URL(name)
	c.log.Info(ctx, "downloading catalog", logger.String("table", name), logger.String("url", u))

	var t Table
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return retry.Permanent(err)
		}
		req.Header.Set("Accept", "text/csv")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<12))
			serr := fmt.Errorf("%w: %s: %s", ErrStatus, name, resp.Status)
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return serr
			}
			return retry.Permanent(serr)
		}

		t, err = ReadCSV(name, resp.Body)
		return retry.Permanent(err)
	})
	if err != nil {
		return Table{}, fmt.Errorf("%w: %s: %w", ErrFetch, name, err)
	}
	return t, nil
}
