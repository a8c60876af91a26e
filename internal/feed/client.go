package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"ripple/internal/models"
)

// DefaultPageSize is the number of posts requested per page.
const DefaultPageSize = 5

// Client loads feed pages from the API into a Window. It is safe for
// concurrent use; only one page fetch runs at a time.
type Client struct {
	baseURL  string
	pageSize int
	http     *http.Client

	mu      sync.Mutex
	loading bool
	window  *Window
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithPageSize sets the page size requested from the API.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a feed client for the API at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  baseURL,
		pageSize: DefaultPageSize,
		http:     &http.Client{Timeout: 10 * time.Second},
		window:   NewWindow(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Window returns a point-in-time copy of the loaded window. The copy does
// not track later loads; call Window again after LoadMore.
func (c *Client) Window() *Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.window.snapshot()
}

// Visible returns the loaded posts filtered and ordered for display.
func (c *Client) Visible(query string, filter Filter) []*models.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Visible(c.window.Posts(), query, filter)
}

// LoadMore fetches the next page and appends it to the window. It returns
// false without fetching when all pages are loaded or another load is
// already in flight, so repeated scroll events collapse into one request.
func (c *Client) LoadMore(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.loading || !c.window.HasMore() {
		c.mu.Unlock()
		return false, nil
	}
	c.loading = true
	next := c.window.CurrentPage() + 1
	c.mu.Unlock()

	page, err := c.fetchPage(ctx, next)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		return false, err
	}
	c.window.Append(page)
	return true, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) (*models.FeedPage, error) {
	u, err := url.Parse(c.baseURL + "/api/posts")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(c.pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed page %d: %w", page, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching feed page %d: unexpected status %d", page, resp.StatusCode)
	}

	var feedPage models.FeedPage
	if err := json.NewDecoder(resp.Body).Decode(&feedPage); err != nil {
		return nil, fmt.Errorf("decoding feed page %d: %w", page, err)
	}
	return &feedPage, nil
}
