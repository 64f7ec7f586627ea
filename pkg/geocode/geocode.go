// Package geocode provides a minimal reverse-geocoding client for a
// Nominatim-compatible service. Every request is spaced by a rate limiter so
// batch runs respect the service's politeness requirements regardless of how
// fast the surrounding loop iterates.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/e-radio/stationctl/pkg/errors"
)

const (
	// DefaultBaseURL is the public Nominatim reverse endpoint.
	DefaultBaseURL = "https://nominatim.openstreetmap.org/reverse"

	// DefaultUserAgent identifies the tool to the geocoding service, as
	// required by the Nominatim usage policy.
	DefaultUserAgent = "Mozilla/5.0 (compatible; E-RadioBot/1.0; +https://e-radio.github.io)"

	// DefaultDelay is the minimum spacing between requests.
	DefaultDelay = time.Second

	maxResponseBytes = 1 << 20
	requestTimeout   = 20 * time.Second
)

// AddressPriority is the fixed order in which address fields are consulted
// when extracting a state value for a station.
var AddressPriority = []string{
	"city",
	"town",
	"village",
	"municipality",
	"county",
	"city_district",
	"suburb",
	"state_district",
	"state",
	"region",
}

// Address is the address object of a reverse-geocoding response. Values are
// kept loosely typed; non-string values read as absent.
type Address map[string]any

// Field returns the trimmed string value of a key, or "" when the key is
// absent, blank, or not a string.
func (a Address) Field(key string) string {
	value, ok := a[key]
	if !ok {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// First returns the first non-empty field among the given keys.
func (a Address) First(keys ...string) string {
	for _, key := range keys {
		if v := a.Field(key); v != "" {
			return v
		}
	}
	return ""
}

// Result is the subset of the reverse-geocoding response the tools use.
type Result struct {
	Address Address `json:"address"`
}

// Client is a reverse-geocoding client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	language   string
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (used by tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points the client at a different reverse endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithLanguage sets the accept-language request parameter.
func WithLanguage(lang string) Option {
	return func(c *Client) { c.language = lang }
}

// WithDelay sets the minimum spacing between requests. Zero disables the
// limiter entirely.
func WithDelay(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// NewClient creates a reverse-geocoding client with a 1s politeness delay
// and the public Nominatim endpoint as defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		language:   "en",
		limiter:    rate.NewLimiter(rate.Every(DefaultDelay), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reverse looks up the address for a coordinate pair. It blocks on the rate
// limiter first, so cancelling the context during the politeness wait
// returns promptly.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", fmt.Sprintf("%.6f", lat))
	query.Set("lon", fmt.Sprintf("%.6f", lon))
	query.Set("addressdetails", "1")
	query.Set("accept-language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.WrapAPI("nominatim", 0, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WrapAPI("nominatim", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAPIError("nominatim", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return nil, errors.WrapAPI("nominatim", 0,
			fmt.Errorf("%w: %s", errors.ErrUnsupportedContentType, contentType))
	}

	var result Result
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	return &result, nil
}
