// Package scrape fetches station homepages and extracts structured-data
// blocks from them. It is a best-effort source: pages are read through a
// size cap, decoded according to their declared charset, and mined for
// JSON-LD with pattern matching rather than a full HTML parse.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/e-radio/stationctl/pkg/errors"
)

const (
	// DefaultUserAgent identifies the tool to station sites.
	DefaultUserAgent = "Mozilla/5.0 (compatible; E-RadioBot/1.0; +https://e-radio.github.io)"

	maxResponseBytes = 1 << 20
	requestTimeout   = 20 * time.Second
)

// allowedContentTypes are the response types worth mining for JSON-LD.
var allowedContentTypes = []string{
	"text/html",
	"application/xhtml+xml",
	"application/json",
	"text/plain",
}

// Fetcher retrieves homepage documents.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client (used by tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) { f.httpClient = hc }
}

// NewFetcher creates a homepage fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{Timeout: requestTimeout},
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves a page and returns its text, decoded from the charset the
// response declares. Responses outside the content-type allow-list and
// non-2xx statuses are errors; bodies are read up to a fixed cap.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", errors.WrapAPI("homepage", 0, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", errors.WrapAPI("homepage", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.NewAPIError("homepage", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	contentType := resp.Header.Get("Content-Type")
	if !contentTypeAllowed(contentType) {
		return "", errors.WrapAPI("homepage", 0,
			fmt.Errorf("%w: %s", errors.ErrUnsupportedContentType, contentType))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", errors.WrapIO("read", pageURL, err)
	}

	reader, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		// Unknown charset: fall back to the raw bytes.
		return string(raw), nil
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return string(raw), nil
	}
	return string(decoded), nil
}

func contentTypeAllowed(contentType string) bool {
	for _, allowed := range allowedContentTypes {
		if strings.Contains(contentType, allowed) {
			return true
		}
	}
	return false
}
