// Package fetch retrieves job postings over HTTP and reduces them to plain
// text suitable for extraction prompts.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	clog "github.com/xrsl/jobpilot/pkg/log"
)

// Client fetches and cleans job postings.
type Client struct {
	http      *http.Client
	userAgent string
}

// New creates a fetch client with a 30 second request timeout.
func New(userAgent string) *Client {
	if userAgent == "" {
		userAgent = "jobpilot"
	}
	return &Client{
		http:      &http.Client{Timeout: 30 * time.Second},
		userAgent: userAgent,
	}
}

// Fetch downloads the posting at url and returns its cleaned text.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("fetch failed: rate limited (HTTP 429)")
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("fetch failed: access denied (HTTP %d)", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("fetch failed: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read failed: %w", err)
	}

	text, err := Clean(string(body))
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("posting at %s is empty after cleaning", url)
	}
	clog.Debug("posting fetched", "url", url, "chars", len(text))
	return text, nil
}

// Clean strips markup and boilerplate from an HTML document and returns the
// remaining text, one non-empty line per row.
func Clean(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, nav, footer, header, noscript, iframe").Remove()

	lines := strings.Split(doc.Text(), "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n"), nil
}
