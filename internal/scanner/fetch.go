package scanner

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ContentSource fetches and parses a page. Tests swap in a fake so scan
// processing can run without the network.
type ContentSource interface {
	Fetch(ctx context.Context, address string) (*goquery.Document, string, error)
}

// HTTPContentSource fetches pages over HTTP and parses them with goquery
type HTTPContentSource struct {
	client *http.Client
}

// NewHTTPContentSource creates a content source with a shared pooled client
func NewHTTPContentSource(timeout time.Duration) *HTTPContentSource {
	return &HTTPContentSource{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Fetch retrieves a page and returns the parsed document along with the raw
// HTML, which the scanner uses for element counting.
func (c *HTTPContentSource) Fetch(ctx context.Context, address string) (*goquery.Document, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", address, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "A11y-Scanner/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	html, err := doc.Html()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render HTML: %w", err)
	}

	return doc, html, nil
}

// discoverPages extracts same-host links from a parsed page, in document
// order with duplicates removed. The start page itself is excluded.
func discoverPages(doc *goquery.Document, baseAddress string) []string {
	baseURL, err := url.Parse(baseAddress)
	if err != nil {
		return nil
	}

	seen := map[string]bool{normalizePageURL(baseURL): true}
	var pages []string

	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || href == "" || strings.HasPrefix(href, "#") {
			return
		}

		linkURL, err := url.Parse(href)
		if err != nil {
			return
		}

		resolved := baseURL.ResolveReference(linkURL)
		if resolved.Host != baseURL.Host {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}

		key := normalizePageURL(resolved)
		if seen[key] {
			return
		}
		seen[key] = true
		pages = append(pages, key)
	})

	return pages
}

// normalizePageURL strips the fragment so anchors on the same page do not
// count as separate pages.
func normalizePageURL(u *url.URL) string {
	clone := *u
	clone.Fragment = ""
	return clone.String()
}
