// Package archive talks to the remote ASI data archive: it resolves
// directory listings into entry names and downloads files into the local
// data root.
package archive

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/auroralab/allsky/pkg/observability"
)

// Resolver lists entries of remote archive directories.
type Resolver interface {
	// ListEntries fetches the HTML listing at dirURL and returns the entry
	// names in listing order. The parent-directory link is never included.
	// A non-empty pattern keeps only entries containing it, matched
	// case-insensitively. Zero matches is ErrDirectoryNotFound, carrying the
	// URL and pattern.
	ListEntries(ctx context.Context, dirURL, pattern string) ([]string, error)
}

type httpResolver struct {
	log    logrus.FieldLogger
	client *http.Client
}

// NewResolver creates a Resolver backed by an HTTP client.
func NewResolver(log logrus.FieldLogger, client *http.Client) Resolver {
	return &httpResolver{
		log:    log.WithField("service", "resolver"),
		client: client,
	}
}

func (r *httpResolver) ListEntries(ctx context.Context, dirURL, pattern string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dirURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		observability.ListingsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("list %s: %w", dirURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		observability.ListingsTotal.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("%w: url=%s pattern=%q", ErrDirectoryNotFound, dirURL, pattern)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.ListingsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %s returned %s", ErrBadStatus, dirURL, resp.Status)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		observability.ListingsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("parse listing %s: %w", dirURL, err)
	}

	matched := filterEntries(collectHrefs(doc), pattern)
	if len(matched) == 0 {
		observability.ListingsTotal.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("%w: url=%s pattern=%q", ErrDirectoryNotFound, dirURL, pattern)
	}

	observability.ListingsTotal.WithLabelValues("success").Inc()
	r.log.WithFields(logrus.Fields{"url": dirURL, "pattern": pattern, "entries": len(matched)}).Debug("Resolved listing")

	return matched, nil
}

// collectHrefs walks the parsed document and returns anchor targets in
// document order.
func collectHrefs(doc *html.Node) []string {
	var hrefs []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					hrefs = append(hrefs, attr.Val)
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return hrefs
}

// filterEntries drops navigation links (parent directory, column sorting,
// absolute paths) and applies the case-insensitive substring pattern.
func filterEntries(hrefs []string, pattern string) []string {
	pattern = strings.ToLower(pattern)

	entries := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		if href == "../" || href == ".." || strings.HasPrefix(href, "?") || strings.HasPrefix(href, "/") {
			continue
		}

		name := href
		if unescaped, err := url.PathUnescape(href); err == nil {
			name = unescaped
		}

		if pattern != "" && !strings.Contains(strings.ToLower(name), pattern) {
			continue
		}

		entries = append(entries, name)
	}

	return entries
}
