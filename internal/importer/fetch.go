package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

const maxDocumentBytes = 16 << 20

// FetcherConfig configures the schedule page client.
type FetcherConfig struct {
	UserAgent string
	Referer   string
	Timeout   time.Duration
}

// Fetcher downloads schedule pages. It makes exactly one attempt per call.
type Fetcher struct {
	client    *http.Client
	userAgent string
	referer   string
}

// NewFetcher builds a fetcher with a bounded timeout.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		referer:   cfg.Referer,
	}
}

// Fetch returns the page body decoded to UTF-8.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if f.referer != "" {
		req.Header.Set("Referer", f.referer)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	utf8Body, err := charset.NewReader(io.LimitReader(resp.Body, maxDocumentBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	body, err := io.ReadAll(utf8Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}

// ParseDocument builds a goquery document from HTML bytes.
func ParseDocument(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// ParseHTML locates the schedule table in body and extracts its rows.
// A document without a schedule table yields ErrTableNotFound.
func ParseHTML(body []byte, filter RowFilter, parser *Parser) ([]models.ParsedExamRow, error) {
	doc, err := ParseDocument(body)
	if err != nil {
		return nil, err
	}
	table, err := LocateTable(doc)
	if err != nil {
		return nil, err
	}
	return ExtractRows(MapColumns(table), filter, parser), nil
}

// DecodeHTML converts an uploaded page to UTF-8 using the declared content type or in-document charset hints.
func DecodeHTML(body []byte, contentType string) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("decode html: %w", err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode html: %w", err)
	}
	return decoded, nil
}
