package ingestion

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/jonathan/job-autopilot/internal/db"
	"github.com/jonathan/job-autopilot/internal/fetch"
)

// FeedSource turns RSS or Atom job feeds into listings.
type FeedSource struct {
	client HTTPClient
}

// NewFeedSource creates a feed source. A nil client gets a 30 second timeout.
func NewFeedSource(client HTTPClient) *FeedSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &FeedSource{client: client}
}

// Fetch downloads and parses a feed.
func (f *FeedSource) Fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", fetch.DefaultUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// Listings fetches a feed and normalizes its items.
func (f *FeedSource) Listings(ctx context.Context, url string, now time.Time) ([]db.Job, error) {
	feed, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	jobs := make([]db.Job, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		jobs = append(jobs, NormalizeItem(item, feed.Title, now))
	}
	return jobs, nil
}

// ItemID derives a listing id from a feed item: a hash of its GUID, or of
// title and link when the item has no GUID.
func ItemID(item *gofeed.Item) string {
	key := item.GUID
	if key == "" {
		key = item.Title + "|" + item.Link
	}
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("rss-%x", h[:8])
}

// NormalizeItem converts a feed item into a listing. Feeds rarely carry
// structured company or location fields, so the author (or the feed title)
// stands in for the company and the location falls back to Sverige.
func NormalizeItem(item *gofeed.Item, feedTitle string, now time.Time) db.Job {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = UnknownTitle
	}

	company := ""
	if item.Author != nil {
		company = strings.TrimSpace(item.Author.Name)
	}
	if company == "" {
		company = strings.TrimSpace(feedTitle)
	}
	if company == "" {
		company = UnknownCompany
	}

	location := DefaultLocation
	for _, c := range item.Categories {
		if c = strings.TrimSpace(c); c != "" {
			location = c
			break
		}
	}

	desc := item.Description
	if desc == "" {
		desc = item.Content
	}

	return db.Job{
		ID:          ItemID(item),
		Title:       title,
		Company:     company,
		Location:    location,
		Description: TruncateRunes(fetch.StripHTML(desc), MaxDescriptionRunes),
		URL:         strings.TrimSpace(item.Link),
		Source:      db.SourceRSS,
		Priority:    ClassifyPriority(nil, now),
		LinkStatus:  db.LinkActive,
	}
}
