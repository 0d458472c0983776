package feed

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yarko-w/jw-daily-text/internal/fetch"
)

const (
	// DefaultBaseURL is the public Watchtower Online Library host.
	DefaultBaseURL = "https://wol.jw.org"
	// DefaultLanguage selects the English research library.
	DefaultLanguage = "r1/lp-e"
)

// ErrNoItems is returned when the feed answered but carried no usable item.
var ErrNoItems = errors.New("feed: no daily text items")

// Item is one entry of the daily text feed. Content holds the HTML fragment
// that extract operates on.
type Item struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

type response struct {
	Items []Item `json:"items"`
}

// Getter is the subset of fetch.Client used by the feed client.
type Getter interface {
	GetJSON(ctx context.Context, rawURL string, v any) error
}

var _ Getter = (*fetch.Client)(nil)

// Client reads the per-day feed endpoint.
type Client struct {
	HTTP     Getter
	BaseURL  string
	Language string
}

// URL returns the feed endpoint for the calendar day of date.
func (c *Client) URL(date time.Time) string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	lang := strings.Trim(strings.TrimSpace(c.Language), "/")
	if lang == "" {
		lang = DefaultLanguage
	}
	return fmt.Sprintf("%s/wol/dt/%s/%d/%d/%d", base, lang, date.Year(), int(date.Month()), date.Day())
}

// DailyText fetches the feed for date and returns the first item that has
// content.
func (c *Client) DailyText(ctx context.Context, date time.Time) (Item, error) {
	if c.HTTP == nil {
		return Item{}, errors.New("feed: no http client")
	}
	endpoint := c.URL(date)
	if _, err := url.Parse(endpoint); err != nil {
		return Item{}, fmt.Errorf("feed url: %w", err)
	}
	var resp response
	if err := c.HTTP.GetJSON(ctx, endpoint, &resp); err != nil {
		return Item{}, fmt.Errorf("daily text feed: %w", err)
	}
	for _, it := range resp.Items {
		if strings.TrimSpace(it.Content) != "" {
			log.Debug().Str("url", endpoint).Str("title", it.Title).Msg("feed item")
			return it, nil
		}
	}
	return Item{}, ErrNoItems
}
