// Package resolver is the client for the external media-resolution API,
// which turns a post/reel shortcode into media URLs plus a caption.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/quickgram/quickgram/internal/relay"
)

// ErrNotFound means the resolver does not know the shortcode.
var ErrNotFound = errors.New("post not found")

// Client calls the resolver API over HTTP. One attempt per request; the
// pipeline owns the no-retry policy.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a resolver client with a bounded request timeout.
func NewClient(log *slog.Logger, baseURL string, timeout time.Duration) *Client {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  log.With(slog.String("component", "resolver")),
	}
}

type mediaResponse struct {
	Items []struct {
		Type string `json:"type"`
		URL  string `json:"url"`
	} `json:"items"`
	Caption string `json:"caption"`
}

// Resolve fetches the media list and caption for shortcode. Item order from
// the API is preserved.
func (c *Client) Resolve(ctx context.Context, shortcode string) (relay.Post, error) {
	url := c.baseURL + "/api/media/" + shortcode
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return relay.Post{}, fmt.Errorf("build resolver request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return relay.Post{}, fmt.Errorf("resolver request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return relay.Post{}, fmt.Errorf("%w: %s", ErrNotFound, shortcode)
	case resp.StatusCode != http.StatusOK:
		return relay.Post{}, fmt.Errorf("resolver status: %d", resp.StatusCode)
	}

	var body mediaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return relay.Post{}, fmt.Errorf("decode resolver response: %w", err)
	}

	post := relay.Post{Caption: body.Caption}
	for _, item := range body.Items {
		kind := relay.MediaPhoto
		if strings.EqualFold(strings.TrimSpace(item.Type), "video") {
			kind = relay.MediaVideo
		}
		post.Items = append(post.Items, relay.MediaItem{Kind: kind, SourceURL: item.URL})
	}
	c.logger.Debug("resolved post",
		slog.String("shortcode", shortcode),
		slog.Int("items", len(post.Items)),
	)
	return post, nil
}
