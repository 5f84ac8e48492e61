package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/watchcrew/watchcrew-backend/pkg/config"
)

// ErrUpstreamNotFound signals the catalog has no record for the requested ID.
var ErrUpstreamNotFound = errors.New("catalog: not found")

// Client talks to the upstream movie catalog API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient constructs a catalog client from config.
func NewClient(cfg config.CatalogConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("catalog api key is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("catalog base url is required")
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// SearchMulti searches movies, TV series, and people in one query.
func (c *Client) SearchMulti(ctx context.Context, query string, page int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	if page > 0 {
		params.Set("page", fmt.Sprint(page))
	}

	var out SearchResponse
	if err := c.get(ctx, "/search/multi", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMovie fetches movie details by catalog ID.
func (c *Client) GetMovie(ctx context.Context, id int64) (*MovieDetails, error) {
	var out MovieDetails
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTV fetches TV series details by catalog ID.
func (c *Client) GetTV(ctx context.Context, id int64) (*TVDetails, error) {
	var out TVDetails
	if err := c.get(ctx, fmt.Sprintf("/tv/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTVSeason fetches one season of a TV series, episodes included.
func (c *Client) GetTVSeason(ctx context.Context, id int64, season int) (*SeasonDetails, error) {
	var out SeasonDetails
	if err := c.get(ctx, fmt.Sprintf("/tv/%d/season/%d", id, season), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPerson fetches person details by catalog ID.
func (c *Client) GetPerson(ctx context.Context, id int64) (*PersonDetails, error) {
	var out PersonDetails
	if err := c.get(ctx, fmt.Sprintf("/person/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Trending fetches the trending feed for a media type and window (day|week).
func (c *Client) Trending(ctx context.Context, mediaType, window string, page int) (*SearchResponse, error) {
	if window == "" {
		window = "day"
	}
	params := url.Values{}
	if page > 0 {
		params.Set("page", fmt.Sprint(page))
	}

	var out SearchResponse
	if err := c.get(ctx, fmt.Sprintf("/trending/%s/%s", mediaType, window), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("catalog url: %w", err)
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("catalog request: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return ErrUpstreamNotFound
	case res.StatusCode != http.StatusOK:
		return fmt.Errorf("catalog status %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("catalog decode: %w", err)
	}
	return nil
}
