package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// SearchOptions narrows a search. Zero values are omitted from the request.
type SearchOptions struct {
	Page     int
	Year     int
	Language string
}

func (o SearchOptions) values(query string) url.Values {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	page := o.Page
	if page < 1 {
		page = 1
	}
	params.Set("page", strconv.Itoa(page))
	if o.Language != "" {
		params.Set("language", o.Language)
	}
	return params
}

// SearchMulti searches movies, shows and people at once
func (c *Client) SearchMulti(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error) {
	var resp SearchResponse
	if err := c.get(ctx, "/search/multi", opts.values(query), &resp); err != nil {
		return nil, fmt.Errorf("failed to search multi: %w", err)
	}
	return &resp, nil
}

// SearchMovies searches movies, optionally restricted to a release year
func (c *Client) SearchMovies(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error) {
	params := opts.values(query)
	if opts.Year > 0 {
		params.Set("year", strconv.Itoa(opts.Year))
	}

	var resp SearchResponse
	if err := c.get(ctx, "/search/movie", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to search movies: %w", err)
	}
	for i := range resp.Results {
		resp.Results[i].MediaType = MediaTypeMovie
	}
	return &resp, nil
}

// SearchTV searches shows, optionally restricted to a first air year
func (c *Client) SearchTV(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error) {
	params := opts.values(query)
	if opts.Year > 0 {
		params.Set("first_air_date_year", strconv.Itoa(opts.Year))
	}

	var resp SearchResponse
	if err := c.get(ctx, "/search/tv", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to search tv: %w", err)
	}
	for i := range resp.Results {
		resp.Results[i].MediaType = MediaTypeTV
	}
	return &resp, nil
}

// GetMovieDetails fetches a movie by TMDB id
func (c *Client) GetMovieDetails(ctx context.Context, id int) (*MovieDetails, error) {
	var details MovieDetails
	if err := c.get(ctx, "/movie/"+strconv.Itoa(id), nil, &details); err != nil {
		return nil, fmt.Errorf("failed to get movie %d: %w", id, err)
	}
	return &details, nil
}

// GetTVDetails fetches a show by TMDB id
func (c *Client) GetTVDetails(ctx context.Context, id int) (*TVDetails, error) {
	var details TVDetails
	if err := c.get(ctx, "/tv/"+strconv.Itoa(id), nil, &details); err != nil {
		return nil, fmt.Errorf("failed to get tv show %d: %w", id, err)
	}
	return &details, nil
}
