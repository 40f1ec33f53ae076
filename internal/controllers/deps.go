package controllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/amaumene/zoetrope/internal/services/tmdb"
)

var tracer = otel.Tracer("github.com/amaumene/zoetrope/internal/controllers")

// Clock returns the current time; tests inject a fixed one
type Clock func() time.Time

// TMDBClient is the subset of the TMDB client used by the controllers
type TMDBClient interface {
	Enabled() bool
	SearchMulti(ctx context.Context, query string, opts tmdb.SearchOptions) (*tmdb.SearchResponse, error)
	SearchMovies(ctx context.Context, query string, opts tmdb.SearchOptions) (*tmdb.SearchResponse, error)
	SearchTV(ctx context.Context, query string, opts tmdb.SearchOptions) (*tmdb.SearchResponse, error)
	GetMovieDetails(ctx context.Context, id int) (*tmdb.MovieDetails, error)
	GetTVDetails(ctx context.Context, id int) (*tmdb.TVDetails, error)
	PosterURL(posterPath string) string
}

// searchError maps TMDB client failures onto ErrSearchUnavailable. Cancellation is passed through.
func searchError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
}
