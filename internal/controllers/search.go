package controllers

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/amaumene/zoetrope/internal/models"
	"github.com/amaumene/zoetrope/internal/services/tmdb"
)

// Search scopes
const (
	ScopeTMDB      = "tmdb"
	ScopeTMDBMovie = "tmdb_movie"
	ScopeTMDBTV    = "tmdb_tv"
	ScopeMedia     = "media"
)

// Scope describes a search scope for clients
type Scope struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var scopes = []Scope{
	{Value: ScopeTMDB, Label: "TMDB", Description: "Movies and TV shows on TMDB"},
	{Value: ScopeTMDBMovie, Label: "TMDB movies", Description: "Movies on TMDB"},
	{Value: ScopeTMDBTV, Label: "TMDB TV", Description: "TV shows on TMDB"},
	{Value: ScopeMedia, Label: "Collection", Description: "Titles already in the collection"},
}

const localSearchLimit = 50

// SearchQuery is a search request
type SearchQuery struct {
	Query    string `validate:"required,max=200"`
	Scope    string `validate:"omitempty,oneof=tmdb tmdb_movie tmdb_tv media"`
	Page     int    `validate:"gte=0,lte=500"`
	Year     int    `validate:"omitempty,gte=1870,lte=2100"`
	Language string `validate:"omitempty,max=10"`
}

// SearchResults holds either TMDB hits or collection items depending on the scope
type SearchResults struct {
	Scope        string              `json:"scope"`
	Page         int                 `json:"page"`
	TotalPages   int                 `json:"total_pages"`
	TotalResults int                 `json:"total_results"`
	Results      []tmdb.SearchResult `json:"results,omitempty"`
	Media        []*models.MediaItem `json:"media,omitempty"`
}

// SearchController searches TMDB and the local collection
type SearchController struct {
	tmdb       TMDBClient
	collection *CollectionController
	logger     *logrus.Logger
}

// NewSearchController creates a new search controller
func NewSearchController(tmdbClient TMDBClient, collection *CollectionController, logger *logrus.Logger) *SearchController {
	return &SearchController{
		tmdb:       tmdbClient,
		collection: collection,
		logger:     logger,
	}
}

// Scopes lists the supported search scopes
func (c *SearchController) Scopes() []Scope {
	out := make([]Scope, len(scopes))
	copy(out, scopes)
	return out
}

// Search runs a query against the selected scope (tmdb when empty)
func (c *SearchController) Search(ctx context.Context, q SearchQuery) (*SearchResults, error) {
	q.Query = strings.TrimSpace(q.Query)
	if q.Scope == "" {
		q.Scope = ScopeTMDB
	}
	if err := validateStruct(q); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "search."+q.Scope)
	defer span.End()
	span.SetAttributes(attribute.String("query", q.Query))

	c.logger.WithFields(logrus.Fields{
		"query": q.Query,
		"scope": q.Scope,
		"page":  q.Page,
	}).Debug("Searching")

	if q.Scope == ScopeMedia {
		items, err := c.collection.SearchLocal(ctx, q.Query, localSearchLimit)
		if err != nil {
			return nil, err
		}
		return &SearchResults{
			Scope:        q.Scope,
			Page:         1,
			TotalPages:   1,
			TotalResults: len(items),
			Media:        items,
		}, nil
	}

	if c.tmdb == nil || !c.tmdb.Enabled() {
		return nil, searchError(tmdb.ErrNotConfigured)
	}

	opts := tmdb.SearchOptions{Page: q.Page, Year: q.Year, Language: q.Language}

	var (
		resp *tmdb.SearchResponse
		err  error
	)
	switch q.Scope {
	case ScopeTMDBMovie:
		resp, err = c.tmdb.SearchMovies(ctx, q.Query, opts)
	case ScopeTMDBTV:
		resp, err = c.tmdb.SearchTV(ctx, q.Query, opts)
	default:
		resp, err = c.tmdb.SearchMulti(ctx, q.Query, opts)
	}
	if err != nil {
		c.logger.WithError(err).WithField("query", q.Query).Warn("TMDB search failed")
		return nil, searchError(err)
	}

	results := resp.Results
	if q.Scope == ScopeTMDB {
		// People are not collectable
		results = results[:0:0]
		for _, r := range resp.Results {
			if r.IsTitle() {
				results = append(results, r)
			}
		}
	}

	return &SearchResults{
		Scope:        q.Scope,
		Page:         resp.Page,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
		Results:      results,
	}, nil
}
