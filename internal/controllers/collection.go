package controllers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/amaumene/zoetrope/internal/metrics"
	"github.com/amaumene/zoetrope/internal/models"
	"github.com/amaumene/zoetrope/internal/ranking"
	"github.com/amaumene/zoetrope/internal/services/tmdb"
	"github.com/amaumene/zoetrope/internal/utils"
)

// Paging limits for List
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Mutation names used in logs and metrics
const (
	ActionNotInterested = "not_interested"
	ActionWatchLater    = "watch_later"
)

// AddRequest adds a TMDB search hit to the collection
type AddRequest struct {
	TMDBID      int      `json:"tmdb_id" validate:"required,gt=0"`
	Title       string   `json:"title" validate:"required,max=500"`
	MediaType   string   `json:"media_type" validate:"required,oneof=movie tv tv_show"`
	Overview    string   `json:"overview,omitempty"`
	PosterPath  string   `json:"poster_path,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"` // YYYY-MM-DD, malformed dates are ignored
	VoteAverage *float64 `json:"vote_average,omitempty" validate:"omitempty,gte=0,lte=10"`
}

// CreateRequest adds an item by hand
type CreateRequest struct {
	Title       string                 `json:"title" validate:"required,max=500"`
	Type        string                 `json:"type" validate:"required"`
	ReleaseDate *models.Date           `json:"release_date,omitempty"`
	EndDate     *models.Date           `json:"end_date,omitempty"`
	Overview    string                 `json:"overview,omitempty"`
	PosterURL   string                 `json:"poster_url,omitempty" validate:"omitempty,url"`
	UserScore   *float64               `json:"user_score,omitempty" validate:"omitempty,gte=0,lte=10"`
	Links       []models.StreamingLink `json:"streaming_links,omitempty" validate:"omitempty,dive"`
}

// UpdateRequest is a partial update; nil fields are left untouched
type UpdateRequest struct {
	UserScore *float64 `json:"user_score,omitempty" validate:"omitempty,gte=0,lte=10"`
	IsWatched *bool    `json:"is_watched,omitempty"`
}

// ListQuery selects a page of the browsing list
type ListQuery struct {
	Type     string
	Sort     string
	Page     int
	PageSize int
	Watched  *bool
}

// ListResult is one page of the browsing list
type ListResult struct {
	Items    []*models.MediaItem `json:"items"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
	Sort     string              `json:"sort"`
}

// Stats summarizes the collection
type Stats struct {
	Total         int            `json:"total"`
	Watched       int            `json:"watched"`
	NotInterested int            `json:"not_interested"`
	ByType        map[string]int `json:"by_type"`
}

// CollectionController owns every read and write of the media collection
type CollectionController struct {
	store   models.Store
	tmdb    TMDBClient
	metrics metrics.Recorder
	now     Clock
	logger  *logrus.Logger

	// mu serializes load-mutate-persist cycles
	mu sync.Mutex
}

// NewCollectionController creates a new collection controller
func NewCollectionController(store models.Store, tmdbClient TMDBClient, recorder metrics.Recorder, now Clock, logger *logrus.Logger) *CollectionController {
	return &CollectionController{
		store:   store,
		tmdb:    tmdbClient,
		metrics: recorder,
		now:     now,
		logger:  logger,
	}
}

// load returns the whole collection as an id-indexed ranking.Collection
func (c *CollectionController) load() (*ranking.Collection, error) {
	items, err := c.store.GetAllMedias()
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	return ranking.NewCollection(items, c.now), nil
}

// AddFromSearch adds a TMDB hit. An item already carrying the TMDB id gets a new
// mention instead; created reports which of the two happened.
func (c *CollectionController) AddFromSearch(ctx context.Context, req AddRequest) (item *models.MediaItem, created bool, err error) {
	ctx, span := tracer.Start(ctx, "collection.AddFromSearch")
	defer span.End()

	if err := validateStruct(req); err != nil {
		return nil, false, err
	}
	mediaType, err := models.ParseMediaType(req.MediaType)
	if err != nil {
		return nil, false, invalidf("%v", err)
	}
	span.SetAttributes(attribute.Int("tmdb_id", req.TMDBID), attribute.String("type", string(mediaType)))

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	existing, err := c.store.GetMediaByTMDBID(req.TMDBID, mediaType)
	switch {
	case err == nil:
		existing.AddMention(now)
		if err := c.store.UpdateMedia(existing); err != nil {
			return nil, false, fmt.Errorf("failed to update media %s: %w", existing.ID, err)
		}
		c.logger.WithFields(logrus.Fields{
			"media_id": existing.ID,
			"title":    existing.Title,
			"mentions": existing.MentionCount,
		}).Info("Media already in collection, mention recorded")
		return existing, false, nil
	case !errors.Is(err, models.ErrNotFound):
		return nil, false, fmt.Errorf("failed to look up tmdb id %d: %w", req.TMDBID, err)
	}

	item = models.NewMediaItem(strings.TrimSpace(req.Title), mediaType, now)
	item.TMDBID = req.TMDBID
	item.Overview = req.Overview
	item.ReleaseDate = tmdb.ParseDate(req.ReleaseDate)
	item.TMDBRating = req.VoteAverage
	if c.tmdb != nil {
		item.PosterURL = c.tmdb.PosterURL(req.PosterPath)
	}

	if mediaType == models.MediaTypeTVShow {
		c.enrichEndDate(ctx, item)
	}

	if err := c.store.CreateMedia(item); err != nil {
		return nil, false, err
	}

	c.logger.WithFields(logrus.Fields{
		"media_id": item.ID,
		"title":    item.Title,
		"tmdb_id":  item.TMDBID,
	}).Info("Media added from search")
	return item, true, nil
}

// enrichEndDate sets EndDate for finished shows. Failures are only logged.
func (c *CollectionController) enrichEndDate(ctx context.Context, item *models.MediaItem) {
	if c.tmdb == nil || !c.tmdb.Enabled() || item.TMDBID == 0 || item.EndDate != nil {
		return
	}
	details, err := c.tmdb.GetTVDetails(ctx, item.TMDBID)
	if err != nil {
		c.logger.WithError(err).WithField("tmdb_id", item.TMDBID).Warn("Failed to fetch TV details")
		return
	}
	if details.Ended() {
		item.EndDate = tmdb.ParseDate(details.LastAirDate)
	}
}

// Create adds an item by hand. Movies and shows missing dates or artwork are
// completed from the first TMDB match when TMDB is configured.
func (c *CollectionController) Create(ctx context.Context, req CreateRequest) (*models.MediaItem, error) {
	ctx, span := tracer.Start(ctx, "collection.Create")
	defer span.End()

	if err := validateStruct(req); err != nil {
		return nil, err
	}
	mediaType, err := models.ParseMediaType(req.Type)
	if err != nil {
		return nil, invalidf("%v", err)
	}

	now := c.now()
	item := models.NewMediaItem(strings.TrimSpace(req.Title), mediaType, now)
	item.ReleaseDate = req.ReleaseDate.Ptr()
	item.EndDate = req.EndDate.Ptr()
	item.Overview = req.Overview
	item.PosterURL = req.PosterURL
	if req.UserScore != nil {
		if err := item.SetUserScore(*req.UserScore, now); err != nil {
			return nil, invalidf("%v", err)
		}
	}
	for _, link := range req.Links {
		item.AddStreamingLink(link, now)
	}

	c.enrich(ctx, item)

	c.mu.Lock()
	defer c.mu.Unlock()

	if item.TMDBID != 0 {
		if _, err := c.store.GetMediaByTMDBID(item.TMDBID, item.Type); err == nil {
			// Another entry already owns this TMDB id
			item.TMDBID = 0
		}
	}

	if err := c.store.CreateMedia(item); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"media_id": item.ID,
		"title":    item.Title,
		"type":     item.Type,
	}).Info("Media created")
	return item, nil
}

// enrich fills missing metadata from the first TMDB search hit
func (c *CollectionController) enrich(ctx context.Context, item *models.MediaItem) {
	if c.tmdb == nil || !c.tmdb.Enabled() {
		return
	}

	var (
		resp *tmdb.SearchResponse
		err  error
	)
	switch item.Type {
	case models.MediaTypeMovie:
		resp, err = c.tmdb.SearchMovies(ctx, item.Title, tmdb.SearchOptions{})
	case models.MediaTypeTVShow:
		resp, err = c.tmdb.SearchTV(ctx, item.Title, tmdb.SearchOptions{})
	default:
		return
	}
	if err != nil {
		c.logger.WithError(err).WithField("title", item.Title).Warn("TMDB enrichment failed")
		return
	}
	if len(resp.Results) == 0 {
		c.logger.WithField("title", item.Title).Debug("No TMDB match for enrichment")
		return
	}

	hit := resp.Results[0]
	item.TMDBID = hit.ID
	if item.ReleaseDate == nil {
		item.ReleaseDate = tmdb.ParseDate(hit.Date())
	}
	if item.PosterURL == "" {
		item.PosterURL = c.tmdb.PosterURL(hit.PosterPath)
	}
	if item.Overview == "" {
		item.Overview = hit.Overview
	}
	if item.TMDBRating == nil && hit.VoteAverage > 0 {
		rating := hit.VoteAverage
		item.TMDBRating = &rating
	}
	if item.Type == models.MediaTypeTVShow {
		c.enrichEndDate(ctx, item)
	}
}

// Get returns a single item
func (c *CollectionController) Get(ctx context.Context, id string) (*models.MediaItem, error) {
	return c.store.GetMediaByID(id)
}

// Delete removes an item
func (c *CollectionController) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.DeleteMedia(id); err != nil {
		return err
	}
	c.logger.WithField("media_id", id).Info("Media deleted")
	return nil
}

// Update applies a partial update
func (c *CollectionController) Update(ctx context.Context, id string, req UpdateRequest) (*models.MediaItem, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	item, err := c.store.GetMediaByID(id)
	if err != nil {
		return nil, err
	}

	now := c.now()
	if req.UserScore != nil {
		if err := item.SetUserScore(*req.UserScore, now); err != nil {
			return nil, invalidf("%v", err)
		}
	}
	if req.IsWatched != nil {
		item.SetWatched(*req.IsWatched, now)
	}

	if err := c.store.UpdateMedia(item); err != nil {
		return nil, fmt.Errorf("failed to update media %s: %w", id, err)
	}
	return item, nil
}

// MarkNotInterested hides an item from the carousel for good.
// Unknown ids are a no-op: applied is false and err is nil.
func (c *CollectionController) MarkNotInterested(ctx context.Context, id string) (applied bool, err error) {
	return c.mutate(ctx, ActionNotInterested, id, (*ranking.Collection).MarkNotInterested)
}

// DeferInterest applies the watch-later penalty. Unknown ids are a no-op.
func (c *CollectionController) DeferInterest(ctx context.Context, id string) (applied bool, err error) {
	return c.mutate(ctx, ActionWatchLater, id, (*ranking.Collection).DeferInterest)
}

func (c *CollectionController) mutate(ctx context.Context, action, id string, apply func(*ranking.Collection, string) bool) (bool, error) {
	_, span := tracer.Start(ctx, "collection."+action)
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	col, err := c.load()
	if err != nil {
		return false, err
	}

	applied := apply(col, id)
	span.SetAttributes(attribute.String("media_id", id), attribute.Bool("applied", applied))
	c.metrics.RecordMutation(action, applied)

	if !applied {
		c.logger.WithFields(logrus.Fields{
			"media_id": id,
			"action":   action,
		}).Debug("Mutation for unknown media ignored")
		return false, nil
	}

	item, _ := col.Get(id)
	if err := c.store.UpdateMedia(item); err != nil {
		return false, fmt.Errorf("failed to persist %s for %s: %w", action, id, err)
	}

	c.logger.WithFields(logrus.Fields{
		"media_id": id,
		"title":    item.Title,
		"action":   action,
	}).Info("Media mutation applied")
	return true, nil
}

// AddRecommendation attaches a recommendation and counts it as a mention
func (c *CollectionController) AddRecommendation(ctx context.Context, id string, rec models.Recommendation) (*models.MediaItem, error) {
	if err := validateStruct(rec); err != nil {
		return nil, err
	}
	return c.update(id, func(item *models.MediaItem) {
		item.AddRecommendation(rec, c.now())
	})
}

// AddStreamingLink attaches a streaming platform link
func (c *CollectionController) AddStreamingLink(ctx context.Context, id string, link models.StreamingLink) (*models.MediaItem, error) {
	if err := validateStruct(link); err != nil {
		return nil, err
	}
	return c.update(id, func(item *models.MediaItem) {
		item.AddStreamingLink(link, c.now())
	})
}

// RecordMention bumps the mention count of an existing item
func (c *CollectionController) RecordMention(ctx context.Context, id string) (*models.MediaItem, error) {
	return c.update(id, func(item *models.MediaItem) {
		item.AddMention(c.now())
	})
}

func (c *CollectionController) update(id string, fn func(*models.MediaItem)) (*models.MediaItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, err := c.store.GetMediaByID(id)
	if err != nil {
		return nil, err
	}
	fn(item)
	if err := c.store.UpdateMedia(item); err != nil {
		return nil, fmt.Errorf("failed to update media %s: %w", id, err)
	}
	return item, nil
}

// Carousel returns the ranked carousel, at most limit items (limit <= 0 means all)
func (c *CollectionController) Carousel(ctx context.Context, limit int) ([]*models.MediaItem, error) {
	_, span := tracer.Start(ctx, "collection.Carousel")
	defer span.End()

	col, err := c.load()
	if err != nil {
		return nil, err
	}
	ranked := ranking.Limit(col.Carousel(), limit)
	span.SetAttributes(attribute.Int("items", col.Len()), attribute.Int("ranked", len(ranked)))
	return ranked, nil
}

// List returns one page of the browsing list
func (c *CollectionController) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	_, span := tracer.Start(ctx, "collection.List")
	defer span.End()

	var typeFilter *models.MediaType
	if q.Type != "" {
		mediaType, err := models.ParseMediaType(q.Type)
		if err != nil {
			return nil, invalidf("%v", err)
		}
		typeFilter = &mediaType
	}

	key, err := ranking.ParseSortKey(q.Sort)
	if err != nil {
		return nil, invalidf("%v", err)
	}

	page, pageSize := q.Page, q.PageSize
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		return nil, invalidf("page must be at least 1")
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, invalidf("page_size must be between 1 and %d", MaxPageSize)
	}

	col, err := c.load()
	if err != nil {
		return nil, err
	}

	view := col.View(typeFilter, key)
	if q.Watched != nil {
		filtered := view[:0]
		for _, item := range view {
			if item.IsWatched == *q.Watched {
				filtered = append(filtered, item)
			}
		}
		view = filtered
	}

	total := len(view)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &ListResult{
		Items:    view[start:end],
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Sort:     key.String(),
	}, nil
}

// Stats counts the collection by state and type
func (c *CollectionController) Stats(ctx context.Context) (*Stats, error) {
	items, err := c.store.GetAllMedias()
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}

	stats := &Stats{ByType: map[string]int{}}
	for _, item := range items {
		stats.Total++
		stats.ByType[string(item.Type)]++
		if item.IsWatched {
			stats.Watched++
		}
		if item.IsNotInterested {
			stats.NotInterested++
		}
	}
	return stats, nil
}

// RefreshGauge publishes the per-type collection size
func (c *CollectionController) RefreshGauge(ctx context.Context) error {
	stats, err := c.Stats(ctx)
	if err != nil {
		return err
	}
	c.metrics.SetCollectionSize(stats.ByType)
	return nil
}

// titleMatch pairs an item with its similarity to a query
type titleMatch struct {
	item  *models.MediaItem
	score float64
}

// localSearchThreshold is looser than the inbox threshold so partial queries still find items
const localSearchThreshold = 0.5

// FindByTitle returns the item whose title best matches title, if it clears the inbox threshold
func (c *CollectionController) FindByTitle(ctx context.Context, title string) (*models.MediaItem, bool, error) {
	matches, err := c.matchTitles(title, utils.DefaultMatchThreshold, false)
	if err != nil || len(matches) == 0 {
		return nil, false, err
	}
	return matches[0].item, true, nil
}

// SearchLocal performs a fuzzy title search over the collection, best match first
func (c *CollectionController) SearchLocal(ctx context.Context, query string, limit int) ([]*models.MediaItem, error) {
	matches, err := c.matchTitles(query, localSearchThreshold, true)
	if err != nil {
		return nil, err
	}

	items := make([]*models.MediaItem, 0, len(matches))
	for _, m := range matches {
		items = append(items, m.item)
	}
	return ranking.Limit(items, limit), nil
}

// matchTitles scores every item against query. With substring set, items whose
// normalized title contains the query match regardless of score.
func (c *CollectionController) matchTitles(query string, threshold float64, substring bool) ([]titleMatch, error) {
	items, err := c.store.GetAllMedias()
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}

	needle := utils.NormalizeTitle(query)
	if needle == "" {
		return nil, nil
	}

	var matches []titleMatch
	for _, item := range items {
		score := utils.TitleSimilarity(query, item.Title)
		if score < threshold && !(substring && strings.Contains(utils.NormalizeTitle(item.Title), needle)) {
			continue
		}
		matches = append(matches, titleMatch{item: item, score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	return matches, nil
}
