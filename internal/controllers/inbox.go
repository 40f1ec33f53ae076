package controllers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/amaumene/zoetrope/internal/config"
	"github.com/amaumene/zoetrope/internal/metrics"
	"github.com/amaumene/zoetrope/internal/models"
	"github.com/amaumene/zoetrope/internal/services/tmdb"
	"github.com/amaumene/zoetrope/internal/utils"
)

// Inbox list limits
const (
	DefaultInboxLimit = 50
	MaxInboxLimit     = 100
)

// SubmitRequest pastes text into the inbox
type SubmitRequest struct {
	Content string `json:"content" validate:"required,max=20000"`
	URL     string `json:"url,omitempty" validate:"omitempty,url"`
}

// ProcessResult reports what mining an inbox item did to the collection
type ProcessResult struct {
	Success         bool     `json:"success"`
	Message         string   `json:"message"`
	ExtractedTitles []string `json:"extracted_titles"`
	CreatedMediaIDs []string `json:"created_media_ids"`
	UpdatedMediaIDs []string `json:"updated_media_ids"`
	Errors          []string `json:"errors"`
}

// InboxController stores pasted text and turns the titles it mentions into collection entries
type InboxController struct {
	store      models.Store
	collection *CollectionController
	tmdb       TMDBClient
	blocklist  *utils.Blocklist
	retention  time.Duration
	metrics    metrics.Recorder
	now        Clock
	logger     *logrus.Logger

	// mu serializes Process so an item is mined at most once
	mu sync.Mutex
}

// NewInboxController creates a new inbox controller
func NewInboxController(store models.Store, collection *CollectionController, tmdbClient TMDBClient, blocklist *utils.Blocklist, cfg *config.Config, recorder metrics.Recorder, now Clock, logger *logrus.Logger) *InboxController {
	return &InboxController{
		store:      store,
		collection: collection,
		tmdb:       tmdbClient,
		blocklist:  blocklist,
		retention:  cfg.InboxRetention,
		metrics:    recorder,
		now:        now,
		logger:     logger,
	}
}

// Submit stores a new inbox item; it is processed later by the scheduler or on demand
func (c *InboxController) Submit(ctx context.Context, req SubmitRequest) (*models.InboxItem, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, invalidf("content must not be blank")
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	item := models.NewInboxItem(req.Content, req.URL, c.now(), c.retention)
	if err := c.store.CreateInboxItem(item); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"inbox_id":   item.ID,
		"expires_at": item.ExpiresAt,
	}).Info("Inbox item submitted")
	return item, nil
}

// List returns inbox items, newest first
func (c *InboxController) List(ctx context.Context, processed *bool, limit int) ([]*models.InboxItem, error) {
	if limit == 0 {
		limit = DefaultInboxLimit
	}
	if limit < 1 || limit > MaxInboxLimit {
		return nil, invalidf("limit must be between 1 and %d", MaxInboxLimit)
	}

	items, err := c.store.GetInboxItems(processed)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Get returns a single inbox item
func (c *InboxController) Get(ctx context.Context, id string) (*models.InboxItem, error) {
	return c.store.GetInboxItemByID(id)
}

// Delete removes an inbox item
func (c *InboxController) Delete(ctx context.Context, id string) error {
	return c.store.DeleteInboxItem(id)
}

// Process mines an inbox item for titles. Each title either adds a mention to a
// matching collection entry or is looked up on TMDB and added. Processing an
// item twice returns the stored outcome without touching the collection again.
func (c *InboxController) Process(ctx context.Context, id string) (*ProcessResult, error) {
	ctx, span := tracer.Start(ctx, "inbox.Process")
	defer span.End()
	span.SetAttributes(attribute.String("inbox_id", id))

	c.mu.Lock()
	defer c.mu.Unlock()

	item, err := c.store.GetInboxItemByID(id)
	if err != nil {
		return nil, err
	}

	if item.Processed {
		return &ProcessResult{
			Success:         item.ProcessingError == "",
			Message:         "already processed",
			ExtractedTitles: item.ExtractedTitles,
			CreatedMediaIDs: item.CreatedMediaIDs,
			UpdatedMediaIDs: item.UpdatedMediaIDs,
			Errors:          splitErrors(item.ProcessingError),
		}, nil
	}

	result := &ProcessResult{
		ExtractedTitles: []string{},
		CreatedMediaIDs: []string{},
		UpdatedMediaIDs: []string{},
		Errors:          []string{},
	}

	for _, title := range utils.ExtractTitles(item.RawContent) {
		if blocked, term := c.blocklist.IsBlocked(title); blocked {
			c.logger.WithFields(logrus.Fields{
				"title": title,
				"term":  term,
			}).Debug("Title blocked")
			continue
		}
		result.ExtractedTitles = append(result.ExtractedTitles, title)

		if err := c.processTitle(ctx, title, result); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", title, err))
		}
	}

	result.Success = len(result.Errors) == 0
	result.Message = fmt.Sprintf("%d titles: %d created, %d updated, %d failed",
		len(result.ExtractedTitles), len(result.CreatedMediaIDs), len(result.UpdatedMediaIDs), len(result.Errors))

	item.Processed = true
	item.ExtractedTitles = result.ExtractedTitles
	item.CreatedMediaIDs = result.CreatedMediaIDs
	item.UpdatedMediaIDs = result.UpdatedMediaIDs
	item.ProcessingError = strings.Join(result.Errors, "; ")
	if err := c.store.UpdateInboxItem(item); err != nil {
		return nil, fmt.Errorf("failed to save inbox item %s: %w", id, err)
	}

	c.metrics.RecordInboxProcessed(len(result.CreatedMediaIDs), len(result.UpdatedMediaIDs), len(result.Errors))
	c.logger.WithFields(logrus.Fields{
		"inbox_id": id,
		"titles":   len(result.ExtractedTitles),
		"created":  len(result.CreatedMediaIDs),
		"updated":  len(result.UpdatedMediaIDs),
		"errors":   len(result.Errors),
	}).Info("Inbox item processed")

	return result, nil
}

func (c *InboxController) processTitle(ctx context.Context, title string, result *ProcessResult) error {
	existing, found, err := c.collection.FindByTitle(ctx, title)
	if err != nil {
		return err
	}
	if found {
		updated, err := c.collection.RecordMention(ctx, existing.ID)
		if err != nil {
			return err
		}
		result.UpdatedMediaIDs = appendUnique(result.UpdatedMediaIDs, updated.ID)
		return nil
	}

	if c.tmdb == nil || !c.tmdb.Enabled() {
		return fmt.Errorf("not in collection and TMDB is not configured")
	}

	resp, err := c.tmdb.SearchMulti(ctx, title, tmdb.SearchOptions{})
	if err != nil {
		return err
	}

	for _, hit := range resp.Results {
		if !hit.IsTitle() {
			continue
		}

		req := AddRequest{
			TMDBID:      hit.ID,
			Title:       hit.DisplayTitle(),
			MediaType:   hit.MediaType,
			Overview:    hit.Overview,
			PosterPath:  hit.PosterPath,
			ReleaseDate: hit.Date(),
		}
		if hit.VoteAverage > 0 {
			rating := hit.VoteAverage
			req.VoteAverage = &rating
		}

		item, created, err := c.collection.AddFromSearch(ctx, req)
		if err != nil {
			return err
		}
		if created {
			result.CreatedMediaIDs = appendUnique(result.CreatedMediaIDs, item.ID)
		} else {
			result.UpdatedMediaIDs = appendUnique(result.UpdatedMediaIDs, item.ID)
		}
		return nil
	}

	return fmt.Errorf("no match found")
}

// ProcessPending processes every unprocessed, unexpired inbox item
func (c *InboxController) ProcessPending(ctx context.Context) (int, error) {
	pending := false
	items, err := c.store.GetInboxItems(&pending)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending inbox items: %w", err)
	}

	now := c.now()
	processed := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		if item.IsExpired(now) {
			continue
		}
		if _, err := c.Process(ctx, item.ID); err != nil {
			c.logger.WithError(err).WithField("inbox_id", item.ID).Error("Failed to process inbox item")
			continue
		}
		processed++
	}
	return processed, nil
}

// Cleanup deletes expired inbox items and returns how many were removed
func (c *InboxController) Cleanup(ctx context.Context) (int, error) {
	deleted, err := c.store.DeleteExpiredInboxItems(c.now())
	if err != nil {
		return deleted, fmt.Errorf("failed to delete expired inbox items: %w", err)
	}

	c.metrics.RecordInboxPurged(deleted)
	if deleted > 0 {
		c.logger.WithField("count", deleted).Info("Expired inbox items deleted")
	}
	return deleted, nil
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func splitErrors(joined string) []string {
	if joined == "" {
		return []string{}
	}
	return strings.Split(joined, "; ")
}
