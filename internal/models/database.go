package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Database wraps the bolthold store
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

func translateBoltError(err error) error {
	if errors.Is(err, bolthold.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Media operations

// CreateMedia creates a new media item in the database
func (db *Database) CreateMedia(media *MediaItem) error {
	stampCreated(&media.CreatedAt, &media.UpdatedAt)
	if err := db.store.Insert(media.ID, media); err != nil {
		return fmt.Errorf("failed to insert media %s: %w", media.ID, err)
	}
	return nil
}

// UpdateMedia updates an existing media item
func (db *Database) UpdateMedia(media *MediaItem) error {
	return translateBoltError(db.store.Update(media.ID, media))
}

// GetMediaByID retrieves a media item by ID
func (db *Database) GetMediaByID(id string) (*MediaItem, error) {
	var media MediaItem
	if err := db.store.Get(id, &media); err != nil {
		return nil, translateBoltError(err)
	}
	media.ID = id
	return &media, nil
}

// GetMediaByTMDBID retrieves a media item by TMDB ID and type
func (db *Database) GetMediaByTMDBID(tmdbID int, mediaType MediaType) (*MediaItem, error) {
	var medias []*MediaItem
	query := bolthold.Where("TMDBID").Eq(tmdbID).Index("TMDBID").And("Type").Eq(mediaType)
	if err := db.store.Find(&medias, query); err != nil {
		return nil, err
	}
	if len(medias) == 0 {
		return nil, ErrNotFound
	}
	return medias[0], nil
}

// GetAllMedias retrieves all media items, oldest first
func (db *Database) GetAllMedias() ([]*MediaItem, error) {
	var medias []*MediaItem
	if err := db.store.Find(&medias, nil); err != nil {
		return nil, err
	}
	sortMediasByCreation(medias)
	return medias, nil
}

// DeleteMedia deletes a media item by ID
func (db *Database) DeleteMedia(id string) error {
	return translateBoltError(db.store.Delete(id, &MediaItem{}))
}

// Inbox operations

// CreateInboxItem stores a new inbox entry
func (db *Database) CreateInboxItem(item *InboxItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if err := db.store.Insert(item.ID, item); err != nil {
		return fmt.Errorf("failed to insert inbox item %s: %w", item.ID, err)
	}
	return nil
}

// UpdateInboxItem updates an existing inbox entry
func (db *Database) UpdateInboxItem(item *InboxItem) error {
	return translateBoltError(db.store.Update(item.ID, item))
}

// GetInboxItemByID retrieves an inbox entry by ID
func (db *Database) GetInboxItemByID(id string) (*InboxItem, error) {
	var item InboxItem
	if err := db.store.Get(id, &item); err != nil {
		return nil, translateBoltError(err)
	}
	item.ID = id
	return &item, nil
}

// GetInboxItems retrieves inbox entries, optionally filtered by processed state, newest first
func (db *Database) GetInboxItems(processed *bool) ([]*InboxItem, error) {
	var items []*InboxItem
	var query *bolthold.Query
	if processed != nil {
		query = bolthold.Where("Processed").Eq(*processed).Index("Processed")
	}
	if err := db.store.Find(&items, query); err != nil {
		return nil, err
	}
	sortInboxByCreation(items)
	return items, nil
}

// DeleteInboxItem deletes an inbox entry by ID
func (db *Database) DeleteInboxItem(id string) error {
	return translateBoltError(db.store.Delete(id, &InboxItem{}))
}

// DeleteExpiredInboxItems removes every entry whose retention elapsed before now
func (db *Database) DeleteExpiredInboxItems(now time.Time) (int, error) {
	var items []*InboxItem
	if err := db.store.Find(&items, nil); err != nil {
		return 0, err
	}

	deleted := 0
	for _, item := range items {
		if !item.IsExpired(now) {
			continue
		}
		if err := db.store.Delete(item.ID, &InboxItem{}); err != nil {
			return deleted, translateBoltError(err)
		}
		deleted++
	}

	return deleted, nil
}
