package models

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrNotFound is returned by every Store implementation when a record does not exist
var ErrNotFound = errors.New("record not found")

// Store drivers
const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
)

// Store persists the media collection and the inbox
type Store interface {
	// Media
	CreateMedia(item *MediaItem) error
	UpdateMedia(item *MediaItem) error
	GetMediaByID(id string) (*MediaItem, error)
	GetMediaByTMDBID(tmdbID int, mediaType MediaType) (*MediaItem, error)
	GetAllMedias() ([]*MediaItem, error)
	DeleteMedia(id string) error

	// Inbox
	CreateInboxItem(item *InboxItem) error
	UpdateInboxItem(item *InboxItem) error
	GetInboxItemByID(id string) (*InboxItem, error)
	GetInboxItems(processed *bool) ([]*InboxItem, error)
	DeleteInboxItem(id string) error
	DeleteExpiredInboxItems(now time.Time) (int, error)

	Close() error
}

// Open opens the store for the configured driver
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverBolt, "":
		return NewDatabase(path)
	case DriverSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// sortMediasByCreation orders items oldest first so callers see insertion order
func sortMediasByCreation(items []*MediaItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}

// sortInboxByCreation orders inbox items newest first
func sortInboxByCreation(items []*InboxItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func stampCreated(createdAt, updatedAt *time.Time) {
	now := time.Now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt.IsZero() {
		*updatedAt = *createdAt
	}
}
