package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteStore is the gorm-backed Store used when STORE_DRIVER=sqlite
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (and migrates) a SQLite database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.AutoMigrate(&MediaItem{}, &InboxItem{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying connection pool
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translateGormError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// CreateMedia inserts a new media item
func (s *SQLiteStore) CreateMedia(media *MediaItem) error {
	stampCreated(&media.CreatedAt, &media.UpdatedAt)
	if err := s.db.Create(media).Error; err != nil {
		return fmt.Errorf("failed to insert media %s: %w", media.ID, err)
	}
	return nil
}

// UpdateMedia saves every column of an existing media item
func (s *SQLiteStore) UpdateMedia(media *MediaItem) error {
	// Save would insert a missing row, so check existence first
	if _, err := s.GetMediaByID(media.ID); err != nil {
		return err
	}
	return s.db.Save(media).Error
}

// GetMediaByID retrieves a media item by ID
func (s *SQLiteStore) GetMediaByID(id string) (*MediaItem, error) {
	var media MediaItem
	if err := s.db.First(&media, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &media, nil
}

// GetMediaByTMDBID retrieves a media item by TMDB ID and type
func (s *SQLiteStore) GetMediaByTMDBID(tmdbID int, mediaType MediaType) (*MediaItem, error) {
	var media MediaItem
	err := s.db.Where("tmdb_id = ? AND type = ?", tmdbID, mediaType).First(&media).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return &media, nil
}

// GetAllMedias retrieves all media items, oldest first
func (s *SQLiteStore) GetAllMedias() ([]*MediaItem, error) {
	var medias []*MediaItem
	if err := s.db.Order("created_at asc, id asc").Find(&medias).Error; err != nil {
		return nil, err
	}
	return medias, nil
}

// DeleteMedia deletes a media item by ID
func (s *SQLiteStore) DeleteMedia(id string) error {
	result := s.db.Delete(&MediaItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateInboxItem stores a new inbox entry
func (s *SQLiteStore) CreateInboxItem(item *InboxItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if err := s.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to insert inbox item %s: %w", item.ID, err)
	}
	return nil
}

// UpdateInboxItem saves an existing inbox entry
func (s *SQLiteStore) UpdateInboxItem(item *InboxItem) error {
	if _, err := s.GetInboxItemByID(item.ID); err != nil {
		return err
	}
	return s.db.Save(item).Error
}

// GetInboxItemByID retrieves an inbox entry by ID
func (s *SQLiteStore) GetInboxItemByID(id string) (*InboxItem, error) {
	var item InboxItem
	if err := s.db.First(&item, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &item, nil
}

// GetInboxItems retrieves inbox entries, optionally filtered by processed state, newest first
func (s *SQLiteStore) GetInboxItems(processed *bool) ([]*InboxItem, error) {
	var items []*InboxItem
	query := s.db.Order("created_at desc")
	if processed != nil {
		query = query.Where("processed = ?", *processed)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteInboxItem deletes an inbox entry by ID
func (s *SQLiteStore) DeleteInboxItem(id string) error {
	result := s.db.Delete(&InboxItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpiredInboxItems removes every entry whose retention elapsed before now
func (s *SQLiteStore) DeleteExpiredInboxItems(now time.Time) (int, error) {
	result := s.db.Where("expires_at < ?", now).Delete(&InboxItem{})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}
