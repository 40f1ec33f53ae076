package models

import (
	"time"

	"github.com/google/uuid"
)

// InboxItem holds raw text pasted by the user until it is mined for titles
type InboxItem struct {
	ID  string `boltholdKey:"ID" gorm:"primaryKey" json:"id"`
	URL string `json:"url,omitempty"`

	RawContent string `json:"raw_content"`

	// Processing
	Processed       bool     `boltholdIndex:"Processed" gorm:"index" json:"processed"`
	ProcessingError string   `json:"processing_error,omitempty"`
	ExtractedTitles []string `gorm:"type:text;serializer:json" json:"extracted_titles"`
	CreatedMediaIDs []string `gorm:"type:text;serializer:json" json:"created_media_ids"`
	UpdatedMediaIDs []string `gorm:"type:text;serializer:json" json:"updated_media_ids"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}

// NewInboxItem creates an unprocessed inbox entry that expires after retention
func NewInboxItem(content, url string, now time.Time, retention time.Duration) *InboxItem {
	return &InboxItem{
		ID:              uuid.NewString(),
		URL:             url,
		RawContent:      content,
		ExtractedTitles: []string{},
		CreatedMediaIDs: []string{},
		UpdatedMediaIDs: []string{},
		CreatedAt:       now,
		ExpiresAt:       now.Add(retention),
	}
}

// IsExpired reports whether the retention period has elapsed
func (i *InboxItem) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
