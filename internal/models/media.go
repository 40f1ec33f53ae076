package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MediaItem represents a movie, show, book or album the user wants to keep track of
type MediaItem struct {
	ID     string `boltholdKey:"ID" gorm:"primaryKey" json:"id"`
	TMDBID int    `boltholdIndex:"TMDBID" gorm:"column:tmdb_id;index" json:"tmdb_id,omitempty"` // 0 when not sourced from TMDB

	Title string    `json:"title"`
	Type  MediaType `gorm:"index" json:"type"`

	ReleaseDate *time.Time `json:"release_date,omitempty"` // nil = unannounced
	EndDate     *time.Time `json:"end_date,omitempty"`     // nil = no known end

	// Scoring
	UserScore     *float64 `json:"user_score,omitempty"` // nil = not rated yet
	PriorityScore float64  `json:"priority_score"`
	MentionCount  int      `json:"mention_count"`

	// State
	IsWatched       bool `json:"is_watched"`
	IsNotInterested bool `json:"is_not_interested"` // only ever goes false -> true

	// Pass-through metadata, never read by ranking
	Overview        string           `json:"overview,omitempty"`
	PosterURL       string           `json:"poster_url,omitempty"`
	TMDBRating      *float64         `json:"tmdb_rating,omitempty"`
	Recommendations []Recommendation `gorm:"type:text;serializer:json" json:"recommendations"`
	StreamingLinks  []StreamingLink  `gorm:"type:text;serializer:json" json:"streaming_links"`

	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// Recommendation is a mention of the item by a blogger, list or friend
type Recommendation struct {
	SourceName string     `json:"source_name" validate:"required,max=255"`
	SourceURL  string     `json:"source_url,omitempty" validate:"omitempty,url"`
	Reason     string     `json:"reason,omitempty"`
	Rating     *float64   `json:"rating,omitempty" validate:"omitempty,gte=0,lte=10"`
	ReviewDate *time.Time `json:"review_date,omitempty"`
}

// StreamingLink points at a platform where the item can be watched
type StreamingLink struct {
	Platform  string `json:"platform" validate:"required,max=100"`
	URL       string `json:"url" validate:"required,url"`
	Available bool   `json:"available"`
}

// NewMediaItem creates an item with the defaults every new entry starts with
func NewMediaItem(title string, mediaType MediaType, now time.Time) *MediaItem {
	return &MediaItem{
		ID:              uuid.NewString(),
		Title:           title,
		Type:            mediaType,
		PriorityScore:   0.0,
		MentionCount:    1,
		Recommendations: []Recommendation{},
		StreamingLinks:  []StreamingLink{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// daysUntil returns the number of whole days from now to t, truncated toward zero
func daysUntil(now, t time.Time) int {
	return int(t.Sub(now) / (24 * time.Hour))
}

// IsComingSoon reports whether the item releases within the next 1 to 7 whole days
func (m *MediaItem) IsComingSoon(now time.Time) bool {
	if m.ReleaseDate == nil {
		return false
	}
	days := daysUntil(now, *m.ReleaseDate)
	return days > 0 && days <= SoonWindowDays
}

// IsEndingSoon reports whether the item leaves theatres within the next 1 to 7 whole days
func (m *MediaItem) IsEndingSoon(now time.Time) bool {
	if m.EndDate == nil {
		return false
	}
	days := daysUntil(now, *m.EndDate)
	return days > 0 && days <= SoonWindowDays
}

// IsNowShowing reports whether the item is released and not yet ended
func (m *MediaItem) IsNowShowing(now time.Time) bool {
	if m.ReleaseDate == nil || now.Before(*m.ReleaseDate) {
		return false
	}
	return m.EndDate == nil || !now.After(*m.EndDate)
}

// MarkNotInterested permanently hides the item from recommendation surfaces
// Repeating it on a flagged item changes nothing.
func (m *MediaItem) MarkNotInterested(now time.Time) {
	if m.IsNotInterested {
		return
	}
	m.IsNotInterested = true
	m.UpdatedAt = now
}

// DeferInterest applies the "watch later" penalty
func (m *MediaItem) DeferInterest(now time.Time) {
	m.PriorityScore -= WatchLaterPenalty
	m.UpdatedAt = now
}

// AddMention records that another source referenced the item
func (m *MediaItem) AddMention(now time.Time) {
	m.MentionCount++
	m.UpdatedAt = now
}

// SetUserScore sets the user's rating, which must be within [0,10]
func (m *MediaItem) SetUserScore(score float64, now time.Time) error {
	if score < MinUserScore || score > MaxUserScore {
		return fmt.Errorf("user score %.1f out of range [%.0f,%.0f]", score, MinUserScore, MaxUserScore)
	}
	m.UserScore = &score
	m.UpdatedAt = now
	return nil
}

// SetWatched updates the watched flag
func (m *MediaItem) SetWatched(watched bool, now time.Time) {
	m.IsWatched = watched
	m.UpdatedAt = now
}

// AddRecommendation appends a recommendation and counts it as a mention
func (m *MediaItem) AddRecommendation(rec Recommendation, now time.Time) {
	if rec.ReviewDate == nil {
		reviewed := now
		rec.ReviewDate = &reviewed
	}
	m.Recommendations = append(m.Recommendations, rec)
	m.AddMention(now)
}

// AddStreamingLink appends a streaming platform link
func (m *MediaItem) AddStreamingLink(link StreamingLink, now time.Time) {
	m.StreamingLinks = append(m.StreamingLinks, link)
	m.UpdatedAt = now
}

// Clone returns a deep copy of the item
func (m *MediaItem) Clone() *MediaItem {
	c := *m
	if m.ReleaseDate != nil {
		t := *m.ReleaseDate
		c.ReleaseDate = &t
	}
	if m.EndDate != nil {
		t := *m.EndDate
		c.EndDate = &t
	}
	if m.UserScore != nil {
		s := *m.UserScore
		c.UserScore = &s
	}
	if m.TMDBRating != nil {
		r := *m.TMDBRating
		c.TMDBRating = &r
	}
	if m.Recommendations != nil {
		c.Recommendations = make([]Recommendation, len(m.Recommendations))
		copy(c.Recommendations, m.Recommendations)
	}
	if m.StreamingLinks != nil {
		c.StreamingLinks = make([]StreamingLink, len(m.StreamingLinks))
		copy(c.StreamingLinks, m.StreamingLinks)
	}
	return &c
}
