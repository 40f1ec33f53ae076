package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

const day = 24 * time.Hour

func TestIsComingSoon(t *testing.T) {
	tests := []struct {
		name    string
		release *time.Time
		want    bool
	}{
		{"unannounced", nil, false},
		{"eight days out", at(8 * day), false},
		{"seven days out", at(7 * day), true},
		{"seven and a half days out", at(7*day + 12*time.Hour), true},
		{"one day out", at(day), true},
		{"later today", at(6 * time.Hour), false},
		{"today", at(0), false},
		{"yesterday", at(-day), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MediaItem{ReleaseDate: tt.release}
			assert.Equal(t, tt.want, m.IsComingSoon(now))
		})
	}
}

func TestIsEndingSoon(t *testing.T) {
	tests := []struct {
		name string
		end  *time.Time
		want bool
	}{
		{"no end", nil, false},
		{"eight days out", at(8 * day), false},
		{"seven days out", at(7 * day), true},
		{"three days out", at(3 * day), true},
		{"today", at(0), false},
		{"already ended", at(-2 * day), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MediaItem{EndDate: tt.end}
			assert.Equal(t, tt.want, m.IsEndingSoon(now))
		})
	}
}

func TestIsNowShowing(t *testing.T) {
	tests := []struct {
		name    string
		release *time.Time
		end     *time.Time
		want    bool
	}{
		{"unannounced", nil, nil, false},
		{"not released", at(day), nil, false},
		{"released today", at(0), nil, true},
		{"released, open ended", at(-30 * day), nil, true},
		{"released, ends later", at(-30 * day), at(10 * day), true},
		{"ends exactly now", at(-30 * day), at(0), true},
		{"ended", at(-30 * day), at(-time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MediaItem{ReleaseDate: tt.release, EndDate: tt.end}
			assert.Equal(t, tt.want, m.IsNowShowing(now))
		})
	}
}

func TestNewMediaItem(t *testing.T) {
	m := NewMediaItem("Dune", MediaTypeMovie, now)

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, 1, m.MentionCount)
	assert.Zero(t, m.PriorityScore)
	assert.False(t, m.IsNotInterested)
	assert.Nil(t, m.UserScore)
	assert.Equal(t, now, m.CreatedAt)
	assert.Equal(t, now, m.UpdatedAt)
	assert.NotNil(t, m.Recommendations)
	assert.NotNil(t, m.StreamingLinks)
}

func TestMutations(t *testing.T) {
	m := NewMediaItem("Severance", MediaTypeTVShow, now)
	later := now.Add(time.Hour)

	m.DeferInterest(later)
	assert.InDelta(t, -WatchLaterPenalty, m.PriorityScore, 1e-9)
	assert.Equal(t, later, m.UpdatedAt)

	m.MarkNotInterested(later)
	m.MarkNotInterested(later)
	assert.True(t, m.IsNotInterested)

	m.AddMention(later)
	assert.Equal(t, 2, m.MentionCount)

	m.AddRecommendation(Recommendation{SourceName: "friend"}, later)
	assert.Equal(t, 3, m.MentionCount)
	require.Len(t, m.Recommendations, 1)
	require.NotNil(t, m.Recommendations[0].ReviewDate)
	assert.Equal(t, later, *m.Recommendations[0].ReviewDate)

	m.AddStreamingLink(StreamingLink{Platform: "Netflix", URL: "https://netflix.com/x"}, later)
	assert.Len(t, m.StreamingLinks, 1)

	m.SetWatched(true, later)
	assert.True(t, m.IsWatched)
}

func TestMarkNotInterested_RepeatKeepsUpdatedAt(t *testing.T) {
	m := NewMediaItem("Severance", MediaTypeTVShow, now)
	first := now.Add(time.Hour)

	m.MarkNotInterested(first)
	m.MarkNotInterested(first.Add(time.Hour))

	assert.True(t, m.IsNotInterested)
	assert.Equal(t, first, m.UpdatedAt)
}

func TestSetUserScore(t *testing.T) {
	m := NewMediaItem("Arrival", MediaTypeMovie, now)

	require.NoError(t, m.SetUserScore(8.5, now))
	require.NotNil(t, m.UserScore)
	assert.InDelta(t, 8.5, *m.UserScore, 1e-9)

	assert.Error(t, m.SetUserScore(-1, now))
	assert.Error(t, m.SetUserScore(10.5, now))
	assert.InDelta(t, 8.5, *m.UserScore, 1e-9)
}

func TestClone(t *testing.T) {
	m := NewMediaItem("Arrival", MediaTypeMovie, now)
	m.ReleaseDate = at(day)
	require.NoError(t, m.SetUserScore(7, now))
	m.AddStreamingLink(StreamingLink{Platform: "Prime", URL: "https://primevideo.com/x"}, now)

	c := m.Clone()
	assert.Equal(t, m, c)

	*c.UserScore = 1
	c.StreamingLinks[0].Platform = "Other"
	*c.ReleaseDate = now

	assert.InDelta(t, 7, *m.UserScore, 1e-9)
	assert.Equal(t, "Prime", m.StreamingLinks[0].Platform)
	assert.Equal(t, now.Add(day), *m.ReleaseDate)
}

func TestParseMediaType(t *testing.T) {
	mt, err := ParseMediaType("tv")
	require.NoError(t, err)
	assert.Equal(t, MediaTypeTVShow, mt)

	mt, err = ParseMediaType("book")
	require.NoError(t, err)
	assert.Equal(t, MediaTypeBook, mt)

	_, err = ParseMediaType("podcast")
	assert.Error(t, err)
}

func TestInboxItemExpiry(t *testing.T) {
	item := NewInboxItem("《流浪地球》", "", now, 7*day)

	assert.False(t, item.Processed)
	assert.Equal(t, now.Add(7*day), item.ExpiresAt)
	assert.False(t, item.IsExpired(now.Add(7*day)))
	assert.True(t, item.IsExpired(now.Add(7*day+time.Second)))
}
