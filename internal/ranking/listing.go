package ranking

import (
	"fmt"
	"sort"

	"github.com/amaumene/zoetrope/internal/models"
)

// SortKey selects one of the browsing list orders. Values come from the
// package variables or ParseSortKey; the zero value sorts like SortRecentlyAdded.
type SortKey struct {
	name string
	less func(a, b *models.MediaItem) bool
}

var (
	// SortRecentlyAdded orders by creation time, newest first
	SortRecentlyAdded = SortKey{"recently_added", func(a, b *models.MediaItem) bool {
		return a.CreatedAt.After(b.CreatedAt)
	}}

	// SortRecentlyUpdated orders by last update, newest first
	SortRecentlyUpdated = SortKey{"recently_updated", func(a, b *models.MediaItem) bool {
		return a.UpdatedAt.After(b.UpdatedAt)
	}}

	// SortCommentCount orders by mention count until items carry a real comment count
	SortCommentCount = SortKey{"comment_count", func(a, b *models.MediaItem) bool {
		return a.MentionCount > b.MentionCount
	}}

	// SortUserScore orders by the user's rating; unrated counts as 0
	SortUserScore = SortKey{"user_score", func(a, b *models.MediaItem) bool {
		return scoreOrZero(a) > scoreOrZero(b)
	}}

	// SortPopularity orders by mention count
	SortPopularity = SortKey{"popularity", func(a, b *models.MediaItem) bool {
		return a.MentionCount > b.MentionCount
	}}
)

// SortKeys lists every sort key in menu order
var SortKeys = []SortKey{
	SortRecentlyAdded,
	SortRecentlyUpdated,
	SortCommentCount,
	SortUserScore,
	SortPopularity,
}

// String returns the wire name of the key
func (k SortKey) String() string {
	if k.less == nil {
		return SortRecentlyAdded.name
	}
	return k.name
}

// MarshalText lets sort keys appear in JSON payloads
func (k SortKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseSortKey converts a wire name into a SortKey. An empty string selects the default.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortRecentlyAdded, nil
	}
	for _, k := range SortKeys {
		if k.name == s {
			return k, nil
		}
	}
	return SortKey{}, fmt.Errorf("unknown sort key %q", s)
}

func scoreOrZero(m *models.MediaItem) float64 {
	if m.UserScore == nil {
		return 0
	}
	return *m.UserScore
}

// View filters items by type (nil keeps every type) and stable-sorts them by key.
// Not-interested items are kept; the list shows the whole collection.
func View(items []*models.MediaItem, typeFilter *models.MediaType, key SortKey) []*models.MediaItem {
	result := make([]*models.MediaItem, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if typeFilter != nil && item.Type != *typeFilter {
			continue
		}
		result = append(result, item)
	}

	less := key.less
	if less == nil {
		less = SortRecentlyAdded.less
	}

	sort.SliceStable(result, func(i, j int) bool {
		return less(result[i], result[j])
	})

	return result
}
