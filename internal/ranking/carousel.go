// Package ranking orders media items for the carousel and the browsing list.
// Everything here is pure: inputs are never mutated and no I/O is performed.
package ranking

import (
	"sort"
	"time"

	"github.com/amaumene/zoetrope/internal/models"
)

// carouselEntry caches the temporal flags so every comparison sees the same "now"
type carouselEntry struct {
	item        *models.MediaItem
	endingSoon  bool
	comingSoon  bool
	nowShowing  bool
	mentionRank int
}

// Carousel filters out not-interested items and orders the rest by:
// 1. Ending soon
// 2. Coming soon
// 3. Now showing
// 4. Mention count (higher first)
// Items that tie on every criterion keep their input order.
func Carousel(items []*models.MediaItem, now time.Time) []*models.MediaItem {
	entries := make([]carouselEntry, 0, len(items))
	for _, item := range items {
		if item == nil || item.IsNotInterested {
			continue
		}
		entries = append(entries, carouselEntry{
			item:        item,
			endingSoon:  item.IsEndingSoon(now),
			comingSoon:  item.IsComingSoon(now),
			nowShowing:  item.IsNowShowing(now),
			mentionRank: item.MentionCount,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]

		// PRIORITY 1: Ending soon
		if a.endingSoon != b.endingSoon {
			return a.endingSoon
		}

		// PRIORITY 2: Coming soon
		if a.comingSoon != b.comingSoon {
			return a.comingSoon
		}

		// PRIORITY 3: Now showing
		if a.nowShowing != b.nowShowing {
			return a.nowShowing
		}

		// PRIORITY 4: Mentioned more often
		return a.mentionRank > b.mentionRank
	})

	ranked := make([]*models.MediaItem, len(entries))
	for i, e := range entries {
		ranked[i] = e.item
	}
	return ranked
}

// Limit truncates a ranked slice to at most n items; n <= 0 means no limit
func Limit(items []*models.MediaItem, n int) []*models.MediaItem {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
