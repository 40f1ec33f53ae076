package ranking

import (
	"time"

	"github.com/amaumene/zoetrope/internal/models"
)

// Collection is an id-indexed set of media items that remembers insertion order.
// It owns its items: mutations go through MarkNotInterested and DeferInterest,
// and projections are recomputed on every call. Not safe for concurrent use.
type Collection struct {
	order []string
	byID  map[string]*models.MediaItem
	now   func() time.Time
}

// NewCollection indexes items by ID. Later duplicates of an ID replace earlier ones
// but keep the position of the first occurrence.
func NewCollection(items []*models.MediaItem, now func() time.Time) *Collection {
	if now == nil {
		now = time.Now
	}
	c := &Collection{
		order: make([]string, 0, len(items)),
		byID:  make(map[string]*models.MediaItem, len(items)),
		now:   now,
	}
	for _, item := range items {
		c.Put(item)
	}
	return c
}

// Put adds or replaces an item
func (c *Collection) Put(item *models.MediaItem) {
	if item == nil {
		return
	}
	if _, exists := c.byID[item.ID]; !exists {
		c.order = append(c.order, item.ID)
	}
	c.byID[item.ID] = item
}

// Get returns the item with the given ID
func (c *Collection) Get(id string) (*models.MediaItem, bool) {
	item, ok := c.byID[id]
	return item, ok
}

// Len returns the number of items
func (c *Collection) Len() int {
	return len(c.order)
}

// Items returns the items in insertion order
func (c *Collection) Items() []*models.MediaItem {
	items := make([]*models.MediaItem, 0, len(c.order))
	for _, id := range c.order {
		items = append(items, c.byID[id])
	}
	return items
}

// MarkNotInterested flags the item so it never shows up in the carousel again.
// Unknown IDs are ignored; the return value reports whether an item was changed.
func (c *Collection) MarkNotInterested(id string) bool {
	item, ok := c.byID[id]
	if !ok {
		return false
	}
	item.MarkNotInterested(c.now())
	return true
}

// DeferInterest applies the watch-later penalty. Unknown IDs are ignored.
func (c *Collection) DeferInterest(id string) bool {
	item, ok := c.byID[id]
	if !ok {
		return false
	}
	item.DeferInterest(c.now())
	return true
}

// Carousel ranks the current items for the carousel
func (c *Collection) Carousel() []*models.MediaItem {
	return Carousel(c.Items(), c.now())
}

// View projects the current items for the browsing list
func (c *Collection) View(typeFilter *models.MediaType, key SortKey) []*models.MediaItem {
	return View(c.Items(), typeFilter, key)
}
