package ranking

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/zoetrope/internal/models"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func day(n int) *time.Time {
	t := testNow.Add(time.Duration(n) * 24 * time.Hour)
	return &t
}

func item(id string, mentions int) *models.MediaItem {
	return &models.MediaItem{
		ID:           id,
		Title:        id,
		Type:         models.MediaTypeMovie,
		MentionCount: mentions,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
}

func ids(items []*models.MediaItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestCarousel_Empty(t *testing.T) {
	assert.Empty(t, Carousel(nil, testNow))
	assert.Empty(t, Carousel([]*models.MediaItem{}, testNow))
}

func TestCarousel_ExcludesNotInterested(t *testing.T) {
	hidden := item("hidden", 1000)
	hidden.IsNotInterested = true
	hidden.EndDate = day(2)
	hidden.ReleaseDate = day(-10)

	visible := item("visible", 1)

	ranked := Carousel([]*models.MediaItem{hidden, visible}, testNow)
	assert.Equal(t, []string{"visible"}, ids(ranked))
}

func TestCarousel_EndingSoonBeatsMentions(t *testing.T) {
	a := item("A", 1)
	a.EndDate = day(3)

	b := item("B", 1000)
	b.ReleaseDate = day(3)

	ranked := Carousel([]*models.MediaItem{a, b}, testNow)
	assert.Equal(t, []string{"A", "B"}, ids(ranked))

	// Input order must not matter when the predicates differ
	ranked = Carousel([]*models.MediaItem{b, a}, testNow)
	assert.Equal(t, []string{"A", "B"}, ids(ranked))
}

func TestCarousel_PredicatePrecedence(t *testing.T) {
	plain := item("plain", 50)

	showing := item("showing", 1)
	showing.ReleaseDate = day(-30)

	coming := item("coming", 1)
	coming.ReleaseDate = day(5)

	ending := item("ending", 1)
	ending.ReleaseDate = day(-60)
	ending.EndDate = day(4)

	ranked := Carousel([]*models.MediaItem{plain, showing, coming, ending}, testNow)
	if diff := cmp.Diff([]string{"ending", "coming", "showing", "plain"}, ids(ranked)); diff != "" {
		t.Errorf("carousel order mismatch (-want +got):\n%s", diff)
	}
}

func TestCarousel_MentionTieBreak(t *testing.T) {
	c := item("C", 5)
	d := item("D", 10)

	ranked := Carousel([]*models.MediaItem{c, d}, testNow)
	assert.Equal(t, []string{"D", "C"}, ids(ranked))
}

func TestCarousel_Stability(t *testing.T) {
	first := item("first", 3)
	first.ReleaseDate = day(-2)
	second := item("second", 3)
	second.ReleaseDate = day(-20)

	ranked := Carousel([]*models.MediaItem{first, second}, testNow)
	assert.Equal(t, []string{"first", "second"}, ids(ranked))

	ranked = Carousel([]*models.MediaItem{second, first}, testNow)
	assert.Equal(t, []string{"second", "first"}, ids(ranked))
}

func TestCarousel_UndatedItemsSortLastInInputOrder(t *testing.T) {
	u1 := item("u1", 1)
	u2 := item("u2", 1)
	dated := item("dated", 1)
	dated.ReleaseDate = day(-1)

	ranked := Carousel([]*models.MediaItem{u1, u2, dated}, testNow)
	assert.Equal(t, []string{"dated", "u1", "u2"}, ids(ranked))
}

func TestCarousel_DoesNotMutateInput(t *testing.T) {
	a := item("a", 1)
	b := item("b", 9)
	b.IsNotInterested = true
	c := item("c", 5)

	input := []*models.MediaItem{a, b, c}
	before := []*models.MediaItem{a.Clone(), b.Clone(), c.Clone()}

	_ = Carousel(input, testNow)
	_ = Carousel(input, testNow)

	require.Len(t, input, 3)
	assert.Equal(t, []string{"a", "b", "c"}, ids(input))
	for i := range input {
		assert.Equal(t, before[i], input[i])
	}
}

func TestCarousel_IgnoresPriorityScore(t *testing.T) {
	low := item("low", 2)
	low.PriorityScore = -100
	high := item("high", 1)
	high.PriorityScore = 100

	ranked := Carousel([]*models.MediaItem{high, low}, testNow)
	assert.Equal(t, []string{"low", "high"}, ids(ranked))
}

func TestLimit(t *testing.T) {
	items := []*models.MediaItem{item("a", 1), item("b", 1), item("c", 1)}

	assert.Len(t, Limit(items, 2), 2)
	assert.Len(t, Limit(items, 5), 3)
	assert.Len(t, Limit(items, 0), 3)
}
