package controllers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/zoetrope/internal/models"
)

func TestDashboard(t *testing.T) {
	f := newFixture(t)

	endingSoon := media("Ending in 10 days", models.MediaTypeMovie)
	endingSoon.ReleaseDate = at(-40 * day)
	endingSoon.EndDate = at(10 * day)

	endingLater := media("Ending in 20 days", models.MediaTypeMovie)
	endingLater.ReleaseDate = at(-40 * day)
	endingLater.EndDate = at(20 * day)

	justReleased := media("Released 3 days ago", models.MediaTypeTVShow)
	justReleased.ReleaseDate = at(-3 * day)

	watched := media("Watched", models.MediaTypeMovie)
	watched.ReleaseDate = at(-1 * day)
	watched.IsWatched = true

	hidden := media("Hidden", models.MediaTypeMovie)
	hidden.EndDate = at(2 * day)
	hidden.IsNotInterested = true

	f.seed(t, endingSoon, endingLater, justReleased, watched, hidden)

	d, err := f.dashboard.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Ending in 10 days"}, titles(d.EndingSoon.Items))
	assert.Equal(t, []string{"Released 3 days ago"}, titles(d.RecentlyReleased.Items))
	assert.Equal(t, []string{"Released 3 days ago", "Ending in 20 days", "Ending in 10 days"}, titles(d.LatestWants.Items))
	assert.NotContains(t, titles(d.Carousel.Items), "Hidden")
	assert.Contains(t, titles(d.Carousel.Items), "Watched")
	assert.Equal(t, "即将下映", d.EndingSoon.Title)
}

func TestDashboard_CarouselLimit(t *testing.T) {
	f := newFixture(t)
	f.dashboard.carouselLimit = 2
	f.seed(t,
		media("A", models.MediaTypeMovie),
		media("B", models.MediaTypeMovie),
		media("C", models.MediaTypeMovie),
	)

	d, err := f.dashboard.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, titles(d.Carousel.Items))
}

func TestDashboard_Empty(t *testing.T) {
	f := newFixture(t)

	d, err := f.dashboard.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Empty(t, d.Carousel.Items)
	assert.Empty(t, d.LatestWants.Items)
}
