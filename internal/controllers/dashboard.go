package controllers

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/zoetrope/internal/config"
	"github.com/amaumene/zoetrope/internal/models"
	"github.com/amaumene/zoetrope/internal/ranking"
)

const latestWantsLimit = 10

// Section is one titled row of the dashboard
type Section struct {
	Title string              `json:"title"`
	Items []*models.MediaItem `json:"items"`
}

// Dashboard groups the home screen rows
type Dashboard struct {
	Carousel         Section `json:"carousel"`
	LatestWants      Section `json:"latest_wants"`
	EndingSoon       Section `json:"ending_soon"`
	RecentlyReleased Section `json:"recently_released"`
}

// DashboardController builds the home screen
type DashboardController struct {
	store                  models.Store
	carouselLimit          int
	endingSoonWindow       time.Duration
	recentlyReleasedWindow time.Duration
	now                    Clock
	logger                 *logrus.Logger
}

// NewDashboardController creates a new dashboard controller
func NewDashboardController(store models.Store, cfg *config.Config, now Clock, logger *logrus.Logger) *DashboardController {
	return &DashboardController{
		store:                  store,
		carouselLimit:          cfg.CarouselLimit,
		endingSoonWindow:       cfg.EndingSoonWindow,
		recentlyReleasedWindow: cfg.RecentlyReleasedWindow,
		now:                    now,
		logger:                 logger,
	}
}

// Dashboard computes every row from a fresh load of the collection
func (c *DashboardController) Dashboard(ctx context.Context) (*Dashboard, error) {
	_, span := tracer.Start(ctx, "dashboard.Build")
	defer span.End()

	items, err := c.store.GetAllMedias()
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	now := c.now()

	// Rows other than the carousel only show what the user still wants to watch
	var wants []*models.MediaItem
	for _, item := range items {
		if !item.IsWatched && !item.IsNotInterested {
			wants = append(wants, item)
		}
	}

	endingBy := now.Add(c.endingSoonWindow)
	var ending []*models.MediaItem
	for _, item := range wants {
		if item.EndDate != nil && !item.EndDate.Before(now) && !item.EndDate.After(endingBy) {
			ending = append(ending, item)
		}
	}

	releasedSince := now.Add(-c.recentlyReleasedWindow)
	var released []*models.MediaItem
	for _, item := range wants {
		if item.ReleaseDate != nil && !item.ReleaseDate.Before(releasedSince) && !item.ReleaseDate.After(now) {
			released = append(released, item)
		}
	}

	dashboard := &Dashboard{
		Carousel: Section{
			Title: "为你推荐",
			Items: ranking.Limit(ranking.Carousel(items, now), c.carouselLimit),
		},
		LatestWants: Section{
			Title: "最新想看",
			Items: ranking.Limit(ranking.View(wants, nil, ranking.SortRecentlyAdded), latestWantsLimit),
		},
		EndingSoon: Section{
			Title: "即将下映",
			Items: ranking.Carousel(ending, now),
		},
		RecentlyReleased: Section{
			Title: "最近上映",
			Items: ranking.Carousel(released, now),
		},
	}

	c.logger.WithFields(logrus.Fields{
		"carousel":          len(dashboard.Carousel.Items),
		"latest_wants":      len(dashboard.LatestWants.Items),
		"ending_soon":       len(dashboard.EndingSoon.Items),
		"recently_released": len(dashboard.RecentlyReleased.Items),
	}).Debug("Dashboard built")

	return dashboard, nil
}
