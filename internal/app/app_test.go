package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/zoetrope/internal/config"
	"github.com/amaumene/zoetrope/internal/models"
)

func testConfig(t *testing.T, driver string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		ServerPort:             "0",
		CORSOrigins:            []string{"*"},
		StoreDriver:            driver,
		TMDBBaseURL:            "https://api.themoviedb.org/3",
		TMDBImageBaseURL:       "https://image.tmdb.org/t/p",
		TMDBLanguage:           "zh-CN",
		TMDBRequestsPerSecond:  4,
		SearchCacheTTL:         time.Minute,
		CarouselLimit:          10,
		EndingSoonWindow:       14 * 24 * time.Hour,
		RecentlyReleasedWindow: 7 * 24 * time.Hour,
		InboxRetention:         7 * 24 * time.Hour,
		ConfigDir:              dir,
		BlocklistFile:          dir + "/blocklist.txt",
		DatabaseFile:           dir + "/zoetrope.db",
		LogLevel:               "error",
		LogFormat:              "text",
	}
}

func TestInitialize(t *testing.T) {
	for _, driver := range []string{models.DriverBolt, models.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t, driver)

			a, cleanup, err := Initialize(cfg)
			require.NoError(t, err)
			defer cleanup()

			assert.NotNil(t, a.Server)
			assert.NotNil(t, a.Scheduler)
			assert.NotNil(t, a.Tracer)
			assert.Same(t, cfg, a.Config)

			stats, err := a.Collection.Stats(context.Background())
			require.NoError(t, err)
			assert.Zero(t, stats.Total)
		})
	}
}

func TestInitialize_BadDriver(t *testing.T) {
	cfg := testConfig(t, "postgres")

	_, _, err := Initialize(cfg)
	assert.Error(t, err)
}
