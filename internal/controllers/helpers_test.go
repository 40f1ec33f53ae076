package controllers

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/zoetrope/internal/config"
	"github.com/amaumene/zoetrope/internal/metrics"
	"github.com/amaumene/zoetrope/internal/models"
	"github.com/amaumene/zoetrope/internal/services/tmdb"
	"github.com/amaumene/zoetrope/internal/utils"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func fixedClock() time.Time { return testNow }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig() *config.Config {
	return &config.Config{
		CarouselLimit:          10,
		EndingSoonWindow:       14 * day,
		RecentlyReleasedWindow: 7 * day,
		InboxRetention:         7 * day,
	}
}

func newStore(t *testing.T) models.Store {
	t.Helper()
	store, err := models.Open(models.DriverBolt, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

type fakeTMDB struct {
	mu        sync.Mutex
	enabled   bool
	multi     map[string][]tmdb.SearchResult
	movies    map[string][]tmdb.SearchResult
	shows     map[string][]tmdb.SearchResult
	tvDetails map[int]*tmdb.TVDetails
	err       error
	calls     int
	delay     time.Duration
}

func newFakeTMDB() *fakeTMDB {
	return &fakeTMDB{
		enabled:   true,
		multi:     map[string][]tmdb.SearchResult{},
		movies:    map[string][]tmdb.SearchResult{},
		shows:     map[string][]tmdb.SearchResult{},
		tvDetails: map[int]*tmdb.TVDetails{},
	}
}

func (f *fakeTMDB) Enabled() bool { return f.enabled }

func (f *fakeTMDB) search(table map[string][]tmdb.SearchResult, query string) (*tmdb.SearchResponse, error) {
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	results := table[query]
	return &tmdb.SearchResponse{Page: 1, Results: results, TotalPages: 1, TotalResults: len(results)}, nil
}

func (f *fakeTMDB) SearchMulti(_ context.Context, query string, _ tmdb.SearchOptions) (*tmdb.SearchResponse, error) {
	return f.search(f.multi, query)
}

func (f *fakeTMDB) SearchMovies(_ context.Context, query string, _ tmdb.SearchOptions) (*tmdb.SearchResponse, error) {
	return f.search(f.movies, query)
}

func (f *fakeTMDB) SearchTV(_ context.Context, query string, _ tmdb.SearchOptions) (*tmdb.SearchResponse, error) {
	return f.search(f.shows, query)
}

func (f *fakeTMDB) GetMovieDetails(_ context.Context, id int) (*tmdb.MovieDetails, error) {
	return &tmdb.MovieDetails{ID: id}, nil
}

func (f *fakeTMDB) GetTVDetails(_ context.Context, id int) (*tmdb.TVDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.tvDetails[id]; ok {
		return d, nil
	}
	return &tmdb.TVDetails{ID: id, InProduction: true, Status: "Returning Series"}, nil
}

func (f *fakeTMDB) PosterURL(path string) string {
	if path == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/w500" + path
}

type fixture struct {
	store      models.Store
	tmdb       *fakeTMDB
	collection *CollectionController
	dashboard  *DashboardController
	search     *SearchController
	inbox      *InboxController
}

func newFixture(t *testing.T, blockedTerms ...string) *fixture {
	t.Helper()

	store := newStore(t)
	fake := newFakeTMDB()
	logger := quietLogger()
	cfg := testConfig()

	collection := NewCollectionController(store, fake, metrics.Nop{}, fixedClock, logger)
	return &fixture{
		store:      store,
		tmdb:       fake,
		collection: collection,
		dashboard:  NewDashboardController(store, cfg, fixedClock, logger),
		search:     NewSearchController(fake, collection, logger),
		inbox:      NewInboxController(store, collection, fake, utils.NewBlocklist(blockedTerms...), cfg, metrics.Nop{}, fixedClock, logger),
	}
}

// seed stores items created one minute apart so insertion order is stable
func (f *fixture) seed(t *testing.T, items ...*models.MediaItem) {
	t.Helper()
	for i, item := range items {
		if item.CreatedAt.IsZero() {
			item.CreatedAt = testNow.Add(time.Duration(i-len(items)) * time.Minute)
			item.UpdatedAt = item.CreatedAt
		}
		require.NoError(t, f.store.CreateMedia(item))
	}
}

func media(title string, mediaType models.MediaType) *models.MediaItem {
	item := models.NewMediaItem(title, mediaType, time.Time{})
	item.CreatedAt = time.Time{}
	item.UpdatedAt = time.Time{}
	return item
}

func at(d time.Duration) *time.Time {
	t := testNow.Add(d)
	return &t
}

func titles(items []*models.MediaItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title
	}
	return out
}
