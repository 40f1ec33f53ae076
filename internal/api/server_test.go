package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/zoetrope/internal/api/handlers"
	"github.com/amaumene/zoetrope/internal/config"
	"github.com/amaumene/zoetrope/internal/controllers"
	"github.com/amaumene/zoetrope/internal/metrics"
	"github.com/amaumene/zoetrope/internal/models"
	"github.com/amaumene/zoetrope/internal/services/tmdb"
	"github.com/amaumene/zoetrope/internal/utils"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// offlineTMDB behaves like a client without an API key
type offlineTMDB struct{}

func (offlineTMDB) Enabled() bool { return false }
func (offlineTMDB) SearchMulti(context.Context, string, tmdb.SearchOptions) (*tmdb.SearchResponse, error) {
	return nil, tmdb.ErrNotConfigured
}
func (offlineTMDB) SearchMovies(context.Context, string, tmdb.SearchOptions) (*tmdb.SearchResponse, error) {
	return nil, tmdb.ErrNotConfigured
}
func (offlineTMDB) SearchTV(context.Context, string, tmdb.SearchOptions) (*tmdb.SearchResponse, error) {
	return nil, tmdb.ErrNotConfigured
}
func (offlineTMDB) GetMovieDetails(context.Context, int) (*tmdb.MovieDetails, error) {
	return nil, tmdb.ErrNotConfigured
}
func (offlineTMDB) GetTVDetails(context.Context, int) (*tmdb.TVDetails, error) {
	return nil, tmdb.ErrNotConfigured
}
func (offlineTMDB) PosterURL(string) string { return "" }

type envelope struct {
	Status string              `json:"status"`
	Data   json.RawMessage     `json:"data"`
	Error  *handlers.ErrorBody `json:"error"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := models.Open(models.DriverBolt, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		CORSOrigins:            []string{"*"},
		CarouselLimit:          10,
		EndingSoonWindow:       14 * 24 * time.Hour,
		RecentlyReleasedWindow: 7 * 24 * time.Hour,
		InboxRetention:         7 * 24 * time.Hour,
	}
	clock := func() time.Time { return testNow }

	reg := prometheus.NewRegistry()
	recorder := metrics.NewCollector(reg)

	collection := controllers.NewCollectionController(store, offlineTMDB{}, recorder, clock, logger)
	ctrls := Controllers{
		Collection: collection,
		Dashboard:  controllers.NewDashboardController(store, cfg, clock, logger),
		Search:     controllers.NewSearchController(offlineTMDB{}, collection, logger),
		Inbox:      controllers.NewInboxController(store, collection, offlineTMDB{}, utils.NewBlocklist(), cfg, recorder, clock, logger),
	}

	server := httptest.NewServer(NewRouter(cfg, ctrls, recorder, reg, logger))
	t.Cleanup(server.Close)
	return server
}

func do(t *testing.T, server *httptest.Server, method, path, body string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func TestHealth(t *testing.T) {
	server := newTestServer(t)

	status, env := do(t, server, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", env.Status)
	assert.JSONEq(t, `{"status":"healthy"}`, string(env.Data))
}

func TestMediaLifecycle(t *testing.T) {
	server := newTestServer(t)

	status, env := do(t, server, http.MethodPost, "/media", `{"title":"Arrival","type":"movie","release_date":"2026-03-13"}`)
	require.Equal(t, http.StatusCreated, status, env.Error)

	var created models.MediaItem
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Arrival", created.Title)
	assert.Equal(t, 1, created.MentionCount)

	status, env = do(t, server, http.MethodGet, "/media/"+created.ID, "")
	assert.Equal(t, http.StatusOK, status)

	status, env = do(t, server, http.MethodGet, "/media/carousel", "")
	require.Equal(t, http.StatusOK, status)
	var carousel []models.MediaItem
	require.NoError(t, json.Unmarshal(env.Data, &carousel))
	require.Len(t, carousel, 1)

	status, env = do(t, server, http.MethodPatch, "/media/"+created.ID, `{"user_score":8.5,"is_watched":true}`)
	require.Equal(t, http.StatusOK, status)
	var updated models.MediaItem
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.NotNil(t, updated.UserScore)
	assert.Equal(t, 8.5, *updated.UserScore)
	assert.True(t, updated.IsWatched)

	status, env = do(t, server, http.MethodPost, "/media/"+created.ID+"/streaming-links", `{"platform":"Netflix","url":"https://netflix.com/title/1","available":true}`)
	assert.Equal(t, http.StatusOK, status)

	status, env = do(t, server, http.MethodPost, "/media/"+created.ID+"/not-interested", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"applied":true}`, string(env.Data))

	status, env = do(t, server, http.MethodGet, "/media/carousel", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))

	status, env = do(t, server, http.MethodGet, "/media?sort=user_score", "")
	require.Equal(t, http.StatusOK, status)
	var list controllers.ListResult
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "user_score", list.Sort)

	status, _ = do(t, server, http.MethodDelete, "/media/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, status)

	status, env = do(t, server, http.MethodGet, "/media/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, handlers.CodeNotFound, env.Error.Code)
}

func TestMutationsOnUnknownIDAreNoOps(t *testing.T) {
	server := newTestServer(t)

	for _, path := range []string{"/media/missing/not-interested", "/media/missing/watch-later"} {
		status, env := do(t, server, http.MethodPost, path, "")
		assert.Equal(t, http.StatusOK, status, path)
		assert.JSONEq(t, `{"applied":false}`, string(env.Data), path)
	}
}

func TestBadRequests(t *testing.T) {
	server := newTestServer(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"carousel limit too large", http.MethodGet, "/media/carousel?limit=50", ""},
		{"unknown sort", http.MethodGet, "/media?sort=bogus", ""},
		{"non numeric page", http.MethodGet, "/media?page=two", ""},
		{"unknown field", http.MethodPost, "/inbox/submit", `{"content":"x","extra":1}`},
		{"empty body", http.MethodPost, "/media/add", ""},
		{"invalid add", http.MethodPost, "/media/add", `{"title":"Dune","media_type":"person","tmdb_id":1}`},
		{"blank query", http.MethodGet, "/search?q=", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, env := do(t, server, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, status)
			require.NotNil(t, env.Error)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, handlers.CodeInvalidInput, env.Error.Code)
		})
	}
}

func TestSearchWithoutTMDB(t *testing.T) {
	server := newTestServer(t)

	status, env := do(t, server, http.MethodGet, "/search?q=dune", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, handlers.CodeSearchUnavailable, env.Error.Code)

	status, env = do(t, server, http.MethodGet, "/search?q=dune&scope=media", "")
	assert.Equal(t, http.StatusOK, status)

	status, env = do(t, server, http.MethodGet, "/search/scopes", "")
	assert.Equal(t, http.StatusOK, status)
	var scopes []controllers.Scope
	require.NoError(t, json.Unmarshal(env.Data, &scopes))
	assert.Len(t, scopes, 4)
}

func TestInboxRoutes(t *testing.T) {
	server := newTestServer(t)

	status, env := do(t, server, http.MethodPost, "/inbox/submit", `{"content":"推荐《Arrival》"}`)
	require.Equal(t, http.StatusCreated, status)
	var item models.InboxItem
	require.NoError(t, json.Unmarshal(env.Data, &item))

	status, env = do(t, server, http.MethodPost, "/inbox/"+item.ID+"/process", "")
	require.Equal(t, http.StatusOK, status)
	var result controllers.ProcessResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, []string{"Arrival"}, result.ExtractedTitles)
	assert.False(t, result.Success)

	status, env = do(t, server, http.MethodGet, "/inbox?processed=true", "")
	require.Equal(t, http.StatusOK, status)
	var items []models.InboxItem
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 1)

	status, env = do(t, server, http.MethodPost, "/inbox/cleanup", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"deleted":0}`, string(env.Data))

	status, _ = do(t, server, http.MethodDelete, "/inbox/"+item.ID, "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, server, http.MethodGet, "/inbox/"+item.ID, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDashboardAndStatus(t *testing.T) {
	server := newTestServer(t)

	status, env := do(t, server, http.MethodPost, "/media", `{"title":"Severance","type":"tv_show"}`)
	require.Equal(t, http.StatusCreated, status)

	status, env = do(t, server, http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusOK, status)
	var dashboard controllers.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &dashboard))
	assert.Len(t, dashboard.Carousel.Items, 1)
	assert.Len(t, dashboard.LatestWants.Items, 1)

	status, env = do(t, server, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, status)
	var stats handlers.StatusResponse
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.TotalMedias)
	assert.Equal(t, map[string]int{"tv_show": 1}, stats.MediasByType)
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t)

	do(t, server, http.MethodGet, "/media/missing", "")

	resp, err := server.Client().Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `zoetrope_http_requests_total{method="GET",route="/media/{id}",status="404"} 1`)
}
