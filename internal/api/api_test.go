package api_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varologs/internal/api"
	"varologs/internal/autocomplete"
	"varologs/internal/catalog"
	"varologs/internal/config"
	"varologs/internal/covers"
	"varologs/internal/credentials"
	"varologs/internal/media"
	"varologs/internal/metrics"
	"varologs/internal/services"
	"varologs/internal/testsupport"
)

type fakeResolver struct {
	mu    sync.Mutex
	calls []autocomplete.Request
	fn    func(autocomplete.Request) (*autocomplete.Metadata, error)
}

func (f *fakeResolver) Resolve(_ context.Context, req autocomplete.Request) (*autocomplete.Metadata, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.fn == nil {
		return nil, autocomplete.ErrNotConfigured
	}
	return f.fn(req)
}

type fakeCovers struct {
	last covers.Query
}

func (f *fakeCovers) Find(_ context.Context, q covers.Query) covers.Result {
	f.last = q
	return covers.Result{CoverURL: "https://example.test/cover.jpg", SearchURL: covers.SearchURL(q.Title), Source: "fake"}
}

type fakeKeys struct {
	key string
	err error
}

func (f *fakeKeys) Configure(_ context.Context, apiKey string) error {
	if f.err != nil {
		return f.err
	}
	f.key = apiKey
	return nil
}

func (f *fakeKeys) Status() credentials.Status {
	return credentials.Status{Configured: f.key != "", Source: credentials.SourceNone, KeyEnv: "GEMINI_API_KEY"}
}

type harness struct {
	handler  http.Handler
	store    *catalog.Store
	resolver *fakeResolver
	covers   *fakeCovers
	keys     *fakeKeys
	metrics  *metrics.Metrics
}

func newHarness(t *testing.T, opts ...testsupport.ConfigOption) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	h := &harness{
		store:    testsupport.MustOpenStore(t, cfg),
		resolver: &fakeResolver{},
		covers:   &fakeCovers{},
		keys:     &fakeKeys{},
		metrics:  metrics.New(),
	}
	h.handler = api.NewHandler(api.Options{
		Store:       h.store,
		Resolver:    h.resolver,
		Covers:      h.covers,
		Keys:        h.keys,
		Metrics:     h.metrics,
		Provider:    config.ProviderGemini,
		Models:      cfg.AI.Models,
		FrontendDir: cfg.Paths.FrontendDir,
	})
	return h
}

func (h *harness) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]any](t, rec)["error"].(string)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestUsersLifecycle(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/users", map[string]string{"name": "Zoe"})
	require.Equal(t, http.StatusCreated, rec.Code)
	zoe := decodeBody[catalog.User](t, rec)
	assert.Equal(t, catalog.DefaultAvatarColor, zoe.AvatarColor)

	rec = h.do(t, http.MethodPost, "/api/users", map[string]string{"name": "Ana", "avatar_color": "#ff0000"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/users", map[string]string{"name": "Zoe"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/users", map[string]string{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[map[string]any](t, rec)["fields"], "name")

	rec = h.do(t, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decodeBody[[]catalog.User](t, rec)
	require.Len(t, users, 2)
	assert.Equal(t, "Ana", users[0].Name)
	assert.Equal(t, "Zoe", users[1].Name)

	path := "/api/users/" + itoa(zoe.ID)
	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodDelete, "/api/users/abc", nil).Code)
}

func TestItemsAndReviews(t *testing.T) {
	h := newHarness(t)
	user := testsupport.NewUser(t, h.store, "Ana")

	payload := map[string]any{"type": "book", "title": "Dune", "year": 1965, "creator": "Frank Herbert", "pages": 412}
	rec := h.do(t, http.MethodPost, "/api/items", payload)
	require.Equal(t, http.StatusCreated, rec.Code)
	dune := decodeBody[catalog.Item](t, rec)
	require.NotNil(t, dune.Pages)
	assert.Equal(t, 412, *dune.Pages)

	rec = h.do(t, http.MethodPost, "/api/items", payload)
	require.Equal(t, http.StatusOK, rec.Code, "duplicate returns the existing item")
	assert.Equal(t, dune.ID, decodeBody[catalog.Item](t, rec).ID)

	rec = h.do(t, http.MethodPost, "/api/items", map[string]any{"type": "vinyl", "title": "X"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	itemPath := "/api/items/" + itoa(dune.ID)
	rec = h.do(t, http.MethodPut, itemPath, map[string]any{"title": "Dune", "year": 1965, "genre": "Sci-Fi"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[catalog.Item](t, rec)
	assert.Equal(t, media.Book, updated.Type)
	require.NotNil(t, updated.Genre)
	assert.Equal(t, "Sci-Fi", *updated.Genre)

	rec = h.do(t, http.MethodPost, itemPath+"/reviews", map[string]any{"user_id": user.ID, "rating": 9, "status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(t, http.MethodPost, itemPath+"/reviews", map[string]any{"user_id": user.ID, "rating": 11})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodGet, itemPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeBody[catalog.ItemDetail](t, rec)
	require.Len(t, detail.Reviews, 1)
	assert.Equal(t, "Ana", detail.Reviews[0].UserName)
	require.NotNil(t, detail.AvgRating)
	assert.InDelta(t, 9.0, *detail.AvgRating, 0.001)

	rec = h.do(t, http.MethodGet, "/api/items?type=book&search=dun", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]catalog.Item](t, rec), 1)
	rec = h.do(t, http.MethodGet, "/api/items?type=movie", nil)
	assert.Empty(t, decodeBody[[]catalog.Item](t, rec))
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/api/items?limit=-1", nil).Code)

	rec = h.do(t, http.MethodDelete, itemPath+"/reviews", map[string]any{"user_id": user.ID})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = h.do(t, http.MethodDelete, itemPath+"/reviews", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, itemPath, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, itemPath, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodPut, itemPath, map[string]any{"title": "Dune"}).Code)
}

func TestLists(t *testing.T) {
	h := newHarness(t)
	ana := testsupport.NewUser(t, h.store, "Ana")
	bob := testsupport.NewUser(t, h.store, "Bob")
	item := testsupport.NewItem(t, h.store, media.Movie, "Alien", 1979)

	rec := h.do(t, http.MethodPost, "/api/lists", map[string]any{"user_id": ana.ID, "name": "Favs"})
	require.Equal(t, http.StatusCreated, rec.Code)
	favs := decodeBody[catalog.List](t, rec)
	assert.True(t, favs.IsPublic)

	rec = h.do(t, http.MethodPost, "/api/lists", map[string]any{"user_id": bob.ID, "name": "Secret", "is_public": false})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/lists?user_id="+itoa(ana.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lists := decodeBody[[]catalog.List](t, rec)
	require.Len(t, lists, 1)
	assert.Equal(t, "Favs", lists[0].Name)

	listPath := "/api/lists/" + itoa(favs.ID)
	rec = h.do(t, http.MethodPost, listPath+"/items", map[string]any{"item_id": item.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, decodeBody[map[string]any](t, rec)["success"])
	rec = h.do(t, http.MethodPost, listPath+"/items", map[string]any{"item_id": 9999})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodGet, listPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeBody[catalog.ListDetail](t, rec)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "Alien", detail.Items[0].Title)

	rec = h.do(t, http.MethodPut, listPath, map[string]any{"name": "Favorites", "is_public": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeBody[catalog.List](t, rec).IsPublic)

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, listPath+"/items/"+itoa(item.ID), nil).Code)
	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, listPath, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, listPath, nil).Code)
}

func TestStats(t *testing.T) {
	h := newHarness(t)
	user := testsupport.NewUser(t, h.store, "Ana")
	testsupport.NewItem(t, h.store, media.Book, "Dune", 1965)
	testsupport.NewItem(t, h.store, media.Movie, "Alien", 1979)

	rec := h.do(t, http.MethodGet, "/api/stats?user_id="+itoa(user.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody[catalog.Stats](t, rec)
	assert.Equal(t, 2, stats.TotalItems)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Len(t, stats.ItemsByType, 2)
	require.NotNil(t, stats.UserStats)
	assert.Zero(t, stats.UserStats.Reviewed)
}

func TestAutocompleteRequiresQueryAndType(t *testing.T) {
	h := newHarness(t)

	for _, body := range []map[string]string{
		{"type": "book"},
		{"query": "dune"},
		{"query": "   ", "type": "book"},
	} {
		rec := h.do(t, http.MethodPost, "/api/ai/autocomplete", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Query and type are required", errorMessage(t, rec))
	}
	assert.Empty(t, h.resolver.calls)
}

func TestAutocompleteNotConfigured(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/ai/autocomplete", map[string]string{"query": "xyzzy123", "type": "book"})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "AI service not configured", errorMessage(t, rec))

	var body struct {
		ManualEntry struct {
			Title string `json:"title"`
			Type  string `json:"type"`
		} `json:"manual_entry"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "xyzzy123", body.ManualEntry.Title)
	assert.Equal(t, "book", body.ManualEntry.Type)
}

func TestAutocompleteSuccess(t *testing.T) {
	h := newHarness(t)
	year := 1965
	h.resolver.fn = func(req autocomplete.Request) (*autocomplete.Metadata, error) {
		return &autocomplete.Metadata{Title: "Dune", Year: &year, Model: "gemini-2.5-flash"}, nil
	}

	rec := h.do(t, http.MethodPost, "/api/ai/autocomplete", map[string]string{"query": "dune", "type": "Book"})
	require.Equal(t, http.StatusOK, rec.Code)
	meta := decodeBody[autocomplete.Metadata](t, rec)
	assert.Equal(t, "Dune", meta.Title)
	require.NotNil(t, meta.Year)
	assert.Equal(t, 1965, *meta.Year)
	require.Len(t, h.resolver.calls, 1)
	assert.Equal(t, media.Book, h.resolver.calls[0].Type)
}

func TestAutocompleteExhaustedOffersManualEntry(t *testing.T) {
	h := newHarness(t)
	h.resolver.fn = func(req autocomplete.Request) (*autocomplete.Metadata, error) {
		return nil, &autocomplete.ExhaustedCascadeError{Attempts: []autocomplete.AttemptFailure{
			{Model: "m1", Stage: autocomplete.StageParse, Raw: "I don't know", Err: errors.New("not json")},
			{Model: "m2", Stage: autocomplete.StageCall, Err: errors.New("quota")},
		}}
	}

	rec := h.do(t, http.MethodPost, "/api/ai/autocomplete", map[string]string{"query": "xyzzy123", "type": "movie"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Error       string `json:"error"`
		ManualEntry struct {
			Title string `json:"title"`
			Type  string `json:"type"`
		} `json:"manual_entry"`
		Attempts []struct {
			Model string `json:"model"`
			Stage string `json:"stage"`
		} `json:"attempts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "xyzzy123", body.ManualEntry.Title)
	assert.Equal(t, "movie", body.ManualEntry.Type)
	assert.Contains(t, body.Error, "all AI models failed (2 attempted)")
	require.Len(t, body.Attempts, 2)
	assert.Equal(t, "parse", body.Attempts[0].Stage)
	assert.Equal(t, "call", body.Attempts[1].Stage)
}

func TestAutocompleteTimeoutMapsToGatewayTimeout(t *testing.T) {
	h := newHarness(t)
	h.resolver.fn = func(autocomplete.Request) (*autocomplete.Metadata, error) {
		return nil, services.Wrap(services.ErrTimeout, "autocomplete", "resolve", "deadline", context.DeadlineExceeded)
	}

	rec := h.do(t, http.MethodPost, "/api/ai/autocomplete", map[string]string{"query": "dune", "type": "book"})
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestCover(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/ai/cover?title=Dune&type=book&year=&creator=Frank+Herbert", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.test/cover.jpg", decodeBody[covers.Result](t, rec).CoverURL)
	assert.Nil(t, h.covers.last.Year)
	assert.Equal(t, "Frank Herbert", h.covers.last.Creator)

	rec = h.do(t, http.MethodGet, "/api/ai/cover?title=Alien&type=movie&year=1979", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, h.covers.last.Year)
	assert.Equal(t, 1979, *h.covers.last.Year)

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/api/ai/cover?type=book", nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/api/ai/cover?title=X&type=radio", nil).Code)
}

func TestAIStatusAndKey(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/ai/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeBody[map[string]any](t, rec)
	assert.Equal(t, false, status["configured"])
	assert.Equal(t, config.ProviderGemini, status["provider"])

	rec = h.do(t, http.MethodPost, "/api/config/apikey", map[string]string{"apiKey": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/config/apikey", map[string]string{"apiKey": "AIza-test"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AIza-test", h.keys.key)

	rec = h.do(t, http.MethodGet, "/api/ai/status", nil)
	assert.Equal(t, true, decodeBody[map[string]any](t, rec)["configured"])

	h.keys.err = services.Wrap(services.ErrConfiguration, "credentials", "configure", "client build failed", errors.New("bad key"))
	rec = h.do(t, http.MethodPost, "/api/config/apikey", map[string]string{"apiKey": "other"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "AIza-test", h.keys.key)
}

func TestUnknownAPIRouteIsJSON(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", errorMessage(t, rec))
}

func TestFrontendNotBuilt(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/library/42", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Frontend not built", errorMessage(t, rec))
}

func TestFrontendServesIndexForClientRoutes(t *testing.T) {
	h := newHarness(t, testsupport.WithFrontend())

	rec := h.do(t, http.MethodGet, "/library/42", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>VaroLogs</title>")
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodGet, "/api/health", nil)

	rec := h.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "varologs_http_requests_total"))
}

func TestAIRateLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler := api.NewHandler(api.Options{
		Store:               testsupport.MustOpenStore(t, cfg),
		Resolver:            &fakeResolver{},
		Covers:              &fakeCovers{},
		Keys:                &fakeKeys{},
		AIRequestsPerMinute: 2,
	})

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/api/ai/status", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
