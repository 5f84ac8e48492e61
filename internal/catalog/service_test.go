package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/watchcrew/watchcrew-backend/pkg/config"
	pkgerrors "github.com/watchcrew/watchcrew-backend/pkg/errors"
)

type fakeCache struct {
	store map[string]string
	sets  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	if value, ok := f.store[key]; ok {
		return value, nil
	}
	return "", redislib.Nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.sets++
	f.store[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeCache) CatalogKey(parts ...string) string {
	return "wc:catalog:" + strings.Join(parts, ":")
}

func buildGateway(t *testing.T, handler http.HandlerFunc) (Gateway, *fakeCache, *int) {
	t.Helper()

	upstreamCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls++
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(config.CatalogConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 2 * time.Second,
	})
	require.NoError(t, err)

	cache := newFakeCache()
	gateway, err := NewService(ServiceParams{
		Client: client,
		Cache:  cache,
		Config: config.CatalogConfig{CacheTTL: time.Minute},
	})
	require.NoError(t, err)
	return gateway, cache, &upstreamCalls
}

func TestSearchCachesResponses(t *testing.T) {
	gateway, cache, upstreamCalls := buildGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SearchResponse{
			Page:         1,
			TotalResults: 1,
			Results:      []SearchResult{{ID: 603, MediaType: "movie", Title: "The Matrix"}},
		})
	})

	first, err := gateway.Search(context.Background(), "matrix", 1)
	require.NoError(t, err)
	require.Len(t, first.Results, 1)
	require.Equal(t, 1, *upstreamCalls)
	require.Equal(t, 1, cache.sets)

	second, err := gateway.Search(context.Background(), "matrix", 1)
	require.NoError(t, err)
	require.Equal(t, first.Results[0].Title, second.Results[0].Title)
	require.Equal(t, 1, *upstreamCalls, "cache hit must skip the upstream call")
}

func TestSearchRequiresQuery(t *testing.T) {
	gateway, _, upstreamCalls := buildGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SearchResponse{})
	})

	_, err := gateway.Search(context.Background(), "   ", 1)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Zero(t, *upstreamCalls)
}

func TestMovieNotFound(t *testing.T) {
	gateway, _, _ := buildGateway(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := gateway.Movie(context.Background(), 42)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	_, err = gateway.Movie(context.Background(), 0)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUpstreamFailureMapsToDependency(t *testing.T) {
	gateway, _, _ := buildGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := gateway.TV(context.Background(), 42)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestTrendingValidatesParams(t *testing.T) {
	gateway, _, upstreamCalls := buildGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SearchResponse{Page: 1})
	})

	_, err := gateway.Trending(context.Background(), "books", "day", 1)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = gateway.Trending(context.Background(), "movie", "month", 1)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Zero(t, *upstreamCalls)

	res, err := gateway.Trending(context.Background(), "all", "week", 1)
	require.NoError(t, err)
	require.Equal(t, 1, res.Page)
}

func TestTVSeasonPathAndValidation(t *testing.T) {
	var seenPath string
	gateway, _, _ := buildGateway(t, func(w http.ResponseWriter, r *http.Request) {
		seenPath = r.URL.Path
		json.NewEncoder(w).Encode(SeasonDetails{ID: 3624, SeasonNumber: 1, Name: "Season 1"})
	})

	season, err := gateway.TVSeason(context.Background(), 1399, 1)
	require.NoError(t, err)
	require.Equal(t, "Season 1", season.Name)
	require.Equal(t, "/tv/1399/season/1", seenPath)

	_, err = gateway.TVSeason(context.Background(), 1399, -1)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestPersonReadsThroughCache(t *testing.T) {
	gateway, _, upstreamCalls := buildGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(PersonDetails{ID: 6384, Name: "Keanu Reeves"})
	})

	person, err := gateway.Person(context.Background(), 6384)
	require.NoError(t, err)
	require.Equal(t, "Keanu Reeves", person.Name)

	_, err = gateway.Person(context.Background(), 6384)
	require.NoError(t, err)
	require.Equal(t, 1, *upstreamCalls)
}
