package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeIdempotencyStore struct {
	records map[string]string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{records: make(map[string]string)}
}

func (f *fakeIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	if value, ok := f.records[key]; ok {
		return value, nil
	}
	return "", redis.Nil
}

func (f *fakeIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.records[key]; ok {
		return false, nil
	}
	f.records[key], _ = value.(string)
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "wc:idempotency:" + scope + ":" + id
}

func newIdempotencyRouter(store IdempotencyStore, hits *int) http.Handler {
	r := chi.NewRouter()
	r.Use(Idempotency(store, nil))
	r.Post("/api/v1/groups", func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"name":"Movie Night"}}`))
	})
	r.Put("/api/v1/profiles/me", func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func postGroups(handler http.Handler, key, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest("POST", "/api/v1/groups", strings.NewReader(body))
	if key != "" {
		r.Header.Set("Idempotency-Key", key)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeIdempotencyStore()
	hits := 0
	handler := newIdempotencyRouter(store, &hits)

	first := postGroups(handler, "key-1", `{"name":"Movie Night"}`)
	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, 1, hits)

	second := postGroups(handler, "key-1", `{"name":"Movie Night"}`)
	require.Equal(t, http.StatusCreated, second.Code)
	require.Equal(t, first.Body.String(), second.Body.String())
	require.Equal(t, "application/json", second.Header().Get("Content-Type"))
	require.Equal(t, 1, hits, "replay must not reach the handler")
}

func TestIdempotencyRejectsReusedKeyWithDifferentBody(t *testing.T) {
	store := newFakeIdempotencyStore()
	hits := 0
	handler := newIdempotencyRouter(store, &hits)

	first := postGroups(handler, "key-1", `{"name":"Movie Night"}`)
	require.Equal(t, http.StatusCreated, first.Code)

	conflict := postGroups(handler, "key-1", `{"name":"Something Else"}`)
	require.Equal(t, http.StatusConflict, conflict.Code)
	require.Equal(t, 1, hits)
}

func TestIdempotencyIgnoredWithoutKey(t *testing.T) {
	store := newFakeIdempotencyStore()
	hits := 0
	handler := newIdempotencyRouter(store, &hits)

	postGroups(handler, "", `{"name":"Movie Night"}`)
	postGroups(handler, "", `{"name":"Movie Night"}`)
	require.Equal(t, 2, hits)
	require.Empty(t, store.records)
}

func TestIdempotencySkipsUnmatchedRoutes(t *testing.T) {
	store := newFakeIdempotencyStore()
	hits := 0
	handler := newIdempotencyRouter(store, &hits)

	r := httptest.NewRequest("PUT", "/api/v1/profiles/me", strings.NewReader(`{}`))
	r.Header.Set("Idempotency-Key", "key-1")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, hits)
	require.Empty(t, store.records, "non-idempotent routes must not be recorded")
}

func TestIdempotencyScopesByUser(t *testing.T) {
	store := newFakeIdempotencyStore()
	hits := 0

	router := chi.NewRouter()
	router.Post("/api/v1/groups", func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusCreated)
	})
	mw := Idempotency(store, nil)(router)

	send := func(userID string) {
		r := httptest.NewRequest("POST", "/api/v1/groups", strings.NewReader(`{}`))
		r = r.WithContext(WithUserID(r.Context(), userID))
		r.Header.Set("Idempotency-Key", "shared-key")
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, r)
	}

	send("user-a")
	send("user-b")
	require.Equal(t, 2, hits, "distinct users must not share idempotency records")
	require.Len(t, store.records, 2)
}
