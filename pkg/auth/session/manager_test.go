package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}}
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.data[key] = value.(string)
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	value, ok := f.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeStore) AccessSessionKey(accessID string) string {
	return "test:session:access:" + accessID
}

func newTestManager(store *fakeStore) *Manager {
	return &Manager{store: store, keyer: store, ttl: time.Hour}
}

func TestGenerateStoresToken(t *testing.T) {
	store := newFakeStore()
	mgr := newTestManager(store)

	token, err := mgr.Generate(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if store.data[store.AccessSessionKey("access-1")] != token {
		t.Fatal("expected token persisted under the access key")
	}
}

func TestGenerateRequiresAccessID(t *testing.T) {
	mgr := newTestManager(newFakeStore())
	if _, err := mgr.Generate(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank access id")
	}
}

func TestRotateIssuesNewSessionAndDropsOld(t *testing.T) {
	store := newFakeStore()
	mgr := newTestManager(store)
	ctx := context.Background()

	token, err := mgr.Generate(ctx, "access-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	newAccessID, newToken, err := mgr.Rotate(ctx, "access-1", token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if newAccessID == "access-1" {
		t.Fatal("expected a fresh access id")
	}
	if newToken == token {
		t.Fatal("expected a fresh refresh token")
	}

	if _, ok := store.data[store.AccessSessionKey("access-1")]; ok {
		t.Fatal("expected old session removed")
	}
	if store.data[store.AccessSessionKey(newAccessID)] != newToken {
		t.Fatal("expected new session persisted")
	}
}

func TestRotateRejectsWrongToken(t *testing.T) {
	store := newFakeStore()
	mgr := newTestManager(store)
	ctx := context.Background()

	if _, err := mgr.Generate(ctx, "access-1"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, _, err := mgr.Rotate(ctx, "access-1", "forged"); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
	if _, ok := store.data[store.AccessSessionKey("access-1")]; !ok {
		t.Fatal("expected original session kept on failed rotation")
	}
}

func TestRotateRejectsUnknownSession(t *testing.T) {
	mgr := newTestManager(newFakeStore())
	if _, _, err := mgr.Rotate(context.Background(), "missing", "anything"); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRevokeAndHasSession(t *testing.T) {
	store := newFakeStore()
	mgr := newTestManager(store)
	ctx := context.Background()

	if _, err := mgr.Generate(ctx, "access-1"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	ok, err := mgr.HasSession(ctx, "access-1")
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if !ok {
		t.Fatal("expected active session")
	}

	if err := mgr.Revoke(ctx, "access-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	ok, err = mgr.HasSession(ctx, "access-1")
	if err != nil {
		t.Fatalf("has session after revoke: %v", err)
	}
	if ok {
		t.Fatal("expected session gone after revoke")
	}
}
