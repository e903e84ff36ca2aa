package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parishfinance/internal/shell"
)

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)

func authedState() shell.State {
	return shell.State{
		Session: shell.Session{Authenticated: true, Identity: shell.Identity{Email: "a@b.com"}},
		Sidebar: shell.SidebarState{Collapsed: true, ActiveGroup: shell.GroupReports},
	}
}

func TestNewID(t *testing.T) {
	a, err := NewID()
	require.NoError(t, err)
	b, err := NewID()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestMemoryStore_RoundTripAndExpiry(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, s.Save(ctx, "abc", authedState(), time.Hour))
	st, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, authedState(), st)

	now = now.Add(2 * time.Hour)
	_, err = s.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_CleanExpired(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "short", shell.State{}, time.Minute))
	require.NoError(t, s.Save(ctx, "long", shell.State{}, time.Hour))
	now = now.Add(10 * time.Minute)

	assert.Equal(t, 1, s.CleanExpired())
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_Touch(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	assert.ErrorIs(t, s.Touch(ctx, "missing", time.Hour), ErrSessionNotFound)

	require.NoError(t, s.Save(ctx, "abc", authedState(), time.Hour))
	now = now.Add(50 * time.Minute)
	require.NoError(t, s.Touch(ctx, "abc", time.Hour))

	now = now.Add(50 * time.Minute)
	_, err := s.Load(ctx, "abc")
	assert.NoError(t, err)

	now = now.Add(2 * time.Hour)
	assert.ErrorIs(t, s.Touch(ctx, "abc", time.Hour), ErrSessionNotFound)
}

func TestMemoryStore_LoadKeepsSaveAfterExpiredRead(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	now := base
	resaved := false
	// The first clock read after the expired lookup stands in for a
	// Save from another request arriving between the two locks.
	s.now = func() time.Time {
		if now.After(base) && !resaved {
			resaved = true
			require.NoError(t, s.Save(ctx, "abc", authedState(), time.Hour))
		}
		return now
	}

	require.NoError(t, s.Save(ctx, "abc", shell.State{}, time.Minute))
	now = base.Add(10 * time.Minute)

	st, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, resaved)
	assert.Equal(t, authedState(), st)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_RejectsEmptyID(t *testing.T) {
	assert.Error(t, NewMemoryStore().Save(context.Background(), "", shell.State{}, time.Minute))
}

func TestNewRedisStore_RequiresAddress(t *testing.T) {
	_, err := NewRedisStore("  ", "", 0, "")
	assert.Error(t, err)
}

func TestRedisStore_UnreachableServer(t *testing.T) {
	s, err := NewRedisStore("127.0.0.1:1", "", 0, "")
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = s.Load(ctx, "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
	assert.Error(t, s.Ping(ctx))
}

func newTestManager() (*Manager, *MemoryStore) {
	store := NewMemoryStore()
	return NewManager(store, Options{TTL: time.Hour}, nil), store
}

func TestManager_SaveIssuesCookie(t *testing.T) {
	m, store := newTestManager()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	h := &Handle{State: authedState()}
	require.NoError(t, m.Save(rec, req, h))

	require.NotEmpty(t, h.ID)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DefaultCookieName, cookies[0].Name)
	assert.Equal(t, h.ID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 1, store.Len())
}

func TestManager_MiddlewareLoadsState(t *testing.T) {
	m, store := newTestManager()
	require.NoError(t, store.Save(context.Background(), "known", authedState(), time.Hour))

	var got *Handle
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "known"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "known", got.ID)
	assert.True(t, got.State.Session.Authenticated)
}

func TestManager_MiddlewareSlidesExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	m := NewManager(store, Options{TTL: time.Hour}, nil)
	require.NoError(t, store.Save(context.Background(), "known", authedState(), time.Hour))

	var got *Handle
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	visit := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/income", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "known"})
		handler.ServeHTTP(rec, req)
		return rec
	}

	// Three hours of browsing, one request every 40 minutes.
	for i := 0; i < 5; i++ {
		now = now.Add(40 * time.Minute)
		rec := visit()
		require.True(t, got.State.Session.Authenticated, "visit %d", i)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "known", cookies[0].Value)
		assert.Equal(t, int(time.Hour.Seconds()), cookies[0].MaxAge)
	}

	now = now.Add(61 * time.Minute)
	visit()
	assert.False(t, got.State.Session.Authenticated)
}

func TestManager_MiddlewareClearsUnknownCookie(t *testing.T) {
	m, _ := newTestManager()

	var got *Handle
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "stale"})
	handler.ServeHTTP(rec, req)

	assert.Empty(t, got.ID)
	assert.False(t, got.State.Session.Authenticated)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestManager_RenewDropsOldID(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "old", authedState(), time.Hour))

	h := &Handle{ID: "old", State: authedState()}
	require.NoError(t, m.Renew(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/logout", nil), h))

	assert.NotEqual(t, "old", h.ID)
	_, err := store.Load(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Load(ctx, h.ID)
	assert.NoError(t, err)
}

func TestFromContext_Default(t *testing.T) {
	h := FromContext(context.Background())
	require.NotNil(t, h)
	assert.False(t, h.State.Session.Authenticated)
}
