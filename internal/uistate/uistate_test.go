package uistate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/soyeahso/suite/internal/config"
	"github.com/soyeahso/suite/internal/hooks"
	"github.com/soyeahso/suite/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_StartsClosed(t *testing.T) {
	assert.False(t, NewStore().IsSearchModalOpen())
	var zero Store
	assert.False(t, zero.IsSearchModalOpen())
}

func TestStore_ToggleTwiceRestores(t *testing.T) {
	for _, start := range []bool{false, true} {
		s := NewStore()
		if start {
			s.OpenSearchModal()
		}
		assert.Equal(t, !start, s.ToggleSearchModal().IsSearchModalOpen)
		assert.Equal(t, start, s.ToggleSearchModal().IsSearchModalOpen)
		assert.Equal(t, start, s.IsSearchModalOpen())
	}
}

func TestStore_OpenThenCloseIsClosed(t *testing.T) {
	for _, start := range []bool{false, true} {
		s := NewStore()
		if start {
			s.OpenSearchModal()
		}
		s.OpenSearchModal()
		s.CloseSearchModal()
		assert.False(t, s.IsSearchModalOpen())
	}
}

func TestStore_Subscribe(t *testing.T) {
	s := NewStore()
	var got []bool
	unsub := s.Subscribe(func(st State) { got = append(got, st.IsSearchModalOpen) })

	s.OpenSearchModal()
	s.OpenSearchModal()
	s.ToggleSearchModal()
	unsub()
	s.ToggleSearchModal()

	assert.Equal(t, []bool{true, true, false}, got)
}

func TestStore_ConcurrentNotificationsInOrder(t *testing.T) {
	s := NewStore()
	var got []bool
	s.Subscribe(func(st State) { got = append(got, st.IsSearchModalOpen) })

	var wg sync.WaitGroup
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.ToggleSearchModal()
		}()
	}
	wg.Wait()

	require.Len(t, got, 200)
	for i, open := range got {
		assert.Equal(t, i%2 == 0, open, "notification %d", i)
	}
	assert.Equal(t, s.IsSearchModalOpen(), got[len(got)-1])
}

func TestStore_ConcurrentToggles(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.ToggleSearchModal()
		}()
	}
	wg.Wait()
	assert.False(t, s.IsSearchModalOpen())
}

func testSessions(opts ...Option) *Sessions {
	return NewSessions(config.UIConfig{IdleMinutes: 10}, logging.New(nil, "silent"), opts...)
}

func TestSessions_IsolatedStores(t *testing.T) {
	s := testSessions()
	idA, a := s.Create()
	_, b := s.Create()

	a.OpenSearchModal()
	assert.False(t, b.IsSearchModalOpen())

	got, ok := s.Get(idA)
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, 2, s.Len())
}

func TestSessions_Sweep(t *testing.T) {
	s := testSessions()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	stale, _ := s.Create()
	now = now.Add(8 * time.Minute)
	fresh, _ := s.Create()
	now = now.Add(5 * time.Minute)

	assert.Equal(t, 1, s.Sweep())
	_, ok := s.Get(stale)
	assert.False(t, ok)
	_, ok = s.Get(fresh)
	assert.True(t, ok)
}

func TestSessions_CapEvictsLeastRecentlySeen(t *testing.T) {
	s := NewSessions(config.UIConfig{MaxSessions: 3}, logging.New(nil, "silent"))
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { now = now.Add(time.Second); return now }

	first, _ := s.Create()
	second, _ := s.Create()
	third, _ := s.Create()
	_, ok := s.Get(first) // first is now the most recent
	require.True(t, ok)

	fourth, _ := s.Create()
	assert.Equal(t, 3, s.Len())
	_, ok = s.Get(second)
	assert.False(t, ok, "least recently seen is evicted")
	for _, id := range []string{first, third, fourth} {
		_, ok = s.Get(id)
		assert.True(t, ok, id)
	}
}

func TestHTTP_AnonymousRequestsStayBounded(t *testing.T) {
	s := NewSessions(config.UIConfig{MaxSessions: 50}, logging.New(nil, "silent"))
	h := newMux(s)

	for i := 0; i < 500; i++ {
		rr, _ := do(t, h, "GET", "/api/ui/state", nil)
		require.Equal(t, http.StatusOK, rr.Code)
	}
	assert.Equal(t, 50, s.Len())
}

func TestSessions_EmitsStateChanges(t *testing.T) {
	hm := hooks.NewManager(logging.New(nil, "silent"))
	var states []bool
	hm.On(hooks.EventUIStateChanged, "test", func(_ context.Context, p hooks.Payload) error {
		states = append(states, p.Data["isSearchModalOpen"].(bool))
		return nil
	})

	_, st := testSessions(WithHooks(hm)).Create()
	st.ToggleSearchModal()
	st.CloseSearchModal()
	assert.Equal(t, []bool{true, false}, states)
}

func newMux(s *Sessions) http.Handler {
	var h Handler
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/ui/state", h.State)
	mux.HandleFunc("POST /api/ui/search-modal/{op}", h.SearchModal)
	return s.Middleware(mux)
}

func do(t *testing.T, h http.Handler, method, path string, cookie *http.Cookie) (*httptest.ResponseRecorder, State) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var st State
	if rr.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	}
	return rr, st
}

func TestHTTP_SessionLifecycle(t *testing.T) {
	s := testSessions()
	h := newMux(s)

	rr, st := do(t, h, "GET", "/api/ui/state", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, st.IsSearchModalOpen)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, config.DefaultSessionCookie, cookie.Name)
	assert.True(t, cookie.HttpOnly)

	_, st = do(t, h, "POST", "/api/ui/search-modal/toggle", cookie)
	assert.True(t, st.IsSearchModalOpen)

	rr, st = do(t, h, "GET", "/api/ui/state", cookie)
	assert.True(t, st.IsSearchModalOpen)
	assert.Empty(t, rr.Result().Cookies(), "known session keeps its cookie")

	_, st = do(t, h, "POST", "/api/ui/search-modal/close", cookie)
	assert.False(t, st.IsSearchModalOpen)

	_, st = do(t, h, "POST", "/api/ui/search-modal/open", cookie)
	assert.True(t, st.IsSearchModalOpen)

	// A reload without the cookie starts over.
	_, st = do(t, h, "GET", "/api/ui/state", nil)
	assert.False(t, st.IsSearchModalOpen)
	assert.Equal(t, 2, s.Len())

	rr, _ = do(t, h, "POST", "/api/ui/search-modal/explode", cookie)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHTTP_UnknownCookieGetsNewSession(t *testing.T) {
	s := testSessions()
	h := newMux(s)

	rr, _ := do(t, h, "GET", "/api/ui/state", &http.Cookie{Name: config.DefaultSessionCookie, Value: "forged"})
	require.Len(t, rr.Result().Cookies(), 1)
	assert.NotEqual(t, "forged", rr.Result().Cookies()[0].Value)
}

func TestHandler_WithoutMiddleware(t *testing.T) {
	rr := httptest.NewRecorder()
	Handler{}.State(rr, httptest.NewRequest("GET", "/api/ui/state", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
