package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/loglines/internal/testutil"
	"github.com/leapstack-labs/loglines/internal/ui/notifier"
)

func TestHotReload_BroadcastsAssets(t *testing.T) {
	notify := notifier.New()
	r := chi.NewRouter()
	setupReload(r, notify, testutil.NewTestLogger(t))

	updates := notify.Subscribe()
	defer notify.Unsubscribe(updates)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hotreload", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case u := <-updates:
		assert.Equal(t, notifier.ReasonAssets, u.Reason)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("hotreload should broadcast")
	}
}

func TestReload_ReloadsPageOnAssets(t *testing.T) {
	notify := notifier.New()
	r := chi.NewRouter()
	setupReload(r, notify, testutil.NewTestLogger(t))

	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reload", nil))
		close(done)
	}()

	require.Eventually(t, func() bool { return notify.Len() == 1 }, time.Second, 5*time.Millisecond)
	notify.Broadcast(notifier.ReasonReload)
	notify.Broadcast(notifier.ReasonAssets)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reload stream should end after an assets update")
	}
	assert.Contains(t, rec.Body.String(), "window.location.reload()")
}
