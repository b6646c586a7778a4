// Package features provides shared test utilities for UI feature tests.
package features

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/loglines/internal/schedule"
)

// TestSessionSecret signs session cookies in tests.
const TestSessionSecret = "test-secret-key-32-bytes-long!!"

// NewTestSessionStore returns a cookie store signed with TestSessionSecret.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte(TestSessionSecret))
}

// RunLoop runs loop in the background until the test finishes.
func RunLoop(t *testing.T, loop *schedule.Loop) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		_ = loop.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
}

// Client sends requests to a handler as one browser would, carrying the
// session cookie from response to request.
type Client struct {
	Handler http.Handler
	Cookies []*http.Cookie
}

// NewClient returns a client without cookies.
func NewClient(h http.Handler) *Client {
	return &Client{Handler: h}
}

// Do sends a request. A non-nil signals map is sent as the JSON body.
func (c *Client) Do(t *testing.T, method, path string, signals map[string]any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if signals != nil {
		b, err := json.Marshal(signals)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range c.Cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	c.Handler.ServeHTTP(rec, req)
	if cs := rec.Result().Cookies(); len(cs) > 0 {
		c.Cookies = cs
	}
	return rec
}

// Get is Do with GET and no body.
func (c *Client) Get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	return c.Do(t, http.MethodGet, path, nil)
}
