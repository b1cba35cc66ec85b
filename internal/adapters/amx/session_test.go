package amx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClock struct {
	sleeps atomic.Int32
}

func (c *stubClock) Now() time.Time {
	return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
}

func (c *stubClock) Sleep(ctx context.Context, _ time.Duration) error {
	c.sleeps.Add(1)
	return ctx.Err()
}

func newConsoleServer(t *testing.T, setCookie bool, consolePage string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/amxadministrator/j_security_check", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, browserUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "no-cache", r.Header.Get("Pragma"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "root", r.Form.Get("j_username"))
		assert.Equal(t, "t", r.Form.Get("j_password"))

		if setCookie {
			http.SetCookie(w, &http.Cookie{Name: ssoCookieName, Value: "abc", Path: "/"})
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/amxadministrator/admin.jsp", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(ssoCookieName)
		require.NoError(t, err)
		assert.Equal(t, "abc", cookie.Value)
		_, _ = w.Write([]byte(consolePage))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestLoginCapturesSSOCookieAndCSRFToken(t *testing.T) {
	t.Parallel()

	server := newConsoleServer(t, true, "<script>\nvar csrfToken = 'TOK123';\n</script>")
	logger, _ := test.NewNullLogger()

	auth := Authenticator{
		BaseURL:  server.URL + "/amxadministrator",
		User:     "root",
		Password: "t",
		Logger:   logger,
	}

	session, err := auth.Login(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "TOK123", session.XSRFToken)
	assert.Equal(t, server.URL+"/amxadministrator", session.BaseURL)
	assert.NotNil(t, session.HTTPClient().Jar)
}

func TestLoginWithoutTokenLeavesEmptyToken(t *testing.T) {
	t.Parallel()

	server := newConsoleServer(t, true, "<html><body>console</body></html>")
	logger, _ := test.NewNullLogger()

	session, err := Authenticator{
		BaseURL:  server.URL + "/amxadministrator",
		User:     "root",
		Password: "t",
		Logger:   logger,
	}.Login(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, session.XSRFToken)
}

func TestLoginWithoutSSOCookieReturnsNoSession(t *testing.T) {
	t.Parallel()

	server := newConsoleServer(t, false, "")
	logger, hook := test.NewNullLogger()

	session, err := Authenticator{
		BaseURL:  server.URL + "/amxadministrator",
		User:     "root",
		Password: "t",
		Logger:   logger,
	}.Login(context.Background(), false)
	require.Error(t, err)
	assert.Nil(t, session)
	assert.ErrorIs(t, err, domain.ErrNoSession)
	assert.ErrorIs(t, err, domain.ErrSSOCookieMissing)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestLoginNonOKStatusReturnsNoSession(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	logger, _ := test.NewNullLogger()

	_, err := Authenticator{BaseURL: server.URL, Logger: logger}.Login(context.Background(), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnexpectedStatus)
}

func TestLoginWaitModeRetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/j_security_check", func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: ssoCookieName, Value: "abc", Path: "/"})
	})
	mux.HandleFunc("/admin.jsp", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("var csrfToken = 'T2';"))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	clock := &stubClock{}
	logger, _ := test.NewNullLogger()
	session, err := Authenticator{BaseURL: server.URL, Clock: clock, Logger: logger}.Login(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "T2", session.XSRFToken)
	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, int32(2), clock.sleeps.Load())
}

func TestLoginWaitModeStopsOnCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger, _ := test.NewNullLogger()
	_, err := Authenticator{BaseURL: server.URL, Clock: &stubClock{}, Logger: logger}.Login(ctx, true)
	require.ErrorIs(t, err, context.Canceled)
}

func TestExtractCSRFToken(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		page string
		want string
	}{
		{name: "quoted", page: "var csrfToken = 'TOK123';", want: "TOK123"},
		{name: "surrounding markup", page: "<script>\n  csrfToken='a-b-c'; var x = 1;\n</script>", want: "a-b-c"},
		{name: "no marker", page: "<html></html>", want: ""},
		{name: "marker without quotes", page: "csrfToken = null;", want: ""},
		{name: "marker without terminator", page: "csrfToken = 'x'", want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractCSRFToken(tc.page))
		})
	}
}
