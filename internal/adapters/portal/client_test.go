package portal

import (
	"context"
	stdjson "encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

type cookieBrowser struct {
	ports.Browser
	cookies []domain.Cookie
	err     error
}

func (b cookieBrowser) Cookies(context.Context) ([]domain.Cookie, error) {
	return b.cookies, b.err
}

func testSession() *ports.Session {
	return &ports.Session{Browser: cookieBrowser{cookies: []domain.Cookie{
		{Name: "apex_jwt", Value: "token-1", Domain: "127.0.0.1", Path: "/"},
	}}}
}

func testWindow() domain.DateWindow {
	return domain.DateWindow{
		Start: time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestClient(baseURL string) *Client {
	return NewClient(Config{ActivitiesURL: baseURL + "/activities", RequestTimeout: time.Second}, nil)
}

func TestFetchRequestsEachCategoryWithCookies(t *testing.T) {
	t.Parallel()

	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/activities/5XX00001", r.URL.Path)
		assert.Equal(t, "2023-03-14", r.URL.Query().Get("startDate"))
		assert.Equal(t, "2023-04-01", r.URL.Query().Get("endDate"))

		cookie, err := r.Cookie("apex_jwt")
		require.NoError(t, err)
		assert.Equal(t, "token-1", cookie.Value)

		activityType := r.URL.Query().Get("activityType")
		seen = append(seen, activityType)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"timestamp":"2023-03-20T10:00:00","activityType":"` + activityType + `","netAmount":12.50}]`))
	}))
	t.Cleanup(server.Close)

	categories := []domain.Category{domain.CategoryTrades, domain.CategoryMoneyMovements}
	payloads, err := newTestClient(server.URL).Fetch(context.Background(), testSession(), "5XX00001", categories, testWindow())
	require.NoError(t, err)

	assert.Equal(t, []string{"TRADES", "MONEY_MOVEMENTS"}, seen)
	require.Len(t, payloads, 2)
	assert.Equal(t, domain.CategoryTrades, payloads[0].Category)
	require.Len(t, payloads[1].Records, 1)
	assert.Equal(t, stdjson.Number("12.50"), payloads[1].Records[0]["netAmount"])
}

func TestFetchClassifiesFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
		status  int
	}{
		{
			name:    "unauthorized",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusUnauthorized) },
			want:    domain.ErrSessionInvalid,
			status:  http.StatusUnauthorized,
		},
		{
			name:    "forbidden",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusForbidden) },
			want:    domain.ErrSessionInvalid,
			status:  http.StatusForbidden,
		},
		{
			name: "redirect to login",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Location", "https://public-apps.apexclearing.com/session/#/login/")
				w.WriteHeader(http.StatusFound)
			},
			want:   domain.ErrSessionInvalid,
			status: http.StatusFound,
		},
		{
			name: "html login page",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				_, _ = w.Write([]byte("<html><form name=login></form></html>"))
			},
			want:   domain.ErrSessionInvalid,
			status: http.StatusOK,
		},
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) },
			want:    domain.ErrTransientFetch,
			status:  http.StatusBadGateway,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"not":"an array"`))
			},
			want:   domain.ErrTransientFetch,
			status: http.StatusOK,
		},
		{
			name: "redirect elsewhere",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Location", "https://status.example.com/maintenance")
				w.WriteHeader(http.StatusTemporaryRedirect)
			},
			want:   domain.ErrTransientFetch,
			status: http.StatusTemporaryRedirect,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(tt.handler)
			t.Cleanup(server.Close)

			_, err := newTestClient(server.URL).Fetch(context.Background(), testSession(), "5XX00001", []domain.Category{domain.CategoryTrades}, testWindow())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var fetchErr *domain.FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, domain.CategoryTrades, fetchErr.Category)
			assert.Equal(t, tt.status, fetchErr.Status)
		})
	}
}

func TestFetchStopsAtFirstFailingCategory(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("activityType") == "MONEY_MOVEMENTS" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	_, err := newTestClient(server.URL).Fetch(context.Background(), testSession(), "5XX00001", domain.DefaultCategories(), testWindow())
	require.ErrorIs(t, err, domain.ErrSessionInvalid)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchSendsOnlyCookiesScopedToEndpoint(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var sent []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		for _, cookie := range r.Cookies() {
			sent = append(sent, cookie.Name)
		}
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	expired := time.Now().Add(-time.Hour)
	session := &ports.Session{Browser: cookieBrowser{cookies: []domain.Cookie{
		{Name: "apex_jwt", Value: "token-1", Domain: "127.0.0.1", Path: "/"},
		{Name: "api_scope", Value: "v", Domain: "127.0.0.1", Path: "/activities"},
		{Name: "foreign", Value: "x", Domain: ".apexclearing.com", Path: "/"},
		{Name: "other_path", Value: "x", Domain: "127.0.0.1", Path: "/session"},
		{Name: "secure_only", Value: "x", Domain: "127.0.0.1", Path: "/", Secure: true},
		{Name: "stale", Value: "x", Domain: "127.0.0.1", Path: "/", Expires: &expired},
	}}}

	_, err := newTestClient(server.URL).Fetch(context.Background(), session, "5XX00001", []domain.Category{domain.CategoryTrades}, testWindow())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"apex_jwt", "api_scope"}, sent)
}

func TestFetchTreatsUnreadableCookiesAsInvalidSession(t *testing.T) {
	t.Parallel()

	cause := errors.New("browser gone")
	session := &ports.Session{Browser: cookieBrowser{err: cause}}
	_, err := NewClient(Config{}, nil).Fetch(context.Background(), session, "5XX00001", domain.DefaultCategories(), testWindow())
	assert.ErrorIs(t, err, domain.ErrSessionInvalid)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "browser gone")
}

func TestFetchRejectsMissingAccount(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{}, nil).Fetch(context.Background(), testSession(), "  ", domain.DefaultCategories(), testWindow())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "account is required"))
}

func TestFetchHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(Config{}, nil).Fetch(ctx, testSession(), "5XX00001", domain.DefaultCategories(), testWindow())
	assert.ErrorIs(t, err, context.Canceled)
}
