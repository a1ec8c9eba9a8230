package chrome

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

func TestFromNetworkCookies(t *testing.T) {
	cookies := fromNetworkCookies([]*network.Cookie{
		{Name: "apex_jwt", Value: "a", Domain: ".apexclearing.com", Path: "/", Session: true, Expires: -1, Secure: true, HTTPOnly: true},
		nil,
		{Name: "pref", Value: "b", Domain: "public-apps.apexclearing.com", Path: "/", Expires: 1735689600.5},
	})

	require.Len(t, cookies, 2)
	assert.Nil(t, cookies[0].Expires)
	assert.True(t, cookies[0].Secure)
	assert.True(t, cookies[0].HTTPOnly)

	require.NotNil(t, cookies[1].Expires)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, int(500*time.Millisecond), time.UTC), *cookies[1].Expires)
}

func TestFromNetworkCookiesKeepsEveryDomain(t *testing.T) {
	cookies := fromNetworkCookies([]*network.Cookie{
		{Name: "apex_jwt", Value: "a", Domain: ".apexclearing.com", Path: "/", Session: true, Expires: -1},
		{Name: "app_session", Value: "b", Domain: "public-apps.apexclearing.com", Path: "/session", Session: true, Expires: -1},
		{Name: "api_token", Value: "c", Domain: "public-api.apexclearing.com", Path: "/activities-provider", Session: true, Expires: -1},
	})

	require.Len(t, cookies, 3)
	domains := make([]string, 0, len(cookies))
	for _, cookie := range cookies {
		domains = append(domains, cookie.Domain)
	}
	assert.Equal(t, []string{".apexclearing.com", "public-apps.apexclearing.com", "public-api.apexclearing.com"}, domains)
	assert.Equal(t, "/activities-provider", cookies[2].Path)
}

func TestKeyCodes(t *testing.T) {
	keys, err := keyCodes(ports.KeyEnter)
	require.NoError(t, err)
	assert.Equal(t, "\r", keys)

	_, err = keyCodes(ports.Key("F13"))
	assert.Error(t, err)
}

func TestLauncherAppliesDefaults(t *testing.T) {
	launcher := NewLauncher(Config{Headless: true}, nil)
	assert.Equal(t, defaultWindowWidth, launcher.cfg.WindowWidth)
	assert.Equal(t, defaultWindowHeight, launcher.cfg.WindowHeight)
	assert.NotEmpty(t, launcher.allocatorOptions())
}

const loginPage = `<!doctype html>
<html><body>
<form><input name="username" id="user"><button type="button" id="go">Next</button></form>
</body></html>`

// Drives a real headless Chrome. Opt in with APX_CHROME_TESTS=1.
func TestBrowserAgainstLocalPage(t *testing.T) {
	if os.Getenv("APX_CHROME_TESTS") == "" {
		t.Skip("set APX_CHROME_TESTS=1 to run against a local Chrome")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(loginPage))
	}))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	browser, err := NewLauncher(Config{Headless: true}, nil).Launch(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = browser.Close() })

	require.NoError(t, browser.Navigate(ctx, server.URL))
	require.NoError(t, browser.WaitFor(ctx, ports.CSS(`[name="username"]`), 5*time.Second))
	require.NoError(t, browser.Fill(ctx, ports.XPath(`//*[@id="user"]`), "jdoe"))
	require.NoError(t, browser.Click(ctx, ports.CSS("#go")))

	err = browser.WaitFor(ctx, ports.CSS("#account"), 200*time.Millisecond)
	assert.ErrorIs(t, err, ports.ErrWaitTimeout)

	require.NoError(t, browser.SetCookies(ctx, []domain.Cookie{
		{Name: "apex_jwt", Value: "x", Domain: "127.0.0.1", Path: "/"},
		{Name: "api_token", Value: "y", Domain: "public-api.apexclearing.com", Path: "/"},
	}))
	cookies, err := browser.Cookies(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(cookies))
	for _, cookie := range cookies {
		names = append(names, cookie.Name)
	}
	// Cookies for hosts other than the open page are included.
	assert.ElementsMatch(t, []string{"apex_jwt", "api_token"}, names)

	require.NoError(t, browser.Ping(ctx))
	require.NoError(t, browser.Close())
	assert.Error(t, browser.Ping(ctx))
}
