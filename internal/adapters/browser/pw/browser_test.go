package pw

import (
	"context"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

func TestNewLauncherValidatesEngine(t *testing.T) {
	launcher, err := NewLauncher(Config{Engine: " Firefox "}, nil)
	require.NoError(t, err)
	assert.Equal(t, EngineFirefox, launcher.cfg.Engine)
	assert.Equal(t, []string{EngineFirefox}, launcher.runOptions().Browsers)

	launcher, err = NewLauncher(Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, EngineFirefox, launcher.cfg.Engine)
	assert.Equal(t, defaultViewportWidth, launcher.cfg.WindowWidth)

	_, err = NewLauncher(Config{Engine: "netscape"}, nil)
	assert.Error(t, err)
}

func TestSelectorString(t *testing.T) {
	assert.Equal(t, "xpath=/html/body/form/button", selectorString(ports.XPath("/html/body/form/button")))
	assert.Equal(t, `css=[name="username"]`, selectorString(ports.CSS(`[name="username"]`)))
}

func TestTimeoutFrom(t *testing.T) {
	assert.Nil(t, timeoutFrom(context.Background(), 0))
	assert.InDelta(t, 6000, *timeoutFrom(context.Background(), 6*time.Second), 0.1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	got := timeoutFrom(ctx, 6*time.Second)
	require.NotNil(t, got)
	assert.LessOrEqual(t, *got, 50.0)
}

func TestCookieConversionRoundTrip(t *testing.T) {
	expires := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cookies := []domain.Cookie{
		{Name: "apex_jwt", Value: "a", Domain: ".apexclearing.com", Path: "/", Secure: true, HTTPOnly: true},
		{Name: "pref", Value: "b", Domain: "public-apps.apexclearing.com", Expires: &expires},
	}

	optional := toPlaywrightCookies(cookies)
	require.Len(t, optional, 2)
	assert.Nil(t, optional[0].Expires)
	assert.Equal(t, "/", *optional[1].Path)
	assert.InDelta(t, float64(expires.Unix()), *optional[1].Expires, 0.1)

	back := fromPlaywrightCookies([]playwright.Cookie{
		{Name: "apex_jwt", Value: "a", Domain: ".apexclearing.com", Path: "/", Expires: -1, Secure: true, HttpOnly: true},
		{Name: "pref", Value: "b", Domain: "public-apps.apexclearing.com", Path: "/", Expires: float64(expires.Unix())},
	})
	require.Len(t, back, 2)
	assert.Nil(t, back[0].Expires)
	assert.True(t, back[0].HTTPOnly)
	require.NotNil(t, back[1].Expires)
	assert.Equal(t, expires, *back[1].Expires)
}
