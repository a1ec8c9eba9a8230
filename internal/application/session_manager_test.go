package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports/mocks"
)

var sessionNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestSessionManager(t *testing.T, launcher *fakeLauncher) (*SessionManager, *mocks.MockCookieJarStore) {
	t.Helper()

	jars := mocks.NewMockCookieJarStore(t)
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(sessionNow).Maybe()

	return NewSessionManager(launcher, jars, NewLogin(LoginConfig{}, nil), clock, nil), jars
}

func cachedJar() domain.CookieJar {
	return domain.CookieJar{
		Cookies:  []domain.Cookie{{Name: "session", Value: "cached", Domain: ".apexclearing.com", Path: "/"}},
		SavedAt:  sessionNow.Add(-time.Hour),
		LoginURL: DefaultLoginURL,
	}
}

func TestEnsureSessionRestoresFromJarWithoutLogin(t *testing.T) {
	launcher := &fakeLauncher{}
	manager, jars := newTestSessionManager(t, launcher)
	jars.EXPECT().Load(mockAnyContext()).Return(cachedJar(), nil).Once()

	first, err := manager.EnsureSession(context.Background(), testCreds, false)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionRestored, first.Origin)

	second, err := manager.EnsureSession(context.Background(), testCreds, false)
	require.NoError(t, err)
	assert.Same(t, first, second)

	require.Len(t, launcher.launched, 1)
	browser := launcher.launched[0]
	assert.Equal(t, []string{DefaultLoginURL}, browser.navigated)
	assert.Equal(t, cachedJar().Cookies, browser.injected)
	assert.Zero(t, launcher.logins())
}

func TestEnsureSessionLogsInWhenJarMissingAndPersistsCookies(t *testing.T) {
	launcher := &fakeLauncher{}
	manager, jars := newTestSessionManager(t, launcher)
	jars.EXPECT().Load(mockAnyContext()).Return(domain.CookieJar{}, domain.ErrCookieJarNotFound).Once()
	jars.EXPECT().Save(mockAnyContext(), mock.MatchedBy(func(jar domain.CookieJar) bool {
		return len(jar.Cookies) == 1 && jar.Cookies[0].Value == "abc" && jar.SavedAt.Equal(sessionNow)
	})).Return(nil).Once()

	session, err := manager.EnsureSession(context.Background(), testCreds, false)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionLoggedIn, session.Origin)
	assert.Equal(t, 1, launcher.logins())
}

func TestEnsureSessionTreatsExpiredJarAsMissing(t *testing.T) {
	launcher := &fakeLauncher{}
	manager, jars := newTestSessionManager(t, launcher)

	expired := sessionNow.Add(-time.Minute)
	jar := cachedJar()
	jar.Cookies[0].Expires = &expired
	jars.EXPECT().Load(mockAnyContext()).Return(jar, nil).Once()
	jars.EXPECT().Save(mockAnyContext(), mock.Anything).Return(nil).Once()

	session, err := manager.EnsureSession(context.Background(), testCreds, false)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionLoggedIn, session.Origin)
}

func TestEnsureSessionReplacesDeadSession(t *testing.T) {
	launcher := &fakeLauncher{}
	manager, jars := newTestSessionManager(t, launcher)
	jars.EXPECT().Load(mockAnyContext()).Return(cachedJar(), nil).Twice()

	first, err := manager.EnsureSession(context.Background(), testCreds, false)
	require.NoError(t, err)
	launcher.launched[0].pingErr = errors.New("devtools connection lost")

	second, err := manager.EnsureSession(context.Background(), testCreds, false)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, 1, launcher.launched[0].closed)
	assert.Len(t, launcher.launched, 2)
}

func TestEnsureSessionForceReloginIgnoresLiveSessionAndJar(t *testing.T) {
	launcher := &fakeLauncher{}
	manager, jars := newTestSessionManager(t, launcher)
	jars.EXPECT().Load(mockAnyContext()).Return(cachedJar(), nil).Once()
	jars.EXPECT().Save(mockAnyContext(), mock.Anything).Return(nil).Once()

	_, err := manager.EnsureSession(context.Background(), testCreds, false)
	require.NoError(t, err)

	session, err := manager.EnsureSession(context.Background(), testCreds, true)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionLoggedIn, session.Origin)
	assert.Equal(t, 1, launcher.launched[0].closed)
	assert.Equal(t, 1, launcher.logins())
}

func TestEnsureSessionLoginFailuresCloseBrowserOnce(t *testing.T) {
	tests := []struct {
		name    string
		wantErr error
	}{
		{name: "login timeout", wantErr: domain.ErrLoginTimeout},
		{name: "invalid credentials", wantErr: domain.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			browser := newFakeBrowser()
			if errors.Is(tt.wantErr, domain.ErrInvalidCredentials) {
				browser.missing[DefaultLoginSelectors().Account] = true
			} else {
				browser.missing[DefaultLoginSelectors().Password] = true
			}

			launcher := &fakeLauncher{prepared: []*fakeBrowser{browser}}
			manager, jars := newTestSessionManager(t, launcher)
			jars.EXPECT().Load(mockAnyContext()).Return(domain.CookieJar{}, domain.ErrCookieJarNotFound).Once()

			_, err := manager.EnsureSession(context.Background(), testCreds, false)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1, browser.closed)
			assert.Nil(t, manager.Current())
		})
	}
}

func TestEnsureSessionFallsBackToLoginWhenRestoreFails(t *testing.T) {
	broken := newFakeBrowser()
	broken.navigateErr = errors.New("net::ERR_NAME_NOT_RESOLVED")
	launcher := &fakeLauncher{prepared: []*fakeBrowser{broken}}
	manager, jars := newTestSessionManager(t, launcher)
	jars.EXPECT().Load(mockAnyContext()).Return(cachedJar(), nil).Once()
	jars.EXPECT().Save(mockAnyContext(), mock.Anything).Return(nil).Once()

	session, err := manager.EnsureSession(context.Background(), testCreds, false)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionLoggedIn, session.Origin)
	assert.Equal(t, 1, broken.closed)
}

func TestEnsureSessionKeepsSessionWhenJarSaveFails(t *testing.T) {
	launcher := &fakeLauncher{}
	manager, jars := newTestSessionManager(t, launcher)
	jars.EXPECT().Load(mockAnyContext()).Return(domain.CookieJar{}, errors.New("permission denied")).Once()
	jars.EXPECT().Save(mockAnyContext(), mock.Anything).Return(errors.New("disk full")).Once()

	session, err := manager.EnsureSession(context.Background(), testCreds, false)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionLoggedIn, session.Origin)
}

func TestSessionManagerCloseSwallowsErrors(t *testing.T) {
	browser := newFakeBrowser()
	browser.closeErr = errors.New("process already exited")
	launcher := &fakeLauncher{prepared: []*fakeBrowser{browser}}
	manager, jars := newTestSessionManager(t, launcher)
	jars.EXPECT().Load(mockAnyContext()).Return(cachedJar(), nil).Once()

	_, err := manager.EnsureSession(context.Background(), testCreds, false)
	require.NoError(t, err)

	manager.Close()
	manager.Close()
	assert.Equal(t, 1, browser.closed)
	assert.Nil(t, manager.Current())
}

func mockAnyContext() interface{} {
	return mock.Anything
}
