package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

// SessionManager owns the single browser session of the process.
type SessionManager struct {
	launcher ports.BrowserLauncher
	jars     ports.CookieJarStore
	login    *Login
	clock    ports.Clock
	logger   *zap.Logger

	mu      sync.Mutex
	current *ports.Session
}

func NewSessionManager(launcher ports.BrowserLauncher, jars ports.CookieJarStore, login *Login, clock ports.Clock, logger *zap.Logger) *SessionManager {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if login == nil {
		login = NewLogin(LoginConfig{}, logger)
	}

	return &SessionManager{
		launcher: launcher,
		jars:     jars,
		login:    login,
		clock:    clock,
		logger:   logger.Named("session"),
	}
}

// EnsureSession returns a usable session. Without forceRelogin a live
// in-process session is reused, then the cookie jar is tried, then a fresh
// login runs. With forceRelogin a fresh login always runs.
func (m *SessionManager) EnsureSession(ctx context.Context, creds domain.Credentials, forceRelogin bool) (*ports.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !forceRelogin && m.current != nil {
		if m.alive(ctx, m.current) {
			return m.current, nil
		}
		m.logger.Info("session no longer alive")
	}
	m.dropLocked()

	if !forceRelogin {
		session, err := m.restoreLocked(ctx)
		if err == nil {
			m.current = session
			return session, nil
		}
		if !errors.Is(err, domain.ErrCookieJarNotFound) {
			m.logger.Warn("restore from cookie jar failed, logging in", zap.Error(err))
		}
	}

	session, err := m.loginLocked(ctx, creds)
	if err != nil {
		return nil, err
	}
	m.current = session
	return session, nil
}

// Current returns the held session without probing it.
func (m *SessionManager) Current() *ports.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.current
}

// Close tears the browser down. Failures are logged and swallowed.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dropLocked()
}

func (m *SessionManager) alive(ctx context.Context, session *ports.Session) bool {
	if err := session.Browser.Ping(ctx); err != nil {
		m.logger.Debug("liveness probe failed", zap.Error(err))
		return false
	}
	return true
}

func (m *SessionManager) dropLocked() {
	if m.current == nil {
		return
	}
	if err := m.current.Browser.Close(); err != nil {
		m.logger.Debug("close browser", zap.Error(err))
	}
	m.current = nil
}

func (m *SessionManager) restoreLocked(ctx context.Context) (*ports.Session, error) {
	jar, err := m.jars.Load(ctx)
	if err != nil {
		return nil, err
	}

	cookies := jar.Live(m.clock.Now())
	if len(cookies) == 0 {
		return nil, domain.ErrCookieJarNotFound
	}

	browser, err := m.launcher.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	loginURL := jar.LoginURL
	if loginURL == "" {
		loginURL = m.login.URL()
	}

	if err := browser.Navigate(ctx, loginURL); err != nil {
		m.closeQuietly(browser)
		return nil, fmt.Errorf("open login origin: %w", err)
	}
	if err := browser.SetCookies(ctx, cookies); err != nil {
		m.closeQuietly(browser)
		return nil, fmt.Errorf("inject cached cookies: %w", err)
	}

	m.logger.Info("session restored from cookie jar", zap.Int("cookies", len(cookies)))
	return &ports.Session{
		Browser:   browser,
		Origin:    domain.SessionRestored,
		CreatedAt: m.clock.Now(),
	}, nil
}

func (m *SessionManager) loginLocked(ctx context.Context, creds domain.Credentials) (*ports.Session, error) {
	browser, err := m.launcher.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	m.logger.Info("logging in", zap.Object("credentials", creds))
	cookies, err := m.login.Run(ctx, browser, creds)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			m.closeQuietly(browser)
		}
		return nil, err
	}

	now := m.clock.Now()
	jar := domain.CookieJar{
		Cookies:  cookies,
		SavedAt:  now,
		LoginURL: m.login.URL(),
	}
	if err := m.jars.Save(ctx, jar); err != nil {
		m.logger.Warn("persist cookie jar", zap.Error(err))
	}

	return &ports.Session{
		Browser:   browser,
		Origin:    domain.SessionLoggedIn,
		CreatedAt: now,
	}, nil
}

func (m *SessionManager) closeQuietly(browser ports.Browser) {
	if err := browser.Close(); err != nil {
		m.logger.Debug("close browser", zap.Error(err))
	}
}
