package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

const (
	DefaultLoginURL    = "https://public-apps.apexclearing.com/session/#/login/"
	DefaultWaitTimeout = 6 * time.Second
)

type LoginState string

const (
	StateAwaitInitialUsernameField LoginState = "AwaitInitialUsernameField"
	StateAwaitFullLoginForm        LoginState = "AwaitFullLoginForm"
	StateAwaitPasswordField        LoginState = "AwaitPasswordField"
	StateAwaitLoginButton          LoginState = "AwaitLoginButton"
	StateAwaitAccountField         LoginState = "AwaitAccountField"
	StateSubmitAccount             LoginState = "SubmitAccount"
	StateCaptureCookies            LoginState = "CaptureCookies"
)

type LoginSelectors struct {
	InitialUsername ports.Selector
	InitialSubmit   ports.Selector
	Username        ports.Selector
	Password        ports.Selector
	LoginButton     ports.Selector
	Account         ports.Selector
}

func DefaultLoginSelectors() LoginSelectors {
	const form = "/html/body/div/div/div/main/div/div/div[4]/div[1]/form"
	return LoginSelectors{
		InitialUsername: ports.CSS(`[name="username"]`),
		InitialSubmit:   ports.XPath("/html/body/div/div/div/main/div/div/div[2]/div/form/button"),
		Username:        ports.XPath(form + "/div[1]/input"),
		Password:        ports.XPath(form + "/div[2]/input"),
		LoginButton:     ports.XPath(form + "/button"),
		Account:         ports.CSS("#account"),
	}
}

type LoginConfig struct {
	URL         string
	Selectors   LoginSelectors
	WaitTimeout time.Duration
	// SettleDelay lets the portal finish setting cookies after the account
	// form is submitted.
	SettleDelay time.Duration
}

// Login drives a fresh browser through the multi-step portal login form.
type Login struct {
	cfg    LoginConfig
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewLogin(cfg LoginConfig, logger *zap.Logger) *Login {
	if cfg.URL == "" {
		cfg.URL = DefaultLoginURL
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = DefaultWaitTimeout
	}
	if cfg.Selectors == (LoginSelectors{}) {
		cfg.Selectors = DefaultLoginSelectors()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Login{
		cfg:    cfg,
		logger: logger.Named("login"),
		sleep:  sleepContext,
	}
}

func (l *Login) URL() string {
	return l.cfg.URL
}

type loginStep struct {
	state  LoginState
	await  []ports.Selector
	action func(ctx context.Context, browser ports.Browser) error
}

// Run performs one login attempt and returns the captured session cookies.
// A missing account field closes the browser and reports
// domain.ErrInvalidCredentials; any other missing element reports
// domain.ErrLoginTimeout.
func (l *Login) Run(ctx context.Context, browser ports.Browser, creds domain.Credentials) ([]domain.Cookie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !creds.Complete() {
		return nil, domain.ErrCredentialsMissing
	}

	if err := browser.Navigate(ctx, l.cfg.URL); err != nil {
		return nil, fmt.Errorf("open login page: %w", err)
	}

	sel := l.cfg.Selectors
	steps := []loginStep{
		{
			state: StateAwaitInitialUsernameField,
			await: []ports.Selector{sel.InitialUsername},
			action: func(ctx context.Context, b ports.Browser) error {
				return b.Fill(ctx, sel.InitialUsername, creds.Username)
			},
		},
		{
			// The submit button is awaited only once the username is filled.
			state: StateAwaitInitialUsernameField,
			await: []ports.Selector{sel.InitialSubmit},
			action: func(ctx context.Context, b ports.Browser) error {
				return b.Click(ctx, sel.InitialSubmit)
			},
		},
		{
			state: StateAwaitFullLoginForm,
			await: []ports.Selector{sel.Username},
			action: func(ctx context.Context, b ports.Browser) error {
				return b.Fill(ctx, sel.Username, creds.Username)
			},
		},
		{
			state: StateAwaitPasswordField,
			await: []ports.Selector{sel.Password},
			action: func(ctx context.Context, b ports.Browser) error {
				return b.Fill(ctx, sel.Password, creds.Password)
			},
		},
		{
			state: StateAwaitLoginButton,
			await: []ports.Selector{sel.LoginButton},
			action: func(ctx context.Context, b ports.Browser) error {
				return b.Click(ctx, sel.LoginButton)
			},
		},
		{
			state: StateAwaitAccountField,
			await: []ports.Selector{sel.Account},
		},
		{
			state: StateSubmitAccount,
			action: func(ctx context.Context, b ports.Browser) error {
				if err := b.Fill(ctx, sel.Account, creds.Account); err != nil {
					return err
				}
				return b.Press(ctx, sel.Account, ports.KeyEnter)
			},
		},
	}

	for _, step := range steps {
		l.logger.Debug("login state", zap.String("state", string(step.state)))

		for _, selector := range step.await {
			if err := browser.WaitFor(ctx, selector, l.cfg.WaitTimeout); err != nil {
				return nil, l.waitFailed(step.state, selector, browser, err)
			}
		}

		if step.action == nil {
			continue
		}
		if err := step.action(ctx, browser); err != nil {
			return nil, fmt.Errorf("login %s: %w", step.state, err)
		}
	}

	if l.cfg.SettleDelay > 0 {
		if err := l.sleep(ctx, l.cfg.SettleDelay); err != nil {
			return nil, err
		}
	}

	cookies, err := browser.Cookies(ctx)
	if err != nil {
		return nil, fmt.Errorf("login %s: %w", StateCaptureCookies, err)
	}

	l.logger.Info("login succeeded", zap.Int("cookies", len(cookies)))
	return cookies, nil
}

func (l *Login) waitFailed(state LoginState, selector ports.Selector, browser ports.Browser, err error) error {
	if !errors.Is(err, ports.ErrWaitTimeout) {
		return fmt.Errorf("login %s: wait for %s: %w", state, selector, err)
	}

	if state == StateAwaitAccountField {
		l.logger.Warn("account field never appeared, credentials rejected")
		if closeErr := browser.Close(); closeErr != nil {
			l.logger.Debug("close browser after rejected login", zap.Error(closeErr))
		}
		return fmt.Errorf("login %s: %w", state, domain.ErrInvalidCredentials)
	}

	return fmt.Errorf("login %s: %s: %w", state, selector, domain.ErrLoginTimeout)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
