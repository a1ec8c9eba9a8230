package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

func TestLoginRunDrivesFormInOrder(t *testing.T) {
	browser := newFakeBrowser()
	login := NewLogin(LoginConfig{}, nil)
	sel := DefaultLoginSelectors()

	cookies, err := login.Run(context.Background(), browser, testCreds)
	require.NoError(t, err)

	assert.Equal(t, []string{DefaultLoginURL}, browser.navigated)
	assert.Equal(t, []string{
		sel.InitialUsername.Expr + "=jdoe",
		sel.Username.Expr + "=jdoe",
		sel.Password.Expr + "=hunter2",
		sel.Account.Expr + "=5XX00001",
	}, browser.fills)
	assert.Equal(t, []ports.Selector{sel.InitialSubmit, sel.LoginButton}, browser.clicks)
	assert.Equal(t, []ports.Key{ports.KeyEnter}, browser.presses)
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Zero(t, browser.closed)

	for _, wait := range browser.waits {
		assert.Equal(t, DefaultWaitTimeout, wait)
	}
}

func TestLoginRunTimeoutBeforeAccountStepIsLoginTimeout(t *testing.T) {
	tests := []struct {
		name     string
		selector ports.Selector
		state    LoginState
	}{
		{name: "initial username", selector: DefaultLoginSelectors().InitialUsername, state: StateAwaitInitialUsernameField},
		{name: "full form", selector: DefaultLoginSelectors().Username, state: StateAwaitFullLoginForm},
		{name: "password", selector: DefaultLoginSelectors().Password, state: StateAwaitPasswordField},
		{name: "login button", selector: DefaultLoginSelectors().LoginButton, state: StateAwaitLoginButton},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			browser := newFakeBrowser()
			browser.missing[tt.selector] = true

			_, err := NewLogin(LoginConfig{}, nil).Run(context.Background(), browser, testCreds)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrLoginTimeout)
			assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
			assert.Contains(t, err.Error(), string(tt.state))
			assert.Zero(t, browser.closed)
			assert.Empty(t, browser.presses)
		})
	}
}

func TestLoginRunFillsInitialUsernameBeforeWaitingForSubmit(t *testing.T) {
	browser := newFakeBrowser()
	sel := DefaultLoginSelectors()
	browser.missing[sel.InitialSubmit] = true

	_, err := NewLogin(LoginConfig{}, nil).Run(context.Background(), browser, testCreds)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLoginTimeout)
	assert.Contains(t, err.Error(), sel.InitialSubmit.Expr)
	assert.Equal(t, []string{sel.InitialUsername.Expr + "=jdoe"}, browser.fills)
	assert.Empty(t, browser.clicks)
}

func TestLoginRunMissingAccountFieldIsInvalidCredentials(t *testing.T) {
	browser := newFakeBrowser()
	browser.missing[DefaultLoginSelectors().Account] = true

	_, err := NewLogin(LoginConfig{}, nil).Run(context.Background(), browser, testCreds)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.NotErrorIs(t, err, domain.ErrLoginTimeout)
	assert.Equal(t, 1, browser.closed)
}

func TestLoginRunPropagatesNonTimeoutWaitErrors(t *testing.T) {
	browser := newFakeBrowser()
	browser.waitErr = errors.New("target crashed")

	_, err := NewLogin(LoginConfig{}, nil).Run(context.Background(), browser, testCreds)
	require.Error(t, err)
	assert.ErrorContains(t, err, "target crashed")
	assert.NotErrorIs(t, err, domain.ErrLoginTimeout)
}

func TestLoginRunRejectsIncompleteCredentials(t *testing.T) {
	browser := newFakeBrowser()

	_, err := NewLogin(LoginConfig{}, nil).Run(context.Background(), browser, domain.Credentials{Username: "jdoe"})
	require.ErrorIs(t, err, domain.ErrCredentialsMissing)
	assert.Empty(t, browser.navigated)
}

func TestLoginRunWaitsSettleDelayBeforeCapturingCookies(t *testing.T) {
	browser := newFakeBrowser()
	login := NewLogin(LoginConfig{SettleDelay: 3 * time.Second, WaitTimeout: time.Second}, nil)

	var slept time.Duration
	login.sleep = func(_ context.Context, d time.Duration) error {
		slept = d
		return nil
	}

	_, err := login.Run(context.Background(), browser, testCreds)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, slept)
	assert.Equal(t, time.Second, browser.waits[0])
}

func TestLoginRunHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLogin(LoginConfig{}, nil).Run(ctx, newFakeBrowser(), testCreds)
	require.ErrorIs(t, err, context.Canceled)
}
