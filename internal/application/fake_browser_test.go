package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

type fakeBrowser struct {
	mu sync.Mutex

	missing     map[ports.Selector]bool
	waitErr     error
	navigateErr error
	pingErr     error
	closeErr    error
	cookies     []domain.Cookie

	navigated []string
	fills     []string
	clicks    []ports.Selector
	presses   []ports.Key
	injected  []domain.Cookie
	waits     []time.Duration
	closed    int
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		missing: map[ports.Selector]bool{},
		cookies: []domain.Cookie{{Name: "session", Value: "abc", Domain: ".apexclearing.com", Path: "/"}},
	}
}

func (b *fakeBrowser) Navigate(_ context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.navigated = append(b.navigated, url)
	return b.navigateErr
}

func (b *fakeBrowser) WaitFor(_ context.Context, selector ports.Selector, timeout time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.waits = append(b.waits, timeout)
	if b.waitErr != nil {
		return b.waitErr
	}
	if b.missing[selector] {
		return fmt.Errorf("%s: %w", selector, ports.ErrWaitTimeout)
	}
	return nil
}

func (b *fakeBrowser) Fill(_ context.Context, selector ports.Selector, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fills = append(b.fills, selector.Expr+"="+value)
	return nil
}

func (b *fakeBrowser) Click(_ context.Context, selector ports.Selector) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clicks = append(b.clicks, selector)
	return nil
}

func (b *fakeBrowser) Press(_ context.Context, _ ports.Selector, key ports.Key) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presses = append(b.presses, key)
	return nil
}

func (b *fakeBrowser) Cookies(context.Context) ([]domain.Cookie, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Cookie(nil), b.cookies...), nil
}

func (b *fakeBrowser) SetCookies(_ context.Context, cookies []domain.Cookie) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.injected = append(b.injected, cookies...)
	return nil
}

func (b *fakeBrowser) Ping(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed > 0 {
		return errors.New("browser closed")
	}
	return b.pingErr
}

func (b *fakeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed++
	return b.closeErr
}

func (b *fakeBrowser) loggedIn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.presses) > 0
}

// fakeLauncher hands out prepared browsers in order, then fresh defaults.
type fakeLauncher struct {
	mu       sync.Mutex
	prepared []*fakeBrowser
	launched []*fakeBrowser
	err      error
}

func (l *fakeLauncher) Launch(context.Context) (ports.Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}

	browser := newFakeBrowser()
	if len(l.prepared) > 0 {
		browser = l.prepared[0]
		l.prepared = l.prepared[1:]
	}
	l.launched = append(l.launched, browser)
	return browser, nil
}

func (l *fakeLauncher) logins() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	for _, browser := range l.launched {
		if browser.loggedIn() {
			count++
		}
	}
	return count
}

var testCreds = domain.Credentials{Username: "jdoe", Password: "hunter2", Account: "5XX00001"}
