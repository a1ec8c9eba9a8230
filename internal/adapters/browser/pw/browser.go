package pw

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

const (
	EngineFirefox  = "firefox"
	EngineChromium = "chromium"
	EngineWebKit   = "webkit"

	defaultViewportWidth  = 1920
	defaultViewportHeight = 1080
	launchTimeout         = 60 * time.Second
)

type Config struct {
	Engine       string
	Headless     bool
	WindowWidth  int
	WindowHeight int
	// Install downloads the driver and engine on first launch.
	Install bool
}

// Launcher starts a Playwright driver and one browser per Launch call.
type Launcher struct {
	cfg    Config
	logger *zap.Logger
}

var _ ports.BrowserLauncher = (*Launcher)(nil)

func NewLauncher(cfg Config, logger *zap.Logger) (*Launcher, error) {
	cfg.Engine = strings.ToLower(strings.TrimSpace(cfg.Engine))
	if cfg.Engine == "" {
		cfg.Engine = EngineFirefox
	}
	switch cfg.Engine {
	case EngineFirefox, EngineChromium, EngineWebKit:
	default:
		return nil, fmt.Errorf("unsupported browser engine %q", cfg.Engine)
	}
	if cfg.WindowWidth <= 0 {
		cfg.WindowWidth = defaultViewportWidth
	}
	if cfg.WindowHeight <= 0 {
		cfg.WindowHeight = defaultViewportHeight
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{cfg: cfg, logger: logger.Named("playwright")}, nil
}

func (l *Launcher) runOptions() *playwright.RunOptions {
	return &playwright.RunOptions{
		Browsers: []string{l.cfg.Engine},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
}

func (l *Launcher) Launch(ctx context.Context) (ports.Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := l.runOptions()
	if l.cfg.Install {
		if err := playwright.Install(opts); err != nil {
			return nil, fmt.Errorf("install playwright: %w", err)
		}
	}

	driver, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	browserType := driver.Firefox
	switch l.cfg.Engine {
	case EngineChromium:
		browserType = driver.Chromium
	case EngineWebKit:
		browserType = driver.WebKit
	}

	browser, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.cfg.Headless),
		Timeout:  playwright.Float(float64(launchTimeout.Milliseconds())),
	})
	if err != nil {
		_ = driver.Stop()
		return nil, fmt.Errorf("launch %s: %w", l.cfg.Engine, err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  l.cfg.WindowWidth,
			Height: l.cfg.WindowHeight,
		},
	})
	if err != nil {
		_ = browser.Close()
		_ = driver.Stop()
		return nil, fmt.Errorf("create browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		_ = browserCtx.Close()
		_ = browser.Close()
		_ = driver.Stop()
		return nil, fmt.Errorf("create page: %w", err)
	}

	l.logger.Debug("browser started",
		zap.String("engine", l.cfg.Engine),
		zap.String("version", browser.Version()),
		zap.Bool("headless", l.cfg.Headless),
	)
	return &Browser{
		driver:  driver,
		browser: browser,
		context: browserCtx,
		page:    page,
		logger:  l.logger,
	}, nil
}

// Browser is one Playwright page. Playwright calls are synchronous, so ctx is
// honoured between calls and through per-call timeouts.
type Browser struct {
	driver  *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	logger  *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

var _ ports.Browser = (*Browser)(nil)

func (b *Browser) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.page.Goto(url, playwright.PageGotoOptions{Timeout: timeoutFrom(ctx, 0)}); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (b *Browser) WaitFor(ctx context.Context, selector ports.Selector, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := b.page.WaitForSelector(selectorString(selector), playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: timeoutFrom(ctx, timeout),
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) && ctx.Err() == nil {
		return fmt.Errorf("%s after %s: %w", selector, timeout, ports.ErrWaitTimeout)
	}
	return fmt.Errorf("wait for %s: %w", selector, err)
}

func (b *Browser) Fill(ctx context.Context, selector ports.Selector, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.page.Fill(selectorString(selector), value, playwright.PageFillOptions{Timeout: timeoutFrom(ctx, 0)})
}

func (b *Browser) Click(ctx context.Context, selector ports.Selector) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.page.Click(selectorString(selector), playwright.PageClickOptions{Timeout: timeoutFrom(ctx, 0)})
}

func (b *Browser) Press(ctx context.Context, selector ports.Selector, key ports.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.page.Press(selectorString(selector), string(key), playwright.PagePressOptions{Timeout: timeoutFrom(ctx, 0)})
}

func (b *Browser) Cookies(ctx context.Context) ([]domain.Cookie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cookies, err := b.context.Cookies()
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}
	return fromPlaywrightCookies(cookies), nil
}

func (b *Browser) SetCookies(ctx context.Context, cookies []domain.Cookie) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.context.AddCookies(toPlaywrightCookies(cookies)); err != nil {
		return fmt.Errorf("add cookies: %w", err)
	}
	return nil
}

func (b *Browser) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !b.browser.IsConnected() || b.page.IsClosed() {
		return errors.New("browser disconnected")
	}
	if _, err := b.page.Evaluate(`() => 1`); err != nil {
		return fmt.Errorf("ping page: %w", err)
	}
	return nil
}

// Close tears down the context, the browser and the driver, in that order.
// Calling it more than once is safe.
func (b *Browser) Close() error {
	b.closeOnce.Do(func() {
		var errs []error
		if err := b.context.Close(); err != nil {
			b.logger.Debug("close browser context", zap.Error(err))
		}
		if err := b.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		if err := b.driver.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
		b.closeErr = errors.Join(errs...)
	})
	return b.closeErr
}

func selectorString(selector ports.Selector) string {
	if selector.Kind == ports.SelectorXPath {
		return "xpath=" + selector.Expr
	}
	return "css=" + selector.Expr
}

// timeoutFrom converts the tighter of limit and the ctx deadline to
// Playwright milliseconds. Nil keeps the Playwright default.
func timeoutFrom(ctx context.Context, limit time.Duration) *float64 {
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			remaining = time.Millisecond
		}
		if limit <= 0 || remaining < limit {
			limit = remaining
		}
	}
	if limit <= 0 {
		return nil
	}
	return playwright.Float(float64(limit.Milliseconds()))
}

func fromPlaywrightCookies(cookies []playwright.Cookie) []domain.Cookie {
	out := make([]domain.Cookie, 0, len(cookies))
	for _, c := range cookies {
		var expires *time.Time
		if c.Expires > 0 {
			whole, frac := math.Modf(c.Expires)
			ts := time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
			expires = &ts
		}
		out = append(out, domain.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  expires,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		})
	}
	return out
}

func toPlaywrightCookies(cookies []domain.Cookie) []playwright.OptionalCookie {
	out := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		path := c.Path
		if path == "" {
			path = "/"
		}
		cookie := playwright.OptionalCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   playwright.String(c.Domain),
			Path:     playwright.String(path),
			Secure:   playwright.Bool(c.Secure),
			HttpOnly: playwright.Bool(c.HTTPOnly),
		}
		if c.Expires != nil {
			cookie.Expires = playwright.Float(float64(c.Expires.Unix()))
		}
		out = append(out, cookie)
	}
	return out
}
