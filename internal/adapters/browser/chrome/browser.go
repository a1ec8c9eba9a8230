package chrome

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

const (
	defaultWindowWidth  = 1920
	defaultWindowHeight = 1080
	pingTimeout         = 5 * time.Second
)

type Config struct {
	Headless     bool
	WindowWidth  int
	WindowHeight int
	// ExecPath overrides the Chrome binary lookup.
	ExecPath string
}

// Launcher starts one Chrome process per Launch call over the DevTools
// protocol.
type Launcher struct {
	cfg    Config
	logger *zap.Logger
}

var _ ports.BrowserLauncher = (*Launcher)(nil)

func NewLauncher(cfg Config, logger *zap.Logger) *Launcher {
	if cfg.WindowWidth <= 0 {
		cfg.WindowWidth = defaultWindowWidth
	}
	if cfg.WindowHeight <= 0 {
		cfg.WindowHeight = defaultWindowHeight
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{cfg: cfg, logger: logger.Named("chrome")}
}

func (l *Launcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("headless", l.cfg.Headless),
		chromedp.WindowSize(l.cfg.WindowWidth, l.cfg.WindowHeight),
	)
	if l.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.cfg.ExecPath))
	}
	return opts
}

// Launch starts the browser. Its lifetime is bound to Close, not to ctx;
// ctx only bounds the startup.
func (l *Launcher) Launch(ctx context.Context) (ports.Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), l.allocatorOptions()...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(l.logger.Sugar().Debugf))

	started := make(chan error, 1)
	go func() {
		// The first Run allocates the browser and must use the tab context itself.
		started <- chromedp.Run(tabCtx)
	}()

	select {
	case err := <-started:
		if err != nil {
			tabCancel()
			allocCancel()
			return nil, fmt.Errorf("start chrome: %w", err)
		}
	case <-ctx.Done():
		tabCancel()
		allocCancel()
		return nil, ctx.Err()
	}

	l.logger.Debug("chrome started", zap.Bool("headless", l.cfg.Headless))
	return &Browser{
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		logger:      l.logger,
	}, nil
}

// Browser is one Chrome tab driven through chromedp.
type Browser struct {
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	logger      *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

var _ ports.Browser = (*Browser)(nil)

// run executes actions on the tab, stopping early when the caller's ctx ends.
func (b *Browser) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(b.tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (b *Browser) Navigate(ctx context.Context, url string) error {
	return b.run(ctx, chromedp.Navigate(url))
}

func (b *Browser) WaitFor(ctx context.Context, selector ports.Selector, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := b.run(waitCtx, chromedp.WaitVisible(selector.Expr, queryOption(selector)))
	if err != nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%s after %s: %w", selector, timeout, ports.ErrWaitTimeout)
	}
	return err
}

func (b *Browser) Fill(ctx context.Context, selector ports.Selector, value string) error {
	by := queryOption(selector)
	return b.run(ctx,
		chromedp.Clear(selector.Expr, by),
		chromedp.SendKeys(selector.Expr, value, by),
	)
}

func (b *Browser) Click(ctx context.Context, selector ports.Selector) error {
	return b.run(ctx, chromedp.Click(selector.Expr, queryOption(selector)))
}

func (b *Browser) Press(ctx context.Context, selector ports.Selector, key ports.Key) error {
	keys, err := keyCodes(key)
	if err != nil {
		return err
	}
	return b.run(ctx, chromedp.SendKeys(selector.Expr, keys, queryOption(selector)))
}

// Cookies returns every cookie in the browser context, not only those of the
// current page URL.
func (b *Browser) Cookies(ctx context.Context) ([]domain.Cookie, error) {
	var cookies []*network.Cookie
	err := b.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = storage.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}
	return fromNetworkCookies(cookies), nil
}

func (b *Browser) SetCookies(ctx context.Context, cookies []domain.Cookie) error {
	return b.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, cookie := range cookies {
			params := network.SetCookie(cookie.Name, cookie.Value).
				WithDomain(cookie.Domain).
				WithPath(cookie.Path).
				WithSecure(cookie.Secure).
				WithHTTPOnly(cookie.HTTPOnly)
			if cookie.Expires != nil {
				expires := cdp.TimeSinceEpoch(*cookie.Expires)
				params = params.WithExpires(&expires)
			}
			if err := params.Do(ctx); err != nil {
				return fmt.Errorf("set cookie %s: %w", cookie.Name, err)
			}
		}
		return nil
	}))
}

// Ping evaluates a trivial expression in the page.
func (b *Browser) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	var result int
	if err := b.run(pingCtx, chromedp.Evaluate(`1`, &result)); err != nil {
		return fmt.Errorf("ping chrome: %w", err)
	}
	return nil
}

// Close shuts the browser down gracefully. Calling it more than once is safe.
func (b *Browser) Close() error {
	b.closeOnce.Do(func() {
		if err := chromedp.Cancel(b.tabCtx); err != nil && !errors.Is(err, context.Canceled) {
			b.closeErr = fmt.Errorf("close chrome: %w", err)
		}
		b.tabCancel()
		b.allocCancel()
	})
	return b.closeErr
}

func queryOption(selector ports.Selector) chromedp.QueryOption {
	if selector.Kind == ports.SelectorXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func keyCodes(key ports.Key) (string, error) {
	switch key {
	case ports.KeyEnter:
		return kb.Enter, nil
	default:
		return "", fmt.Errorf("unsupported key %q", key)
	}
}

func fromNetworkCookies(cookies []*network.Cookie) []domain.Cookie {
	out := make([]domain.Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c == nil {
			continue
		}
		out = append(out, domain.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  expiryFromSeconds(c.Expires, c.Session),
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		})
	}
	return out
}

// expiryFromSeconds maps DevTools epoch seconds to a UTC time. Session
// cookies report -1 and get no expiry.
func expiryFromSeconds(seconds float64, session bool) *time.Time {
	if session || seconds <= 0 {
		return nil
	}
	whole, frac := math.Modf(seconds)
	expires := time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
	return &expires
}
