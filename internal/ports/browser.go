package ports

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bnema/apex-activities-cli/internal/domain"
)

// ErrWaitTimeout is returned by Browser.WaitFor when the element never
// became interactable before the deadline.
var ErrWaitTimeout = errors.New("wait for element timed out")

type SelectorKind string

const (
	SelectorCSS   SelectorKind = "css"
	SelectorXPath SelectorKind = "xpath"
)

type Selector struct {
	Kind SelectorKind
	Expr string
}

func CSS(expr string) Selector {
	return Selector{Kind: SelectorCSS, Expr: expr}
}

func XPath(expr string) Selector {
	return Selector{Kind: SelectorXPath, Expr: expr}
}

func (s Selector) String() string {
	return string(s.Kind) + ":" + s.Expr
}

type Key string

const KeyEnter Key = "Enter"

// Browser is the capability surface the login flow and fetcher need from a
// live browser session.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	WaitFor(ctx context.Context, selector Selector, timeout time.Duration) error
	Fill(ctx context.Context, selector Selector, value string) error
	Click(ctx context.Context, selector Selector) error
	Press(ctx context.Context, selector Selector, key Key) error
	Cookies(ctx context.Context) ([]domain.Cookie, error)
	SetCookies(ctx context.Context, cookies []domain.Cookie) error
	// Ping is the liveness probe. Any error means the session is dead.
	Ping(ctx context.Context) error
	Close() error
}

type BrowserLauncher interface {
	Launch(ctx context.Context) (Browser, error)
}

// ParseSelector reads "xpath:<expr>" or "css:<expr>"; a bare expression is
// CSS.
func ParseSelector(raw string) (Selector, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Selector{}, errors.New("selector is empty")
	}

	kind, expr, found := strings.Cut(raw, ":")
	if !found {
		return CSS(raw), nil
	}
	switch SelectorKind(strings.ToLower(kind)) {
	case SelectorXPath:
		return XPath(expr), nil
	case SelectorCSS:
		return CSS(expr), nil
	default:
		return CSS(raw), nil
	}
}
