package ports

import (
	"context"

	"github.com/bnema/apex-activities-cli/internal/domain"
)

// CookieJarStore persists the session cookies between runs. Load returns
// domain.ErrCookieJarNotFound for a missing or unreadable jar.
type CookieJarStore interface {
	Load(ctx context.Context) (domain.CookieJar, error)
	Save(ctx context.Context, jar domain.CookieJar) error
	Clear(ctx context.Context) error
}
