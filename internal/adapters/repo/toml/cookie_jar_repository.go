package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

// CookieJarRepository persists the session cookie jar. A missing, corrupt or
// future-version file reads as domain.ErrCookieJarNotFound.
type CookieJarRepository struct {
	path   string
	mu     *sync.RWMutex
	logger *zap.Logger
}

var _ ports.CookieJarStore = (*CookieJarRepository)(nil)

func NewCookieJarRepository(path string, logger *zap.Logger) (*CookieJarRepository, error) {
	normalized, err := normalizePath(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CookieJarRepository{
		path:   normalized,
		mu:     lockForPath(normalized),
		logger: logger.Named("cookies"),
	}, nil
}

func (r *CookieJarRepository) Load(ctx context.Context) (domain.CookieJar, error) {
	if err := ctx.Err(); err != nil {
		return domain.CookieJar{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.CookieJar{}, domain.ErrCookieJarNotFound
		}
		r.logger.Warn("cookie jar unreadable, ignoring", zap.String("path", r.path), zap.Error(err))
		return domain.CookieJar{}, fmt.Errorf("%w: %v", domain.ErrCookieJarNotFound, err)
	}

	var file cookieJarFileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		r.logger.Warn("cookie jar corrupt, ignoring", zap.String("path", r.path), zap.Error(err))
		return domain.CookieJar{}, fmt.Errorf("%w: decode: %v", domain.ErrCookieJarNotFound, err)
	}
	if err := file.validateVersion(); err != nil {
		r.logger.Warn("cookie jar version unsupported, ignoring", zap.String("path", r.path), zap.Error(err))
		return domain.CookieJar{}, fmt.Errorf("%w: %v", domain.ErrCookieJarNotFound, err)
	}

	return fromCookieJarSchema(file), nil
}

func (r *CookieJarRepository) Save(ctx context.Context, jar domain.CookieJar) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := writeTOML(r.path, toCookieJarSchema(jar)); err != nil {
		return err
	}

	r.logger.Debug("cookie jar saved", zap.Int("cookies", len(jar.Cookies)))
	return nil
}

func (r *CookieJarRepository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return removeFile(r.path)
}
