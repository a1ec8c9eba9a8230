package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

// CredentialRepository persists the non-secret credential profile.
type CredentialRepository struct {
	path string
	mu   *sync.RWMutex
	now  func() time.Time
}

var _ ports.CredentialRepository = (*CredentialRepository)(nil)

func NewCredentialRepository(path string) (*CredentialRepository, error) {
	normalized, err := normalizePath(path)
	if err != nil {
		return nil, err
	}

	return &CredentialRepository{path: normalized, mu: lockForPath(normalized), now: time.Now}, nil
}

func (r *CredentialRepository) Load(ctx context.Context) (domain.CredentialProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.CredentialProfile{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.CredentialProfile{}, domain.ErrCredentialsMissing
		}
		return domain.CredentialProfile{}, fmt.Errorf("read credentials file: %w", err)
	}

	var file credentialsFileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return domain.CredentialProfile{}, fmt.Errorf("decode credentials file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return domain.CredentialProfile{}, err
	}

	if strings.TrimSpace(file.Username) == "" {
		return domain.CredentialProfile{}, domain.ErrCredentialsMissing
	}

	return domain.CredentialProfile{
		Username:    file.Username,
		Account:     file.Account,
		PasswordRef: file.PasswordRef,
	}, nil
}

func (r *CredentialRepository) Save(ctx context.Context, profile domain.CredentialProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file := credentialsFileSchema{
		Username:    profile.Username,
		Account:     profile.Account,
		PasswordRef: profile.PasswordRef,
		UpdatedAt:   r.now().UTC().Truncate(time.Second),
	}
	file.applyDefaults()

	r.mu.Lock()
	defer r.mu.Unlock()

	return writeTOML(r.path, file)
}

func (r *CredentialRepository) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return removeFile(r.path)
}
