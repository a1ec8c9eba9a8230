package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

// CredentialService supplies brokerage credentials on demand, prompting when
// none are stored.
type CredentialService struct {
	repo     ports.CredentialRepository
	store    ports.SecretStore
	prompter ports.CredentialPrompter
	logger   *zap.Logger
}

func NewCredentialService(repo ports.CredentialRepository, store ports.SecretStore, prompter ports.CredentialPrompter, logger *zap.Logger) *CredentialService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CredentialService{
		repo:     repo,
		store:    store,
		prompter: prompter,
		logger:   logger.Named("credentials"),
	}
}

func (s *CredentialService) Resolve(ctx context.Context) (domain.Credentials, error) {
	creds, err := s.Stored(ctx)
	if err == nil {
		return creds, nil
	}
	if !errors.Is(err, domain.ErrCredentialsMissing) {
		return domain.Credentials{}, err
	}

	if s.prompter == nil {
		return domain.Credentials{}, domain.ErrCredentialsMissing
	}

	s.logger.Info("no stored credentials, prompting")
	creds, err = s.prompter.Prompt(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialsMissing) {
			return domain.Credentials{}, err
		}
		return domain.Credentials{}, fmt.Errorf("%w: prompt: %v", domain.ErrCredentialsMissing, err)
	}
	creds.Username = strings.TrimSpace(creds.Username)
	creds.Account = strings.TrimSpace(creds.Account)
	if !creds.Complete() {
		return domain.Credentials{}, domain.ErrCredentialsMissing
	}

	if err := s.Save(ctx, creds); err != nil {
		return domain.Credentials{}, err
	}

	return creds, nil
}

// Stored returns persisted credentials without prompting.
func (s *CredentialService) Stored(ctx context.Context) (domain.Credentials, error) {
	profile, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialsMissing) {
			return domain.Credentials{}, err
		}
		return domain.Credentials{}, fmt.Errorf("load credential profile: %w", err)
	}

	ref := profile.PasswordRef
	if ref == "" {
		ref = domain.PasswordSecretRef(profile.Username)
	}

	password, err := s.store.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			s.logger.Warn("credential profile has no stored password", zap.String("username", profile.Username))
			return domain.Credentials{}, domain.ErrCredentialsMissing
		}
		return domain.Credentials{}, fmt.Errorf("read password secret: %w", err)
	}

	creds := domain.Credentials{
		Username: profile.Username,
		Password: password,
		Account:  profile.Account,
	}
	if !creds.Complete() {
		return domain.Credentials{}, domain.ErrCredentialsMissing
	}

	return creds, nil
}

func (s *CredentialService) Save(ctx context.Context, creds domain.Credentials) error {
	creds.Username = strings.TrimSpace(creds.Username)
	creds.Account = strings.TrimSpace(creds.Account)
	if !creds.Complete() {
		return fmt.Errorf("save credentials: %w", domain.ErrCredentialsMissing)
	}

	previous, err := s.repo.Load(ctx)
	if err != nil && !errors.Is(err, domain.ErrCredentialsMissing) {
		return fmt.Errorf("load credential profile: %w", err)
	}

	ref := domain.PasswordSecretRef(creds.Username)
	if err := s.store.Put(ctx, ref, creds.Password); err != nil {
		return fmt.Errorf("store password secret: %w", err)
	}

	profile := domain.CredentialProfile{
		Username:    creds.Username,
		Account:     creds.Account,
		PasswordRef: ref,
	}
	if err := s.repo.Save(ctx, profile); err != nil {
		if rollbackErr := s.store.Delete(ctx, ref); rollbackErr != nil {
			return fmt.Errorf("save credential profile and rollback stored secret: %w", errors.Join(err, rollbackErr))
		}

		return fmt.Errorf("save credential profile: %w", err)
	}

	if previous.PasswordRef != "" && previous.PasswordRef != ref {
		if err := s.store.Delete(ctx, previous.PasswordRef); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
			s.logger.Warn("failed to delete previous password secret", zap.String("ref", previous.PasswordRef), zap.Error(err))
		}
	}

	s.logger.Info("credentials saved", zap.Object("credentials", creds))
	return nil
}

func (s *CredentialService) Remove(ctx context.Context) error {
	profile, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialsMissing) {
			return nil
		}
		return fmt.Errorf("load credential profile: %w", err)
	}

	if profile.PasswordRef != "" {
		if err := s.store.Delete(ctx, profile.PasswordRef); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
			return fmt.Errorf("delete password secret: %w", err)
		}
	}

	if err := s.repo.Delete(ctx); err != nil {
		return fmt.Errorf("delete credential profile: %w", err)
	}

	return nil
}
