package ports

import (
	"context"

	"github.com/bnema/apex-activities-cli/internal/domain"
)

type CredentialRepository interface {
	Load(ctx context.Context) (domain.CredentialProfile, error)
	Save(ctx context.Context, profile domain.CredentialProfile) error
	Delete(ctx context.Context) error
}

// CredentialPrompter asks the user for credentials. It returns
// domain.ErrCredentialsMissing when the user declines.
type CredentialPrompter interface {
	Prompt(ctx context.Context) (domain.Credentials, error)
}
