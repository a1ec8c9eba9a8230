package ports

import (
	"context"

	"github.com/bnema/apex-activities-cli/internal/domain"
)

type ActivityFetcher interface {
	Fetch(ctx context.Context, session *Session, account string, categories []domain.Category, window domain.DateWindow) ([]domain.CategoryPayload, error)
}
