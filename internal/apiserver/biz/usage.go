package biz

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/agentic-hq/agentic/internal/apiserver/store"
	"github.com/agentic-hq/agentic/internal/model"
	"github.com/agentic-hq/agentic/pkg/errors"
)

// UsageService handles per-account stats and the admin usage views.
type UsageService struct {
	store store.Factory
}

// NewUsageService creates a new UsageService.
func NewUsageService(factory store.Factory) *UsageService {
	return &UsageService{store: factory}
}

// Stats aggregates one account's recorded queries.
func (s *UsageService) Stats(ctx context.Context, userID uint64) (*store.UsageSummary, error) {
	summary, err := s.store.Usage().SummarizeUser(ctx, userID)
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return summary, nil
}

// Users lists all accounts. Admin only; the handler enforces that.
func (s *UsageService) Users(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return users, nil
}

// Usage lists recent usage rows across all accounts.
func (s *UsageService) Usage(ctx context.Context, limit int) ([]*model.Usage, error) {
	rows, err := s.store.Usage().List(ctx, limit)
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return rows, nil
}

// UserUsage lists one account's recent usage rows.
func (s *UsageService) UserUsage(ctx context.Context, userID uint64, limit int) ([]*model.Usage, error) {
	if _, err := s.store.Users().Get(ctx, userID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	rows, err := s.store.Usage().ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return rows, nil
}
