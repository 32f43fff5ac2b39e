package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/agentic-hq/agentic/internal/model"
)

type usage struct {
	db *gorm.DB
}

func newUsage(db *gorm.DB) *usage {
	return &usage{db}
}

// Create records one query.
func (u *usage) Create(ctx context.Context, row *model.Usage) error {
	return u.db.WithContext(ctx).Create(row).Error
}

// SummarizeUser aggregates a user's recorded queries.
func (u *usage) SummarizeUser(ctx context.Context, userID uint64) (*UsageSummary, error) {
	var out struct {
		TotalQueries     int64
		PromptTokens     int64
		CompletionTokens int64
		TotalTokens      int64
		LastQueryAt      int64
	}
	err := u.db.WithContext(ctx).Model(&model.Usage{}).
		Select("COUNT(*) AS total_queries, "+
			"COALESCE(SUM(prompt_tokens),0) AS prompt_tokens, "+
			"COALESCE(SUM(completion_tokens),0) AS completion_tokens, "+
			"COALESCE(SUM(total_tokens),0) AS total_tokens, "+
			"COALESCE(MAX(created_at),0) AS last_query_at").
		Where("user_id = ?", userID).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return &UsageSummary{
		TotalQueries:     out.TotalQueries,
		PromptTokens:     out.PromptTokens,
		CompletionTokens: out.CompletionTokens,
		TotalTokens:      out.TotalTokens,
		LastQueryAt:      out.LastQueryAt,
	}, nil
}

// List lists recent usage rows across all users.
func (u *usage) List(ctx context.Context, limit int) ([]*model.Usage, error) {
	var list []*model.Usage
	q := u.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ListByUser lists recent usage rows for one user.
func (u *usage) ListByUser(ctx context.Context, userID uint64, limit int) ([]*model.Usage, error) {
	var list []*model.Usage
	q := u.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
