package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/agentic-hq/agentic/internal/model"
)

type embedTokens struct {
	db *gorm.DB
}

func newEmbedTokens(db *gorm.DB) *embedTokens {
	return &embedTokens{db}
}

// Create creates a new embed token.
func (e *embedTokens) Create(ctx context.Context, token *model.EmbedToken) error {
	return e.db.WithContext(ctx).Create(token).Error
}

// GetByToken retrieves an embed token by its public token string.
func (e *embedTokens) GetByToken(ctx context.Context, token string) (*model.EmbedToken, error) {
	var row model.EmbedToken
	if err := e.db.WithContext(ctx).Where("token = ?", token).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByAgent retrieves the embed token minted for an agent.
func (e *embedTokens) GetByAgent(ctx context.Context, agentID uint64) (*model.EmbedToken, error) {
	var row model.EmbedToken
	if err := e.db.WithContext(ctx).Where("agent_id = ?", agentID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// DeleteByAgent removes the embed token for an agent, if any.
func (e *embedTokens) DeleteByAgent(ctx context.Context, agentID uint64) error {
	return e.db.WithContext(ctx).Where("agent_id = ?", agentID).Delete(&model.EmbedToken{}).Error
}
