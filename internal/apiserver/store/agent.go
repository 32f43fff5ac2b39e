package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/agentic-hq/agentic/internal/model"
)

type agents struct {
	db *gorm.DB
}

func newAgents(db *gorm.DB) *agents {
	return &agents{db}
}

// Create creates a new agent.
func (a *agents) Create(ctx context.Context, agent *model.Agent) error {
	return a.db.WithContext(ctx).Create(agent).Error
}

// Update updates an existing agent.
func (a *agents) Update(ctx context.Context, agent *model.Agent) error {
	return a.db.WithContext(ctx).Save(agent).Error
}

// Delete soft-deletes an agent owned by userID.
func (a *agents) Delete(ctx context.Context, userID uint64, name string) error {
	return a.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		Delete(&model.Agent{}).Error
}

// Get retrieves an agent by owner and name.
func (a *agents) Get(ctx context.Context, userID uint64, name string) (*model.Agent, error) {
	var agent model.Agent
	err := a.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		First(&agent).Error
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

// GetByID retrieves an agent by id.
func (a *agents) GetByID(ctx context.Context, id uint64) (*model.Agent, error) {
	var agent model.Agent
	if err := a.db.WithContext(ctx).First(&agent, id).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

// List lists agents owned by userID.
func (a *agents) List(ctx context.Context, userID uint64) ([]*model.Agent, error) {
	var list []*model.Agent
	err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
