package biz

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/kart-io/logger"
	"gorm.io/gorm"

	"github.com/agentic-hq/agentic/internal/apiserver/engine"
	"github.com/agentic-hq/agentic/internal/apiserver/store"
	"github.com/agentic-hq/agentic/internal/model"
	"github.com/agentic-hq/agentic/pkg/errors"
	"github.com/agentic-hq/agentic/pkg/id"
)

var validSourceTypes = map[string]bool{
	model.SourcePDF:   true,
	model.SourceCSV:   true,
	model.SourceWord:  true,
	model.SourceSQL:   true,
	model.SourceNoSQL: true,
}

// AgentService handles agent lifecycle and document ingestion.
type AgentService struct {
	store  store.Factory
	engine *engine.Client
}

// NewAgentService creates a new AgentService.
func NewAgentService(factory store.Factory, eng *engine.Client) *AgentService {
	return &AgentService{store: factory, engine: eng}
}

// Create creates an agent and ingests its initial documents. sourceType
// defaults to pdf when empty.
func (s *AgentService) Create(ctx context.Context, userID uint64, name, domain, description, sourceType string, docs []engine.Document, extra map[string]string) (*model.Agent, error) {
	if sourceType == "" {
		sourceType = model.SourcePDF
	}
	if !validSourceTypes[sourceType] {
		return nil, errors.ErrInvalidSourceType
	}

	if _, err := s.store.Agents().Get(ctx, userID, name); err == nil {
		return nil, errors.ErrAgentExists
	} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	agent := &model.Agent{
		UserID:      userID,
		Name:        name,
		Domain:      domain,
		Description: description,
		SourceType:  sourceType,
		Collection:  collectionName(userID, name),
	}

	if err := s.engine.Ingest(ctx, agent.Collection, sourceType, docs, extra); err != nil {
		return nil, err
	}
	if err := s.store.Agents().Create(ctx, agent); err != nil {
		// best effort rollback of the collection we just created
		if cleanupErr := s.engine.DeleteCollection(ctx, agent.Collection); cleanupErr != nil {
			logger.Warnw("orphaned collection after failed agent create",
				"collection", agent.Collection,
				"error", cleanupErr.Error(),
			)
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return agent, nil
}

// Update ingests additional documents into an existing agent.
func (s *AgentService) Update(ctx context.Context, userID uint64, name string, docs []engine.Document) error {
	agent, err := s.get(ctx, userID, name)
	if err != nil {
		return err
	}
	return s.engine.Ingest(ctx, agent.Collection, agent.SourceType, docs, nil)
}

// Delete removes an agent, its embed token and its collection.
func (s *AgentService) Delete(ctx context.Context, userID uint64, name string) error {
	agent, err := s.get(ctx, userID, name)
	if err != nil {
		return err
	}

	if err := s.engine.DeleteCollection(ctx, agent.Collection); err != nil {
		logger.Warnw("failed to delete collection, continuing with agent delete",
			"collection", agent.Collection,
			"error", err.Error(),
		)
	}
	if err := s.store.EmbedTokens().DeleteByAgent(ctx, agent.ID); err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	if err := s.store.Agents().Delete(ctx, userID, name); err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// List lists the agents owned by userID with their embed tokens attached.
func (s *AgentService) List(ctx context.Context, userID uint64) ([]*AgentView, error) {
	agents, err := s.store.Agents().List(ctx, userID)
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	views := make([]*AgentView, 0, len(agents))
	for _, agent := range agents {
		view := &AgentView{Agent: agent}
		token, err := s.store.EmbedTokens().GetByAgent(ctx, agent.ID)
		if err == nil {
			view.EmbedToken = token.Token
		} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrDatabase.WithCause(err)
		}
		views = append(views, view)
	}
	return views, nil
}

// Get fetches one agent owned by userID.
func (s *AgentService) Get(ctx context.Context, userID uint64, name string) (*AgentView, error) {
	agent, err := s.get(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	view := &AgentView{Agent: agent}
	token, err := s.store.EmbedTokens().GetByAgent(ctx, agent.ID)
	if err == nil {
		view.EmbedToken = token.Token
	} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return view, nil
}

// MintEmbedToken returns the agent's embed token, creating it on first call.
// Minting is idempotent.
func (s *AgentService) MintEmbedToken(ctx context.Context, userID uint64, name string) (string, error) {
	agent, err := s.get(ctx, userID, name)
	if err != nil {
		return "", err
	}

	existing, err := s.store.EmbedTokens().GetByAgent(ctx, agent.ID)
	if err == nil {
		return existing.Token, nil
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return "", errors.ErrDatabase.WithCause(err)
	}

	token, err := id.NewEmbedToken()
	if err != nil {
		return "", err
	}
	row := &model.EmbedToken{Token: token, AgentID: agent.ID}
	if err := s.store.EmbedTokens().Create(ctx, row); err != nil {
		// lost a race with a concurrent mint; return the winner's token
		if existing, getErr := s.store.EmbedTokens().GetByAgent(ctx, agent.ID); getErr == nil {
			return existing.Token, nil
		}
		return "", errors.ErrDatabase.WithCause(err)
	}
	return token, nil
}

// Query runs one authenticated chat turn and records usage.
func (s *AgentService) Query(ctx context.Context, userID uint64, name, query string, topK int) (*engine.QueryResult, error) {
	agent, err := s.get(ctx, userID, name)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Query(ctx, engine.QueryRequest{
		Collection: agent.Collection,
		Query:      query,
		TopK:       topK,
	})
	if err != nil {
		return nil, err
	}

	s.recordUsage(ctx, userID, agent.ID, model.SurfaceDashboard, result, 0)
	return result, nil
}

// QueryStream runs one authenticated chat turn with streaming output. The
// returned body is the engine's SSE stream; the caller must close it. Token
// accounting for streamed turns happens engine-side and is not recorded here.
func (s *AgentService) QueryStream(ctx context.Context, userID uint64, name, query string, topK int) (io.ReadCloser, error) {
	agent, err := s.get(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	return s.engine.QueryStream(ctx, engine.QueryRequest{
		Collection: agent.Collection,
		Query:      query,
		TopK:       topK,
	})
}

func (s *AgentService) recordUsage(ctx context.Context, userID, agentID uint64, surface string, result *engine.QueryResult, responseTimeMs int64) {
	err := s.store.Usage().Create(ctx, &model.Usage{
		UserID:           userID,
		AgentID:          agentID,
		Surface:          surface,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		TotalTokens:      result.TotalTokens,
		ResponseTimeMs:   responseTimeMs,
	})
	if err != nil {
		logger.Warnw("failed to record usage", "error", err.Error())
	}
}

func (s *AgentService) get(ctx context.Context, userID uint64, name string) (*model.Agent, error) {
	agent, err := s.store.Agents().Get(ctx, userID, name)
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrAgentNotFound
	}
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return agent, nil
}

// AgentView is an agent with its minted embed token, if any.
type AgentView struct {
	*model.Agent
	EmbedToken string
}

func collectionName(userID uint64, name string) string {
	return fmt.Sprintf("u%d_%s", userID, name)
}
