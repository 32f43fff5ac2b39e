package dashboard

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

// Sort orders accepted by Project.
const (
	SortByName    = "name"
	SortByDomain  = "domain"
	SortByCreated = "created"
)

// AgentStore caches the caller's agent list. Mutations deliberately refetch
// the whole list instead of patching the cache: the server owns derived
// fields (created_at, embed_token) and a refetch can never drift.
type AgentStore struct {
	client *Client

	mu     sync.RWMutex
	agents []Agent
	loaded bool
}

// NewAgentStore creates an empty store bound to client. Call Refresh to
// populate it.
func NewAgentStore(client *Client) *AgentStore {
	return &AgentStore{client: client}
}

// Agents returns a copy of the cached list.
func (s *AgentStore) Agents() []Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Agent, len(s.agents))
	copy(out, s.agents)
	return out
}

// Loaded reports whether the store has been populated at least once.
func (s *AgentStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Refresh refetches the agent list from the server. Without a credential the
// list resets to empty and no request is issued. A 401 clears the list, so a
// store whose session died never serves stale agents. Other errors keep the
// previous contents.
func (s *AgentStore) Refresh(ctx context.Context) error {
	if s.client.tokens.Token() == "" {
		s.mu.Lock()
		s.agents = nil
		s.loaded = true
		s.mu.Unlock()
		return nil
	}

	agents, err := s.client.Agents(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			s.mu.Lock()
			s.agents = nil
			s.mu.Unlock()
		}
		return err
	}
	s.mu.Lock()
	s.agents = agents
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Create creates an agent, then refetches the full list.
func (s *AgentStore) Create(ctx context.Context, req CreateAgentRequest) error {
	if err := s.client.CreateAgent(ctx, req); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// CreateFromSource creates an agent from a typed source, then refetches.
func (s *AgentStore) CreateFromSource(ctx context.Context, req CreateAgentRequest, sourceType string, extra map[string]string) error {
	if err := s.client.CreateAgentFromSource(ctx, req, sourceType, extra); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Update uploads additional documents into an agent, then refetches.
func (s *AgentStore) Update(ctx context.Context, name string, files []Upload) error {
	if err := s.client.UpdateAgent(ctx, name, files); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Delete deletes an agent, then refetches.
func (s *AgentStore) Delete(ctx context.Context, name string) error {
	if err := s.client.DeleteAgent(ctx, name); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Project returns the cached agents filtered by query and ordered by sortBy.
// It never hits the network; views call it on every render.
func (s *AgentStore) Project(query, sortBy string) []Agent {
	return Project(s.Agents(), query, sortBy)
}

// Project filters agents by a case-insensitive substring match on name,
// domain and description, then sorts by sortBy. The input slice is not
// modified. Unknown sort orders fall back to name.
func Project(agents []Agent, query, sortBy string) []Agent {
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]Agent, 0, len(agents))
	for _, a := range agents {
		if query == "" || matchesAgent(a, query) {
			out = append(out, a)
		}
	}

	switch sortBy {
	case SortByDomain:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Domain != out[j].Domain {
				return out[i].Domain < out[j].Domain
			}
			return out[i].Name < out[j].Name
		})
	case SortByCreated:
		// created_at is RFC 3339, so string order is time order
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].CreatedAt != out[j].CreatedAt {
				return out[i].CreatedAt > out[j].CreatedAt
			}
			return out[i].Name < out[j].Name
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	}
	return out
}

func matchesAgent(a Agent, query string) bool {
	return strings.Contains(strings.ToLower(a.Name), query) ||
		strings.Contains(strings.ToLower(a.Domain), query) ||
		strings.Contains(strings.ToLower(a.Description), query)
}
