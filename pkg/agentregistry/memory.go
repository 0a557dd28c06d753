package agentregistry

import (
	"sync"
	"time"
)

// MemoryStore is a map-backed Registry. Entries keep insertion order.
type MemoryStore struct {
	mu     sync.RWMutex
	agents map[string]*Agent
	order  []string
}

// NewMemoryStore creates an empty in-memory registry.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		agents: make(map[string]*Agent),
	}
}

// NewMemoryStoreWithDefaults creates an in-memory registry seeded with the
// default agent endpoints.
func NewMemoryStoreWithDefaults() *MemoryStore {
	s := NewMemoryStore()
	for _, agent := range DefaultAgents() {
		s.agents[agent.ID] = agent
		s.order = append(s.order, agent.ID)
	}
	return s
}

func (s *MemoryStore) Add(url string, headers []Header) (*Agent, error) {
	if err := validateURL(url); err != nil {
		return nil, NewRegistryError("MemoryStore", "Add", "invalid url", err)
	}

	agent := &Agent{
		ID:      NewAgentID(),
		URL:     url,
		Headers: cloneHeaders(headers),
		AddedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.agents[agent.ID] = agent
	s.order = append(s.order, agent.ID)

	return cloneAgent(agent), nil
}

func (s *MemoryStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agents[id]; !ok {
		return NewRegistryError("MemoryStore", "Remove", id, ErrAgentNotFound)
	}

	delete(s.agents, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return nil
}

func (s *MemoryStore) UpdateURL(id, url string) error {
	if err := validateURL(url); err != nil {
		return NewRegistryError("MemoryStore", "UpdateURL", "invalid url", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	agent, ok := s.agents[id]
	if !ok {
		return NewRegistryError("MemoryStore", "UpdateURL", id, ErrAgentNotFound)
	}

	agent.URL = url
	return nil
}

func (s *MemoryStore) UpdateHeaders(id string, headers []Header) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agent, ok := s.agents[id]
	if !ok {
		return NewRegistryError("MemoryStore", "UpdateHeaders", id, ErrAgentNotFound)
	}

	agent.Headers = cloneHeaders(headers)
	return nil
}

func (s *MemoryStore) Get(id string) (*Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agent, ok := s.agents[id]
	if !ok {
		return nil, NewRegistryError("MemoryStore", "Get", id, ErrAgentNotFound)
	}

	return cloneAgent(agent), nil
}

func (s *MemoryStore) List() ([]*Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agents := make([]*Agent, 0, len(s.order))
	for _, id := range s.order {
		agents = append(agents, cloneAgent(s.agents[id]))
	}

	return agents, nil
}

func cloneAgent(agent *Agent) *Agent {
	clone := *agent
	clone.Headers = cloneHeaders(agent.Headers)
	return &clone
}

func cloneHeaders(headers []Header) []Header {
	if len(headers) == 0 {
		return nil
	}
	out := make([]Header, len(headers))
	copy(out, headers)
	return out
}

// Compile-time interface compliance check
var _ Registry = (*MemoryStore)(nil)
