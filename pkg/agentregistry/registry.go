// Package agentregistry manages the set of agent endpoints the gateway
// probes and relays to. Two stores implement the same interface: an
// in-memory map for development and tests, and a SQLite-backed store for
// deployments that need the list to survive restarts.
package agentregistry

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrAgentNotFound is reported when an id has no entry in the store.
var ErrAgentNotFound = errors.New("agent not found")

// Header is one custom HTTP header sent with every probe of an agent.
// Order is preserved; a later header with the same key wins.
type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Agent is one registered agent endpoint.
type Agent struct {
	ID      string    `json:"id"`
	URL     string    `json:"url"`
	Headers []Header  `json:"headers,omitempty"`
	AddedAt time.Time `json:"addedAt"`
}

// Registry is the agent endpoint store. Mutations are synchronous: once a
// call returns, a following List or Get observes the change.
type Registry interface {
	Add(url string, headers []Header) (*Agent, error)
	Remove(id string) error
	UpdateURL(id, url string) error
	UpdateHeaders(id string, headers []Header) error
	Get(id string) (*Agent, error)
	List() ([]*Agent, error)
}

// RegistryError carries the component and action that failed, so log lines
// and API errors identify the operation without a stack trace.
type RegistryError struct {
	Component string
	Action    string
	Message   string
	Err       error
}

func (e *RegistryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Component, e.Action, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Component, e.Action, e.Message)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

func NewRegistryError(component, action, message string, err error) *RegistryError {
	return &RegistryError{
		Component: component,
		Action:    action,
		Message:   message,
		Err:       err,
	}
}

// NewAgentID returns a fresh registry id.
func NewAgentID() string {
	return "agent-" + uuid.NewString()
}

// DefaultAgents returns the two agents every fresh store starts with.
func DefaultAgents() []*Agent {
	now := time.Now()
	return []*Agent{
		{ID: "onenote-search-agent", URL: "http://onenote-search-agent:8000", AddedAt: now},
		{ID: "outlook-schedule-agent", URL: "http://outlook-schedule-agent:8000", AddedAt: now},
	}
}

func validateURL(url string) error {
	if url == "" {
		return fmt.Errorf("url cannot be empty")
	}
	return nil
}
