package notebookagent

import (
	"sync"

	"github.com/a2aproject/a2a-go/a2a"
)

// State is the conversation phase of one task.
type State string

const (
	// StateInitial means no notebook has been selected yet.
	StateInitial State = "initial"
	// StateNotebookSelected means operations run against the selected notebook.
	StateNotebookSelected State = "notebook_selected"
)

type session struct {
	state      State
	notebookID string
}

// sessionStore keeps per-task conversation state. The A2A server may run
// executions concurrently, so access is serialized.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[a2a.TaskID]session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[a2a.TaskID]session)}
}

func (s *sessionStore) get(taskID a2a.TaskID) (session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[taskID]
	return sess, ok
}

func (s *sessionStore) put(taskID a2a.TaskID, sess session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[taskID] = sess
}

func (s *sessionStore) delete(taskID a2a.TaskID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, taskID)
}
