package agentregistry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLStore implements Registry on a SQLite database. The connection should
// be shared with any other component using the same file to avoid
// "database is locked" errors.
type SQLStore struct {
	db *sql.DB
}

type agentRow struct {
	ID          string
	URL         string
	HeadersJSON string
	AddedAt     time.Time
}

const createAgentsTableSQL = `
CREATE TABLE IF NOT EXISTS agents (
    id VARCHAR(255) PRIMARY KEY,
    url TEXT NOT NULL,
    headers_json TEXT,
    added_at TIMESTAMP NOT NULL
)`

const createAgentsAddedAtIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_agents_added_at ON agents(added_at)`

// OpenSQLStore opens (or creates) the SQLite database at path and returns
// a store with the schema bootstrapped. A fresh database is seeded with the
// default agent endpoints.
func OpenSQLStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}

	store, err := NewSQLStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// NewSQLStore wraps an existing connection. Bootstraps the schema and seeds
// defaults when the table is empty.
func NewSQLStore(db *sql.DB) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	s := &SQLStore{db: db}

	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := s.seedDefaults(); err != nil {
		return nil, fmt.Errorf("failed to seed defaults: %w", err)
	}

	return s, nil
}

func (s *SQLStore) initSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, createAgentsTableSQL); err != nil {
		return fmt.Errorf("failed to create agents table: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, createAgentsAddedAtIndexSQL); err != nil {
		return fmt.Errorf("failed to create added_at index: %w", err)
	}

	return nil
}

func (s *SQLStore) seedDefaults() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agents`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, agent := range DefaultAgents() {
		if err := s.insert(ctx, agent); err != nil {
			return err
		}
	}

	return nil
}

func (s *SQLStore) insert(ctx context.Context, agent *Agent) error {
	row, err := agentToRow(agent)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO agents (id, url, headers_json, added_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    url = excluded.url,
    headers_json = excluded.headers_json
`, row.ID, row.URL, row.HeadersJSON, row.AddedAt)
	return err
}

func (s *SQLStore) Add(url string, headers []Header) (*Agent, error) {
	if err := validateURL(url); err != nil {
		return nil, NewRegistryError("SQLStore", "Add", "invalid url", err)
	}

	agent := &Agent{
		ID:      NewAgentID(),
		URL:     url,
		Headers: cloneHeaders(headers),
		AddedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.insert(ctx, agent); err != nil {
		return nil, NewRegistryError("SQLStore", "Add", "failed to insert agent", err)
	}

	return agent, nil
}

func (s *SQLStore) Remove(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `DELETE FROM agents WHERE id = ?`, id)
	if err != nil {
		return NewRegistryError("SQLStore", "Remove", "failed to delete agent", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return NewRegistryError("SQLStore", "Remove", "failed to read result", err)
	}
	if affected == 0 {
		return NewRegistryError("SQLStore", "Remove", id, ErrAgentNotFound)
	}

	return nil
}

func (s *SQLStore) UpdateURL(id, url string) error {
	if err := validateURL(url); err != nil {
		return NewRegistryError("SQLStore", "UpdateURL", "invalid url", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `UPDATE agents SET url = ? WHERE id = ?`, url, id)
	if err != nil {
		return NewRegistryError("SQLStore", "UpdateURL", "failed to update agent", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return NewRegistryError("SQLStore", "UpdateURL", "failed to read result", err)
	}
	if affected == 0 {
		return NewRegistryError("SQLStore", "UpdateURL", id, ErrAgentNotFound)
	}

	return nil
}

func (s *SQLStore) UpdateHeaders(id string, headers []Header) error {
	headersJSON, err := marshalHeaders(headers)
	if err != nil {
		return NewRegistryError("SQLStore", "UpdateHeaders", "failed to serialize headers", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `UPDATE agents SET headers_json = ? WHERE id = ?`, headersJSON, id)
	if err != nil {
		return NewRegistryError("SQLStore", "UpdateHeaders", "failed to update agent", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return NewRegistryError("SQLStore", "UpdateHeaders", "failed to read result", err)
	}
	if affected == 0 {
		return NewRegistryError("SQLStore", "UpdateHeaders", id, ErrAgentNotFound)
	}

	return nil
}

func (s *SQLStore) Get(id string) (*Agent, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var row agentRow
	err := s.db.QueryRowContext(ctx, `
SELECT id, url, headers_json, added_at FROM agents WHERE id = ?
`, id).Scan(&row.ID, &row.URL, &row.HeadersJSON, &row.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewRegistryError("SQLStore", "Get", id, ErrAgentNotFound)
	}
	if err != nil {
		return nil, NewRegistryError("SQLStore", "Get", "failed to query agent", err)
	}

	return rowToAgent(&row)
}

func (s *SQLStore) List() ([]*Agent, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
SELECT id, url, headers_json, added_at FROM agents ORDER BY added_at, id
`)
	if err != nil {
		return nil, NewRegistryError("SQLStore", "List", "failed to query agents", err)
	}
	defer rows.Close()

	var agents []*Agent
	for rows.Next() {
		var row agentRow
		if err := rows.Scan(&row.ID, &row.URL, &row.HeadersJSON, &row.AddedAt); err != nil {
			return nil, NewRegistryError("SQLStore", "List", "failed to scan row", err)
		}

		agent, err := rowToAgent(&row)
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}

	if err := rows.Err(); err != nil {
		return nil, NewRegistryError("SQLStore", "List", "failed to iterate rows", err)
	}

	return agents, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func marshalHeaders(headers []Header) (string, error) {
	if len(headers) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(headers)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func agentToRow(agent *Agent) (*agentRow, error) {
	headersJSON, err := marshalHeaders(agent.Headers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal headers: %w", err)
	}

	return &agentRow{
		ID:          agent.ID,
		URL:         agent.URL,
		HeadersJSON: headersJSON,
		AddedAt:     agent.AddedAt,
	}, nil
}

func rowToAgent(row *agentRow) (*Agent, error) {
	agent := &Agent{
		ID:      row.ID,
		URL:     row.URL,
		AddedAt: row.AddedAt,
	}

	if row.HeadersJSON != "" && row.HeadersJSON != "[]" {
		if err := json.Unmarshal([]byte(row.HeadersJSON), &agent.Headers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal headers: %w", err)
		}
	}

	return agent, nil
}

// Compile-time interface compliance check
var _ Registry = (*SQLStore)(nil)
